// Package main is the entry point for draftboard, a salary-cap draft valuation engine.
//
// Every subcommand loads configuration from the environment (.env supported),
// wires the DI container over draft.db and runs one operation:
//
//	draftboard load              ingest the source directory and rebuild every table
//	draftboard recalculate       re-value with a new league config, keeping draft state
//	draftboard train             refit the price model on imported auction history
//	draftboard import-history    import an auction export for one season
//	draftboard draft / undo / log
//	draftboard serve             HTTP API, event feeds and scheduled maintenance
//	draftboard backup            one-shot backup to the configured bucket
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
