// Package schemas embeds the SQL schema applied by database.Migrate.
package schemas

import "embed"

// FS embeds all schema files.
//
//go:embed *.sql
var FS embed.FS
