package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/aristath/draftboard/internal/di"
	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/draft"
	"github.com/aristath/draftboard/internal/pipeline"
	"github.com/spf13/cobra"
)

func newLoadCmd(a *app) *cobra.Command {
	var sourceDir string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Ingest the source directory and rebuild every table",
		Long: "Loads every source file, merges and prunes both populations, values them, imports " +
			pipeline.HistoryFile + " when present, trains the price model and computes surplus. " +
			"Draft state is reset.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sourceDir != "" {
				abs, err := filepath.Abs(sourceDir)
				if err != nil {
					return err
				}
				a.cfg.SourceDir = abs
			}
			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				report, err := c.Pipeline.Run(cmd.Context())
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source", "", "source directory (default DRAFTBOARD_SOURCE_DIR)")
	return cmd
}

func newRecalculateCmd(a *app) *cobra.Command {
	var (
		teams     int
		budget    int
		hitterPct float64
		hitters   int
		pitchers  int
	)

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Re-value both populations with a new league config",
		Long:  "Persists the league config and recomputes dollar values, predicted prices and surplus. Draft state is kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				cfg, err := c.SettingsService.LoadLeagueConfig()
				if err != nil {
					return err
				}

				flags := cmd.Flags()
				if flags.Changed("teams") {
					cfg.TeamCount = teams
				}
				if flags.Changed("budget") {
					cfg.BudgetPerTeam = budget
				}
				if flags.Changed("hitter-pct") {
					cfg.HitterBudgetPct = hitterPct
				}
				if flags.Changed("hitters") {
					cfg.HittersPerTeam = hitters
				}
				if flags.Changed("pitchers") {
					cfg.PitchersPerTeam = pitchers
				}

				if err := c.Pipeline.Recalculate(cmd.Context(), cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recalculated: %d teams, $%d each, %.0f%% hitters, %d/%d roster\n",
					cfg.TeamCount, cfg.BudgetPerTeam, cfg.HitterBudgetPct, cfg.HittersPerTeam, cfg.PitchersPerTeam)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&teams, "teams", 0, "number of teams")
	cmd.Flags().IntVar(&budget, "budget", 0, "budget per team")
	cmd.Flags().Float64Var(&hitterPct, "hitter-pct", 0, "share of the budget spent on hitters (0-100)")
	cmd.Flags().IntVar(&hitters, "hitters", 0, "hitters drafted per team")
	cmd.Flags().IntVar(&pitchers, "pitchers", 0, "pitchers drafted per team")
	return cmd
}

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Refit the price model on imported auction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				result, err := c.Pipeline.Train(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Trained on %d matched players, R² %.3f\n", result.MatchedCount, result.R2)
				return nil
			})
		},
	}
}

func newImportHistoryCmd(a *app) *cobra.Command {
	var season int

	cmd := &cobra.Command{
		Use:   "import-history FILE",
		Short: "Import an auction export (CSV or XLSX) for one season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				n, err := c.Pipeline.ImportHistory(cmd.Context(), f, filepath.Base(args[0]), season)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d auction results for %d\n", n, season)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&season, "season", time.Now().Year()-1, "season the export belongs to")
	return cmd
}

func newDraftCmd(a *app) *cobra.Command {
	var (
		population string
		price      int
		team       string
	)

	cmd := &cobra.Command{
		Use:   "draft PLAYER",
		Short: "Mark a player drafted at a price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pop, err := domain.ParsePopulation(population)
			if err != nil {
				return err
			}
			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				action, err := c.DraftService.Draft(pop, args[0], price, team)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Drafted %s for $%d (value %+d)\n", action.PlayerName, action.DraftPrice, action.Value())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&population, "type", "t", string(domain.Hitters), "hitters or pitchers")
	cmd.Flags().IntVarP(&price, "price", "p", 0, "winning bid")
	cmd.Flags().StringVar(&team, "team", "", "drafting team")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent pick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				name, ok, err := c.DraftService.Undo()
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to undo")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Undid pick of %s\n", name)
				return nil
			})
		},
	}
}

func newLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Print the draft log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				entries, err := c.DraftService.Log()
				if err != nil {
					return err
				}
				printLog(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up draft.db and the price model to the configured bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(func(c *di.Container, jobs *di.JobInstances) error {
				if jobs.Backup == nil {
					return fmt.Errorf("backups are disabled; set BACKUP_ENABLED and BACKUP_BUCKET")
				}
				return c.Scheduler.RunNow(jobs.Backup)
			})
		},
	}
}

func printReport(w io.Writer, report *pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POPULATION\tPLAYERS\tPROJECTED\tVALUED\tBUDGET\t$/PT")
	for _, s := range report.Summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.0f\t%.4f\n",
			s.Population, report.Players[s.Population], s.Projected, s.Valued, s.Budget, s.DollarsPerPoint)
	}
	tw.Flush()

	if report.HistoryImported > 0 {
		fmt.Fprintf(w, "Imported %d auction results\n", report.HistoryImported)
	}
	switch {
	case report.Training != nil:
		fmt.Fprintf(w, "Price model: %d matched players, R² %.3f\n", report.Training.MatchedCount, report.Training.R2)
	case report.TrainingSkipped != "":
		fmt.Fprintf(w, "Price model not retrained: %s\n", report.TrainingSkipped)
	}
	if !report.Predicted {
		fmt.Fprintln(w, "No price model available; predicted prices left empty")
	}
}

func printLog(w io.Writer, entries []draft.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No picks yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tTYPE\tTEAM\tSALARY\tPRICE\tVALUE\tTIME")
	for _, e := range entries {
		salary := "-"
		if e.ProjectedSalary != nil {
			salary = fmt.Sprintf("$%d", *e.ProjectedSalary)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%d\t%+d\t%s\n",
			e.PlayerName, e.Population.PlayerType(), e.DraftingTeam, salary, e.DraftPrice, e.Value,
			e.Timestamp.Local().Format("15:04:05"))
	}
	tw.Flush()
}
