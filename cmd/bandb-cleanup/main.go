package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/developingchet/bandb-cleanup/internal/cleanup"
	"github.com/developingchet/bandb-cleanup/internal/config"
	"github.com/developingchet/bandb-cleanup/internal/confirm"
	"github.com/developingchet/bandb-cleanup/internal/logger"
	"github.com/developingchet/bandb-cleanup/internal/privilege"
	"github.com/developingchet/bandb-cleanup/internal/report"
	"github.com/developingchet/bandb-cleanup/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set by the build system via -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bandb-cleanup",
		Short:         "Remove duplicate ban records from the saslfail ban database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file (overrides CONFIG_FILE)")

	root.AddCommand(
		runCmd(),
		historyCmd(),
		versionCmd(),
	)
	return root
}

// runCmd deduplicates the database.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Back up the database, remove duplicate bans and ask before replacing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd)
		},
	}
	cmd.Flags().String("db", "", "ban database path (overrides DB_PATH)")
	cmd.Flags().Bool("dry-run", false, "report duplicates without prompting or writing")
	cmd.Flags().Bool("no-color", false, "disable coloured output")
	return cmd
}

func runCleanup(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := buildLogger(cfg)
	log.Debug().Str("version", Version).Str("db", cfg.DatabasePath).Msg("bandb-cleanup starting")

	out := cmd.OutOrStdout()
	runner := cleanup.New(cleanup.Config{
		DatabasePath:     cfg.DatabasePath,
		DryRun:           cfg.DryRun,
		HistoryRetention: cfg.HistoryRetention,
		MetricsTextfile:  cfg.MetricsTextfile,
	},
		privilege.NewSystemChecker(cfg.RequireRoot),
		confirm.NewPrompter(cmd.InOrStdin(), out),
		journalOpener(cfg),
		report.New(out, cfg.NoColor),
		log,
	)

	_, err = runner.Run(cmd.Context())
	return err
}

// historyCmd lists journaled runs.
func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous cleanup runs from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.JournalEnabled {
				return fmt.Errorf("journal is disabled (JOURNAL_ENABLED=false)")
			}
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := storage.NewBboltStore(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			return printHistory(cmd, runs)
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of runs to show (0 = all)")
	return cmd
}

func printHistory(cmd *cobra.Command, runs []storage.RunRecord) error {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOUTCOME\tORIGINAL\tKEPT\tREMOVED\tBACKUP\tRUN ID")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Outcome,
			r.Original, r.Kept, r.Removed, r.BackupPath, r.ID)
	}
	return tw.Flush()
}

// versionCmd prints the version and exits.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bandb-cleanup %s\n", Version)
		},
	}
}

// loadConfig layers explicitly-set flags over file and environment config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	ov := config.Overrides{Values: map[string]interface{}{}}
	if f := cmd.Flags().Lookup("config"); f != nil {
		ov.ConfigFile = f.Value.String()
	}
	flags := map[string]string{
		"db":       "db_path",
		"dry-run":  "dry_run",
		"no-color": "no_color",
	}
	for flag, key := range flags {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		ov.Values[key] = f.Value.String()
	}
	return config.Load(ov)
}

// journalOpener returns the run journal opener, or nil when the journal is
// disabled. The runner calls it after its pre-flight checks.
func journalOpener(cfg *config.Config) cleanup.StoreOpener {
	if !cfg.JournalEnabled {
		return nil
	}
	return func() (storage.Store, error) {
		store, err := storage.NewBboltStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open journal in %s: %w", cfg.DataDir, err)
		}
		return store, nil
	}
}

// buildLogger constructs a zerolog.Logger based on config.
func buildLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
}
