package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/config"
	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "worktrack",
	Short: "Jira-backed workload tracking",
	Long: `worktrack mirrors Jira projects and issues into a local database,
records the time users spend on subtasks and reports it against the
issue hierarchy, from the terminal or over its JSON API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == helpCmd || cmd == versionCmd {
			return nil
		}
		return loadRuntime()
	},
}

// loadRuntime reads configuration and sets up logging
func loadRuntime() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(logging.Options{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackup,
	})
	if err != nil {
		return err
	}
	cfg, logger, logCloser = c, log, closer
	slog.SetDefault(log)
	return nil
}

// openStore connects to the configured database
func openStore() (*db.Store, error) {
	return db.Open(db.Options{
		Driver: cfg.DB.Driver,
		DSN:    cfg.DB.DSN,
		Logger: logger,
		Debug:  cfg.DB.Debug,
	})
}

// withStore wraps a command function to open the database first and close it after
func withStore(fn func(cmd *cobra.Command, args []string, store *db.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, args, store)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if logCloser != nil {
		_ = logCloser.Close()
	}
	return err
}

// PrintError reports a command failure on stderr
func PrintError(err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./worktrack.yaml or ~/.worktrack/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(timesheetCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
