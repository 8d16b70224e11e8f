package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create the user, project, issue and workload tables and rebuild the
subtask_with_parent_path view. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *db.Store) error {
		if err := store.Migrate(); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		target := cfg.DB.DSN
		if target == "" {
			target = "default sqlite file"
		}
		fmt.Printf("%s schema is up to date (%s, %s)\n", green("✓"), cfg.DB.Driver, target)
		return nil
	}),
}
