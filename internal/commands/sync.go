package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/jira"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Resync projects and issues from Jira",
	Long: `Fetch every Jira project, upsert it, then fetch and upsert the issues of
each target project. A project whose issues cannot be fetched is reported
and skipped; the rest still sync. Running it again converges.`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *db.Store) error {
		client, err := newJiraClient()
		if err != nil {
			return err
		}
		report, err := jira.NewSyncer(client, store, cfg.Sync.DefaultTarget, logger).Resync(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printSyncReport(report)
		if len(report.Failures) > 0 && report.SyncedProjects == 0 {
			return fmt.Errorf("no project synced")
		}
		return nil
	}),
}

func printSyncReport(report *jira.SyncReport) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("%s %d projects, %d synced, %d issues in %s\n",
		green("✓"), report.Projects, report.SyncedProjects, report.Issues,
		report.Duration.Round(time.Millisecond))
	if len(report.Failures) == 0 {
		return
	}
	fmt.Printf("%s %d projects skipped:\n", yellow("⚠"), len(report.Failures))
	for _, f := range report.Failures {
		fmt.Printf("  %s #%d %s\n", red(f.Key), f.ProjectID, f.Error)
	}
}

func init() {
	syncCmd.Flags().Bool("json", false, "print the sync report as JSON")
}
