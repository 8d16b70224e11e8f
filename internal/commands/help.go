package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for worktrack",
	Long:  `Display detailed help for all worktrack commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("worktrack %s (commit %s, built %s)\n", version, commit, date)
	},
}

func showCustomHelp() {
	fmt.Print(`
worktrack - Jira-backed workload tracking

COMMANDS:

  serve                   Run the JSON API
    --host, -p/--port     Override server.host / server.port

  migrate                 Create or update tables and the path view

  sync                    Resync projects and issues from Jira
    --json                Print the sync report as JSON

  log <subtask> <dur>     Log time against a subtask
    -u, --user            Acting user (required)
    -d, --date            Work date (default today)
    -m, --detail          What the time was spent on
    --for                 Log on behalf of another user (superuser)
  log rm <id>             Delete a logged entry

    Durations:  90, 45m, 1.5h, 1h30m, "2h 15m"
    Dates:      2025-01-10, 10/01/2025, today, yesterday, "3 days ago"

  report                  Logged time against the issue hierarchy
    --date                Single work date
    --from, --to          Inclusive date range
    -u, --user            Only this user
    --id                  A single workload
    --target              Only target projects (--target=false: others)
    --json                JSON output
    --ui                  Interactive viewer

    Viewer keys:
      ↑/↓           Navigate
      ←/→           Page
      /             Filter
      esc           Clear filter, then quit
      q             Quit

  timesheet               Weekly grid of hours per subtask
    -u, --user            User (required)
    -w, --week            Any day in the week (default this week)

  paths                   Subtasks with their derived path
    --triples             (ancestor_1, ancestor_2, subtask) triples
    --verify              Compare the database view with the deriver

  projects                List projects
    --target KEY=bool     Choose which projects sync (repeatable)
    --remote              List projects straight from Jira

  users                   List active users
    --activate, --deactivate, --grant <name>

  version                 Print version information
  help                    Show this help

Global flag: --config <file> (default ./worktrack.yaml or ~/.worktrack/config.yaml)
Environment: WORKTRACK_* overrides any key, e.g. WORKTRACK_DB_DSN.

`)
}
