package commands

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/models"
	"github.com/balkashynov/worktrack/internal/parser"
)

var logCmd = &cobra.Command{
	Use:   "log <subtask-id> <duration>",
	Short: "Log time against a subtask",
	Long: `Log time a user spent on a Jira subtask.

Duration accepts plain minutes or hours and minutes:
  90, 45m, 1.5h, 1h30m, "2h 15m"

Date accepts yyyy-mm-dd, dd/mm/yyyy, today, yesterday, "3 days ago",
"1 week ago" (default today).

Examples:
  worktrack log 10012 1h30m --user alice
  worktrack log 10012 45m --user alice --date yesterday -m "code review"`,
	Args: cobra.ExactArgs(2),
	RunE: withStore(runLog),
}

var logRmCmd = &cobra.Command{
	Use:   "rm <workload-id>",
	Short: "Delete a logged entry",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string, store *db.Store) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid workload ID '%s'", args[0])
		}
		name, _ := cmd.Flags().GetString("user")
		actor, err := resolveUser(cmd.Context(), store, name)
		if err != nil {
			return err
		}
		if err := store.DeleteWorkload(cmd.Context(), *actor, id); err != nil {
			return err
		}
		fmt.Printf("🗑  Deleted workload #%d\n", id)
		return nil
	}),
}

func runLog(cmd *cobra.Command, args []string, store *db.Store) error {
	subtaskID, err := parseSubtaskID(args[0])
	if err != nil {
		return err
	}
	minutes, err := parser.ParseWorkloadMinutes(args[1])
	if err != nil {
		return err
	}
	day := models.DateOf(nowFunc())
	if d, err := dateFlag(cmd, "date"); err != nil {
		return err
	} else if d != nil {
		day = *d
	}

	name, _ := cmd.Flags().GetString("user")
	actor, err := resolveUser(cmd.Context(), store, name)
	if err != nil {
		return err
	}
	form := models.WorkloadForm{
		SubtaskID:      subtaskID,
		WorkDate:       day,
		WorkloadMinute: minutes,
	}
	form.Detail, _ = cmd.Flags().GetString("detail")
	if onBehalf, _ := cmd.Flags().GetString("for"); onBehalf != "" {
		target, err := resolveUser(cmd.Context(), store, onBehalf)
		if err != nil {
			return err
		}
		form.UserID = target.ID
	}

	workload, err := store.CreateWorkload(cmd.Context(), *actor, form)
	if err != nil {
		return err
	}
	logger.Info("workload logged", "id", workload.ID, "subtask_id", subtaskID, "user_id", workload.UserID)

	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	label := fmt.Sprintf("#%d", subtaskID)
	rows, err := store.SearchWorkloads(cmd.Context(), models.WorkloadCondition{WorkloadID: &workload.ID})
	if err == nil && len(rows) == 1 {
		label = fmt.Sprintf("#%d %s", subtaskID, strOr(rows[0].SubtaskName, ""))
		if p := rows[0].Path; p != nil {
			label += " " + *p
		}
	}
	fmt.Printf("%s Logged %s on %s for %s - ID: %d\n",
		green("✓"), cyan(parser.FormatMinutes(minutes)), label,
		parser.FormatWorkDate(day, nowFunc()), workload.ID)
	return nil
}

func init() {
	logCmd.PersistentFlags().StringP("user", "u", "", "user name acting (required)")
	logCmd.Flags().StringP("date", "d", "", "work date (default today)")
	logCmd.Flags().StringP("detail", "m", "", "what the time was spent on")
	logCmd.Flags().String("for", "", "log on behalf of another user (superuser only)")
	logCmd.AddCommand(logRmCmd)
}
