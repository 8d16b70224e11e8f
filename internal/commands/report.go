package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/models"
	"github.com/balkashynov/worktrack/internal/parser"
	"github.com/balkashynov/worktrack/internal/tui"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report logged time against the issue hierarchy",
	Long: `Report workloads joined with their project, the two top issue levels
above each subtask and the user who logged them, ordered by date then
hierarchy.

Without --date, --from or --to the last report.default-range-days days
are shown.

Examples:
  worktrack report --from "2 weeks ago"
  worktrack report --user alice --target --ui
  worktrack report --date 2025-01-10 --json`,
	Args: cobra.NoArgs,
	RunE: withStore(runReport),
}

// reportFilter holds the raw report flags before they become a condition
type reportFilter struct {
	Date       string
	From       string
	To         string
	WorkloadID int64
	Target     *bool
}

// condition turns flags into a search condition. With no date bounds the
// range ends today and spans rangeDays.
func (f reportFilter) condition(now time.Time, rangeDays int) (models.WorkloadCondition, error) {
	var cond models.WorkloadCondition
	var err error
	if cond.TargetDate, err = parseOptionalDate(f.Date, now); err != nil {
		return cond, fmt.Errorf("--date: %w", err)
	}
	if cond.LowerDate, err = parseOptionalDate(f.From, now); err != nil {
		return cond, fmt.Errorf("--from: %w", err)
	}
	if cond.UpperDate, err = parseOptionalDate(f.To, now); err != nil {
		return cond, fmt.Errorf("--to: %w", err)
	}
	if cond.LowerDate != nil && cond.UpperDate != nil && cond.UpperDate.Before(*cond.LowerDate) {
		return cond, fmt.Errorf("--to %s is before --from %s", cond.UpperDate, cond.LowerDate)
	}
	if cond.TargetDate == nil && cond.LowerDate == nil && cond.UpperDate == nil && f.WorkloadID == 0 {
		today := models.DateOf(now)
		from := today.AddDays(-rangeDays)
		cond.LowerDate, cond.UpperDate = &from, &today
	}
	if f.WorkloadID > 0 {
		id := f.WorkloadID
		cond.WorkloadID = &id
	}
	cond.IsTargetProject = f.Target
	return cond, nil
}

func runReport(cmd *cobra.Command, args []string, store *db.Store) error {
	var f reportFilter
	f.Date, _ = cmd.Flags().GetString("date")
	f.From, _ = cmd.Flags().GetString("from")
	f.To, _ = cmd.Flags().GetString("to")
	f.WorkloadID, _ = cmd.Flags().GetInt64("id")
	if cmd.Flags().Changed("target") {
		target, _ := cmd.Flags().GetBool("target")
		f.Target = &target
	}

	cond, err := f.condition(nowFunc(), cfg.Report.DefaultRangeDays)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("user"); name != "" {
		user, err := resolveUser(cmd.Context(), store, name)
		if err != nil {
			return err
		}
		cond.SpecifyUserID = &user.ID
	}

	rows, err := store.SearchWorkloads(cmd.Context(), cond)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	useUI, _ := cmd.Flags().GetBool("ui")
	switch {
	case asJSON:
		return renderReportJSON(os.Stdout, cond, rows)
	case useUI:
		return tui.RunReportTUI(reportTitle(cond), rows)
	default:
		renderReportTable(os.Stdout, rows)
		return nil
	}
}

func reportTitle(cond models.WorkloadCondition) string {
	switch {
	case cond.WorkloadID != nil:
		return fmt.Sprintf("Workload #%d", *cond.WorkloadID)
	case cond.TargetDate != nil:
		return "Workloads on " + cond.TargetDate.String()
	case cond.LowerDate != nil && cond.UpperDate != nil:
		return fmt.Sprintf("Workloads %s → %s", cond.LowerDate, cond.UpperDate)
	case cond.LowerDate != nil:
		return "Workloads since " + cond.LowerDate.String()
	case cond.UpperDate != nil:
		return "Workloads until " + cond.UpperDate.String()
	}
	return "Workloads"
}

// renderReportJSON outputs the rows with the condition that produced them
func renderReportJSON(w io.Writer, cond models.WorkloadCondition, rows []models.RegisteredWorkload) error {
	type reportOutput struct {
		Condition    models.WorkloadCondition    `json:"condition"`
		Count        int                         `json:"count"`
		TotalMinutes float64                     `json:"total_minutes"`
		Workloads    []models.RegisteredWorkload `json:"workloads"`
	}
	if rows == nil {
		rows = []models.RegisteredWorkload{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reportOutput{
		Condition:    cond,
		Count:        len(rows),
		TotalMinutes: tui.TotalMinutes(rows),
		Workloads:    rows,
	})
}

// renderReportTable prints one line per workload and a total
func renderReportTable(w io.Writer, rows []models.RegisteredWorkload) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No workloads found.")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%-5s %-10s %-12s %-16s %-20s %-20s %-28s %8s\n",
		"ID", "DATE", "USER", "PROJECT", "ISSUE", "SUB-ISSUE", "SUBTASK", "TIME")
	fmt.Fprintln(w, strings.Repeat("-", 126))

	for _, r := range rows {
		project := truncate(strOr(r.ProjectName, "-"), 16)
		if r.ProjectID == nil {
			project = yellow(fmt.Sprintf("%-16s", "unresolved"))
		} else {
			project = fmt.Sprintf("%-16s", project)
		}
		fmt.Fprintf(w, "%-5d %-10s %-12s %s %-20s %-20s %-28s %8s\n",
			r.WorkloadID,
			r.WorkDate,
			truncate(r.UserName, 12),
			project,
			truncate(strOr(r.IssueName1, "-"), 20),
			truncate(strOr(r.IssueName2, "-"), 20),
			truncate(strOr(r.SubtaskName, fmt.Sprintf("#%d", r.SubtaskID)), 28),
			parser.FormatMinutes(r.WorkloadMinute))
		if r.Detail != "" {
			fmt.Fprintf(w, "      %s\n", truncate(r.Detail, 110))
		}
	}

	fmt.Fprintln(w, strings.Repeat("-", 126))
	fmt.Fprintf(w, "%s %d entries, %s\n", bold("Total:"), len(rows), green(parser.FormatMinutes(tui.TotalMinutes(rows))))
}

func init() {
	reportCmd.Flags().String("date", "", "only this work date")
	reportCmd.Flags().String("from", "", "earliest work date (inclusive)")
	reportCmd.Flags().String("to", "", "latest work date (inclusive)")
	reportCmd.Flags().StringP("user", "u", "", "only this user's entries")
	reportCmd.Flags().Int64("id", 0, "a single workload by id")
	reportCmd.Flags().Bool("target", false, "only target projects (--target=false for the others)")
	reportCmd.Flags().Bool("json", false, "output JSON")
	reportCmd.Flags().Bool("ui", false, "browse in the interactive viewer")
}
