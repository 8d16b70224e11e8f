package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/models"
)

var timesheetCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Show a user's weekly timesheet",
	Long: `Show a weekly grid of logged hours per subtask, Monday to Sunday.

Example output:
  Subtask                   Mon  Tue  Wed  Thu  Fri  Sat  Sun  Total
  #10012 Invoice export     1.5    3    -    -    -    -    -    4.5
  #10020 Review PR            -  0.5    2    -    -    -    -    2.5
  Total                     1.5  3.5    2    0    0    0    0      7`,
	Args: cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *db.Store) error {
		name, _ := cmd.Flags().GetString("user")
		user, err := resolveUser(cmd.Context(), store, name)
		if err != nil {
			return err
		}
		day := models.DateOf(nowFunc())
		if d, err := dateFlag(cmd, "week"); err != nil {
			return err
		} else if d != nil {
			day = *d
		}
		start := weekStart(day)
		end := start.AddDays(6)

		workloads, err := store.ListUserWorkloads(cmd.Context(), user.ID, &start, &end)
		if err != nil {
			return fmt.Errorf("failed to get workloads: %w", err)
		}
		if len(workloads) == 0 {
			fmt.Printf("No time logged by %s in the week of %s.\n", user.Name, start.Format("Jan 2, 2006"))
			return nil
		}

		subtasks, err := store.ListSubtasks(cmd.Context())
		if err != nil {
			return err
		}
		names := make(map[int64]string, len(subtasks))
		for _, s := range subtasks {
			names[s.ID] = s.Name
		}

		buildTimesheet(workloads, names, start).render(os.Stdout)
		return nil
	}),
}

// weekStart returns the Monday of d's calendar week
func weekStart(d models.Date) models.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

type timesheetRow struct {
	subtaskID int64
	label     string
	minutes   [7]float64
}

func (r timesheetRow) total() float64 {
	var t float64
	for _, m := range r.minutes {
		t += m
	}
	return t
}

type timesheet struct {
	start models.Date
	rows  []timesheetRow
}

// buildTimesheet groups the week's workloads by subtask and weekday
func buildTimesheet(workloads []models.Workload, names map[int64]string, start models.Date) timesheet {
	bySubtask := make(map[int64]*timesheetRow)
	for _, w := range workloads {
		day := int(w.WorkDate.Sub(start.Time).Hours() / 24)
		if day < 0 || day > 6 {
			continue
		}
		row, ok := bySubtask[w.SubtaskID]
		if !ok {
			label := fmt.Sprintf("#%d", w.SubtaskID)
			if name := names[w.SubtaskID]; name != "" {
				label += " " + name
			}
			row = &timesheetRow{subtaskID: w.SubtaskID, label: label}
			bySubtask[w.SubtaskID] = row
		}
		row.minutes[day] += w.WorkloadMinute
	}

	ts := timesheet{start: start}
	for _, row := range bySubtask {
		ts.rows = append(ts.rows, *row)
	}
	sort.Slice(ts.rows, func(i, j int) bool {
		return ts.rows[i].subtaskID < ts.rows[j].subtaskID
	})
	return ts
}

// dayTotals sums every row per weekday
func (ts timesheet) dayTotals() [7]float64 {
	var totals [7]float64
	for _, r := range ts.rows {
		for i, m := range r.minutes {
			totals[i] += m
		}
	}
	return totals
}

// formatHours renders minutes as hours with at most one decimal
func formatHours(minutes float64) string {
	hours := float64(int(minutes/6+0.5)) / 10
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

func (ts timesheet) render(w io.Writer) {
	dayNames := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	dayWidth := 5
	totalWidth := 7

	nameWidth := 20
	for _, r := range ts.rows {
		nameWidth = max(nameWidth, len([]rune(r.label)))
	}
	nameWidth = min(nameWidth, 40)

	separator := func() {
		fmt.Fprint(w, strings.Repeat("-", nameWidth))
		for range dayNames {
			fmt.Fprint(w, " "+strings.Repeat("-", dayWidth-1))
		}
		fmt.Fprintln(w, " "+strings.Repeat("-", totalWidth-1))
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%-*s", nameWidth, "Subtask")
	for _, d := range dayNames {
		fmt.Fprintf(w, " %*s", dayWidth-1, d)
	}
	fmt.Fprintf(w, " %*s\n", totalWidth-1, "Total")
	separator()

	cell := func(minutes float64) string {
		if minutes <= 0 {
			return "-"
		}
		return formatHours(minutes)
	}

	var grand float64
	for _, r := range ts.rows {
		fmt.Fprintf(w, "%-*s", nameWidth, truncate(r.label, nameWidth))
		for _, m := range r.minutes {
			fmt.Fprintf(w, " %*s", dayWidth-1, cell(m))
		}
		fmt.Fprintf(w, " %*s\n", totalWidth-1, formatHours(r.total()))
		grand += r.total()
	}
	separator()

	fmt.Fprintf(w, "%-*s", nameWidth, "Total")
	for _, m := range ts.dayTotals() {
		fmt.Fprintf(w, " %*s", dayWidth-1, formatHours(m))
	}
	fmt.Fprintf(w, " %*s\n", totalWidth-1, formatHours(grand))

	fmt.Fprintf(w, "\n%s %s to %s\n", bold("Week of"),
		ts.start.Format("Jan 2"), ts.start.AddDays(6).Format("Jan 2, 2006"))
}

func init() {
	timesheetCmd.Flags().StringP("user", "u", "", "user name (required)")
	timesheetCmd.Flags().StringP("week", "w", "", "any day in the week to show (default this week)")
}
