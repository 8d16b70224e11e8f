package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/models"
)

var fixedNow = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) // a Wednesday

func datePtr(y int, m time.Month, d int) *models.Date {
	date := models.NewDate(y, m, d)
	return &date
}

func TestReportFilterCondition(t *testing.T) {
	yes := true
	tests := []struct {
		name    string
		filter  reportFilter
		want    models.WorkloadCondition
		wantErr bool
	}{
		{
			name:   "default range",
			filter: reportFilter{},
			want: models.WorkloadCondition{
				LowerDate: datePtr(2025, 1, 5),
				UpperDate: datePtr(2025, 1, 15),
			},
		},
		{
			name:   "single date",
			filter: reportFilter{Date: "yesterday"},
			want:   models.WorkloadCondition{TargetDate: datePtr(2025, 1, 14)},
		},
		{
			name:   "open upper bound",
			filter: reportFilter{From: "1 week ago", Target: &yes},
			want: models.WorkloadCondition{
				LowerDate:       datePtr(2025, 1, 8),
				IsTargetProject: &yes,
			},
		},
		{
			name:   "workload id skips the default range",
			filter: reportFilter{WorkloadID: 7},
			want:   models.WorkloadCondition{WorkloadID: func() *int64 { id := int64(7); return &id }()},
		},
		{name: "inverted range", filter: reportFilter{From: "2025-01-10", To: "2025-01-01"}, wantErr: true},
		{name: "bad date", filter: reportFilter{To: "soon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.condition(fixedNow, 10)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("condition() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("condition(): %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("condition() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSubtaskID(t *testing.T) {
	if id, err := parseSubtaskID("10012"); err != nil || id != 10012 {
		t.Errorf("parseSubtaskID(10012) = %d, %v", id, err)
	}
	if _, err := parseSubtaskID("plt-12"); err == nil || !strings.Contains(err.Error(), "issue key") {
		t.Errorf("issue key error = %v", err)
	}
	for _, bad := range []string{"0", "-4", "abc"} {
		if _, err := parseSubtaskID(bad); err == nil || !strings.Contains(err.Error(), "invalid subtask ID") {
			t.Errorf("parseSubtaskID(%q) error = %v", bad, err)
		}
	}
}

func TestWeekStart(t *testing.T) {
	for _, tt := range []struct{ in, want string }{
		{"2025-01-15", "2025-01-13"}, // Wednesday
		{"2025-01-13", "2025-01-13"}, // Monday
		{"2025-01-19", "2025-01-13"}, // Sunday
	} {
		d, _ := models.ParseDate(tt.in)
		if got := weekStart(d).String(); got != tt.want {
			t.Errorf("weekStart(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTimesheet(t *testing.T) {
	start := models.NewDate(2025, 1, 13)
	workloads := []models.Workload{
		{SubtaskID: 20, WorkDate: models.NewDate(2025, 1, 14), WorkloadMinute: 30},
		{SubtaskID: 12, WorkDate: models.NewDate(2025, 1, 13), WorkloadMinute: 90},
		{SubtaskID: 12, WorkDate: models.NewDate(2025, 1, 14), WorkloadMinute: 180},
		{SubtaskID: 20, WorkDate: models.NewDate(2025, 1, 15), WorkloadMinute: 120},
		{SubtaskID: 12, WorkDate: models.NewDate(2025, 1, 20), WorkloadMinute: 60}, // next week
	}
	ts := buildTimesheet(workloads, map[int64]string{12: "Invoice export"}, start)

	if len(ts.rows) != 2 || ts.rows[0].subtaskID != 12 || ts.rows[1].subtaskID != 20 {
		t.Fatalf("rows = %+v", ts.rows)
	}
	if ts.rows[0].label != "#12 Invoice export" || ts.rows[1].label != "#20" {
		t.Errorf("labels = %q, %q", ts.rows[0].label, ts.rows[1].label)
	}
	if got := ts.rows[0].total(); got != 270 {
		t.Errorf("row total = %v, want 270", got)
	}
	if got := ts.dayTotals(); got != [7]float64{90, 210, 120, 0, 0, 0, 0} {
		t.Errorf("day totals = %v", got)
	}

	var buf bytes.Buffer
	ts.render(&buf)
	out := buf.String()
	for _, want := range []string{"#12 Invoice export", "1.5", "4.5", "Week of", "Jan 13", "Jan 19, 2025"} {
		if !strings.Contains(out, want) {
			t.Errorf("timesheet output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHours(t *testing.T) {
	for minutes, want := range map[float64]string{0: "0", 30: "0.5", 90: "1.5", 120: "2", 100: "1.7"} {
		if got := formatHours(minutes); got != want {
			t.Errorf("formatHours(%v) = %q, want %q", minutes, got, want)
		}
	}
}

func TestRenderReportJSON(t *testing.T) {
	name := "Invoice export"
	rows := []models.RegisteredWorkload{
		{SubtaskID: 12, SubtaskName: &name, WorkloadID: 1, UserName: "Alice", WorkloadMinute: 90},
		{SubtaskID: 12, SubtaskName: &name, WorkloadID: 2, UserName: "Alice", WorkloadMinute: 15.5},
	}
	var buf bytes.Buffer
	if err := renderReportJSON(&buf, models.WorkloadCondition{}, rows); err != nil {
		t.Fatal(err)
	}
	var out struct {
		Count        int                         `json:"count"`
		TotalMinutes float64                     `json:"total_minutes"`
		Workloads    []models.RegisteredWorkload `json:"workloads"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || out.TotalMinutes != 105.5 || len(out.Workloads) != 2 {
		t.Errorf("report = %+v", out)
	}

	buf.Reset()
	if err := renderReportJSON(&buf, models.WorkloadCondition{}, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"workloads": []`) {
		t.Errorf("empty report should list no workloads as [], got %s", buf.String())
	}
}

func TestRenderReportTable(t *testing.T) {
	var buf bytes.Buffer
	renderReportTable(&buf, nil)
	if !strings.Contains(buf.String(), "No workloads found.") {
		t.Errorf("empty table = %q", buf.String())
	}

	project := "Platform"
	buf.Reset()
	renderReportTable(&buf, []models.RegisteredWorkload{
		{ProjectID: func() *int64 { id := int64(1); return &id }(), ProjectName: &project, SubtaskID: 12,
			WorkloadID: 1, UserName: "Alice", WorkDate: models.NewDate(2025, 1, 10), WorkloadMinute: 90, Detail: "export"},
		{SubtaskID: 99, WorkloadID: 2, UserName: "Bob", WorkDate: models.NewDate(2025, 1, 11), WorkloadMinute: 30},
	})
	out := buf.String()
	for _, want := range []string{"Platform", "unresolved", "#99", "1h 30m", "export", "2 entries", "2h"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

// TestLogCommand runs the CLI end to end against a temporary SQLite file
func TestLogCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	dsn := filepath.Join(dir, "worktrack.db")
	configFile := filepath.Join(dir, "worktrack.yaml")
	yaml := "db:\n  driver: sqlite\n  dsn: " + dsn + "\nlog:\n  level: error\n"
	if err := os.WriteFile(configFile, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	prevNow := nowFunc
	nowFunc = func() time.Time { return fixedNow }
	t.Cleanup(func() { nowFunc = prevNow })

	ctx := context.Background()
	store, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	projectID, rootID, subID := int64(1), int64(10), int64(11)
	if err := store.UpsertProjects(ctx, []models.Project{{ID: projectID, Name: "Platform", JiraKey: "PLT", IsTarget: true}}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertIssues(ctx, []models.Issue{
		{ID: rootID, Name: "Billing", ProjectID: &projectID},
		{ID: subID, Name: "Invoice export", ProjectID: &projectID, ParentIssueID: &rootID, IsSubtask: true},
	}); err != nil {
		t.Fatal(err)
	}
	plain := func(p string) (string, error) { return "hash:" + p, nil }
	if _, err := store.CreateUser(ctx, models.SignupForm{Name: "alice", Email: "alice@example.com", Password: "pw"}, plain); err != nil {
		t.Fatal(err)
	}
	store.Close()

	rootCmd.SetArgs([]string{"--config", configFile, "log", "11", "1h30m", "--user", "alice", "--date", "yesterday", "-m", "export"})
	if err := Execute(ctx); err != nil {
		t.Fatalf("log: %v", err)
	}

	store, err = db.Open(db.Options{Driver: db.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	rows, err := store.SearchWorkloads(ctx, models.WorkloadCondition{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d workloads, want 1", len(rows))
	}
	got := rows[0]
	if got.SubtaskID != 11 || got.WorkloadMinute != 90 || got.WorkDate.String() != "2025-01-14" ||
		got.UserName != "alice" || got.Detail != "export" || got.IssueID1 == nil || *got.IssueID1 != 10 {
		t.Errorf("logged row = %+v", got)
	}

	rootCmd.SetArgs([]string{"--config", configFile, "log", "11", "0", "--user", "alice"})
	if err := Execute(ctx); err == nil {
		t.Error("zero duration accepted")
	}
	rootCmd.SetArgs([]string{"--config", configFile, "log", "PLT-11", "30m", "--user", "alice"})
	if err := Execute(ctx); err == nil || !strings.Contains(err.Error(), "issue key") {
		t.Errorf("issue key error = %v", err)
	}
	rootCmd.SetArgs([]string{"--config", configFile, "log", "11", "30m", "--user", "nobody"})
	if err := Execute(ctx); err == nil || !strings.Contains(err.Error(), "no user named") {
		t.Errorf("unknown user error = %v", err)
	}
}
