package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/worktrack/internal/models"
	"github.com/balkashynov/worktrack/internal/parser"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Focus represents what UI element has focus
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
)

// ReportModel browses denormalized workload rows: a table on the left,
// the selected entry with its hierarchy on the right
type ReportModel struct {
	width  int
	height int

	title   string
	all     []models.RegisteredWorkload
	visible []models.RegisteredWorkload

	table       table.Model
	focus       Focus
	searchQuery string

	shimmer *Shimmer
}

// NewReportModel creates a viewer over rows, which are shown in the order given
func NewReportModel(title string, rows []models.RegisteredWorkload) ReportModel {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain)).
		Bold(true)

	m := ReportModel{
		title:   title,
		all:     rows,
		visible: rows,
		table: table.New(
			table.WithColumns(reportColumns(80)),
			table.WithFocused(true),
			table.WithHeight(10),
			table.WithStyles(styles),
		),
		focus:   FocusTable,
		shimmer: NewShimmer(DefaultShimmerConfig()),
	}
	m.table.SetRows(tableRows(rows))
	return m
}

// Visible returns the rows left after the search filter
func (m ReportModel) Visible() []models.RegisteredWorkload {
	return m.visible
}

// Selected returns the highlighted row, if any
func (m ReportModel) Selected() (models.RegisteredWorkload, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return models.RegisteredWorkload{}, false
	}
	return m.visible[i], true
}

func (m ReportModel) tick() tea.Cmd {
	if !m.shimmer.Active() {
		return nil
	}
	return tea.Tick(m.shimmer.Interval(), func(time.Time) tea.Msg {
		return shimmerTickMsg{}
	})
}

// Init starts the shimmer on the selected row
func (m ReportModel) Init() tea.Cmd {
	return m.tick()
}

// Update handles messages
func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		if m.focus != FocusTable {
			return m, nil
		}
		if row, ok := m.Selected(); ok {
			m.shimmer.Advance(len([]rune(deref(row.SubtaskName, ""))), time.Now())
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// header(2) + table header(2) + footer(2) + help(1) + borders(4) + margins(2)
		m.table.SetHeight(max(3, m.height-13))
		tableWidth := m.leftWidth() - 4
		m.table.SetColumns(reportColumns(tableWidth))
		m.table.SetWidth(tableWidth)
		return m, nil

	case tea.KeyMsg:
		if m.focus == FocusSearch {
			return m.handleSearchKeys(msg)
		}

		before := m.table.Cursor()
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			// clear an applied filter before quitting
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.applyFilter()
				return m, nil
			}
			return m, tea.Quit
		case "/":
			m.focus = FocusSearch
			m.shimmer.SetActive(false)
			return m, nil
		case "left", "h":
			m.table.MoveUp(m.table.Height())
		case "right", "l":
			m.table.MoveDown(m.table.Height())
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			if m.table.Cursor() != before {
				m.shimmer.Reset()
			}
			return m, cmd
		}
		if m.table.Cursor() != before {
			m.shimmer.Reset()
		}
		return m, nil
	}

	return m, nil
}

// handleSearchKeys edits the query; the filter applies as you type
func (m ReportModel) handleSearchKeys(msg tea.KeyMsg) (ReportModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchQuery = ""
		m.applyFilter()
		return m.leaveSearch()
	case tea.KeyEnter:
		return m.leaveSearch()
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
			m.applyFilter()
		}
		return m, nil
	case tea.KeySpace:
		m.searchQuery += " "
		m.applyFilter()
		return m, nil
	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)
		m.applyFilter()
		return m, nil
	}
	return m, nil
}

func (m ReportModel) leaveSearch() (ReportModel, tea.Cmd) {
	m.focus = FocusTable
	m.shimmer.SetActive(true)
	m.shimmer.Reset()
	return m, m.tick()
}

func (m *ReportModel) applyFilter() {
	m.visible = FilterWorkloads(m.all, m.searchQuery)
	m.table.SetRows(tableRows(m.visible))
	m.table.SetCursor(0)
	m.shimmer.Reset()
}

// FilterWorkloads keeps rows where any of the date, user, project, issue,
// subtask, path or detail contain query, case-insensitively
func FilterWorkloads(rows []models.RegisteredWorkload, query string) []models.RegisteredWorkload {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	var out []models.RegisteredWorkload
	for _, r := range rows {
		fields := []string{
			r.WorkDate.String(),
			r.UserName,
			deref(r.ProjectName, ""),
			deref(r.IssueName1, ""),
			deref(r.IssueName2, ""),
			deref(r.SubtaskName, ""),
			deref(r.Path, ""),
			r.Detail,
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), query) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// TotalMinutes sums the logged minutes of rows
func TotalMinutes(rows []models.RegisteredWorkload) float64 {
	var total float64
	for _, r := range rows {
		total += r.WorkloadMinute
	}
	return total
}

func reportColumns(width int) []table.Column {
	date, user, project, issue, minutes := 10, 12, 14, 20, 8
	subtask := max(16, width-date-user-project-issue-minutes-12)
	return []table.Column{
		{Title: "DATE", Width: date},
		{Title: "USER", Width: user},
		{Title: "PROJECT", Width: project},
		{Title: "ISSUE", Width: issue},
		{Title: "SUBTASK", Width: subtask},
		{Title: "TIME", Width: minutes},
	}
}

func tableRows(rows []models.RegisteredWorkload) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			r.WorkDate.String(),
			r.UserName,
			deref(r.ProjectName, "-"),
			deref(r.IssueName1, "-"),
			deref(r.SubtaskName, fmt.Sprintf("#%d", r.SubtaskID)),
			parser.FormatMinutes(r.WorkloadMinute),
		})
	}
	return out
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func (m ReportModel) leftWidth() int {
	return m.width * 65 / 100
}

// View renders the TUI
func (m ReportModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	leftWidth := m.leftWidth()
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTable(leftWidth),
		" ",
		m.renderDetails(rightWidth),
	)

	var bottom string
	if m.focus == FocusSearch {
		bottom = m.renderSearchBar()
	} else {
		bottom = m.renderHelpBar()
	}

	return lipgloss.JoinVertical(lipgloss.Left, "", content, "", bottom)
}

func (m ReportModel) renderTable(width int) string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	b.WriteString(headerStyle.Render("⏱ " + m.title))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true)
		if m.searchQuery != "" {
			b.WriteString(emptyStyle.Render(fmt.Sprintf("No workloads match %q", m.searchQuery)))
		} else {
			b.WriteString(emptyStyle.Render("No workloads found"))
		}
	} else {
		b.WriteString(m.table.View())
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSuccess)).
		Bold(true).
		MarginTop(1)
	footer := fmt.Sprintf("%d entries · total %s", len(m.visible), parser.FormatMinutes(TotalMinutes(m.visible)))
	if m.searchQuery != "" && m.focus == FocusTable {
		footer += fmt.Sprintf(" · filter %q", m.searchQuery)
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(footer))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

func (m ReportModel) renderDetails(width int) string {
	var b strings.Builder

	row, ok := m.Selected()
	if !ok {
		logoStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width)
		b.WriteString(logoStyle.Render("worktrack"))
	} else {
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
		accent := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
		muted := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).Italic(true)

		b.WriteString(m.shimmer.Render(deref(row.SubtaskName, fmt.Sprintf("subtask #%d", row.SubtaskID)), width-4))
		b.WriteString("\n\n")

		if row.ProjectID == nil {
			b.WriteString(muted.Render("hierarchy not resolved"))
			b.WriteString("\n")
		} else {
			b.WriteString(label.Render("Project: "))
			b.WriteString(accent.Render(fmt.Sprintf("%s (#%d)", deref(row.ProjectName, "-"), *row.ProjectID)))
			b.WriteString("\n")
			if row.IssueID1 != nil {
				b.WriteString(label.Render("Issue:   "))
				b.WriteString(accent.Render(fmt.Sprintf("%s (#%d)", deref(row.IssueName1, "-"), *row.IssueID1)))
				b.WriteString("\n")
			}
			if row.IssueID2 != nil {
				b.WriteString(label.Render("  └ "))
				b.WriteString(accent.Render(fmt.Sprintf("%s (#%d)", deref(row.IssueName2, "-"), *row.IssueID2)))
				b.WriteString("\n")
			}
			b.WriteString(label.Render("Path:    "))
			b.WriteString(deref(row.Path, "-"))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(label.Render("User:    "))
		b.WriteString(row.UserName)
		b.WriteString("\n")
		b.WriteString(label.Render("Date:    "))
		b.WriteString(row.WorkDate.Format("Mon 02 Jan 2006"))
		b.WriteString("\n")
		b.WriteString(label.Render("Time:    "))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Bold(true).Render(parser.FormatMinutes(row.WorkloadMinute)))
		b.WriteString(label.Render(fmt.Sprintf("  (%g min)", row.WorkloadMinute)))
		b.WriteString("\n")

		if row.Detail != "" {
			b.WriteString("\n")
			noteStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSecondaryText)).
				Italic(true).
				Width(width - 2)
			b.WriteString(noteStyle.Render(row.Detail))
			b.WriteString("\n")
		}

		idStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
		b.WriteString("\n")
		b.WriteString(idStyle.Render(fmt.Sprintf("workload #%d · updated %s", row.WorkloadID, row.UpdateTimestamp.Format("2006-01-02 15:04"))))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

func (m ReportModel) renderSearchBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render("Filter: " + m.searchQuery + "█")
}

func (m ReportModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("↑/↓ nav · ←/→ page · g/G top/bottom · / filter · esc clear · q quit")
}
