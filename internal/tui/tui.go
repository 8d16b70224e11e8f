package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/worktrack/internal/models"
)

// RunReportTUI starts the interactive workload report viewer
func RunReportTUI(title string, rows []models.RegisteredWorkload) error {
	p := tea.NewProgram(NewReportModel(title, rows), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
