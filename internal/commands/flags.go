package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/jira"
	"github.com/balkashynov/worktrack/internal/models"
	"github.com/balkashynov/worktrack/internal/parser"
)

// nowFunc is swapped in tests
var nowFunc = time.Now

// parseSubtaskID reads a numeric Jira issue id. Issue keys are not stored
// locally, so a key gets its own error pointing at the numeric id.
func parseSubtaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err == nil && id > 0 {
		return id, nil
	}
	if parser.IsValidIssueKey(arg) {
		return 0, fmt.Errorf("%q is an issue key; use the numeric subtask id listed by 'worktrack paths'", arg)
	}
	return 0, fmt.Errorf("invalid subtask ID '%s'", arg)
}

// dateFlag parses a date flag; an empty value yields nil
func dateFlag(cmd *cobra.Command, name string) (*models.Date, error) {
	raw, _ := cmd.Flags().GetString(name)
	return parseOptionalDate(raw, nowFunc())
}

func parseOptionalDate(raw string, now time.Time) (*models.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := parser.ParseWorkDate(raw, now)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// resolveUser finds an active user by name
func resolveUser(ctx context.Context, store *db.Store, name string) (*models.User, error) {
	if name == "" {
		return nil, fmt.Errorf("--user is required")
	}
	user, err := store.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("no user named %q", name)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user %q is deactivated", name)
	}
	return user, nil
}

// newJiraClient builds a client from the loaded configuration
func newJiraClient() (*jira.Client, error) {
	if err := cfg.RequireJira(); err != nil {
		return nil, err
	}
	return jira.NewClient(jira.Config{
		BaseURL:  cfg.Jira.BaseURL,
		Email:    cfg.Jira.Email,
		APIToken: cfg.Jira.APIToken,
		Timeout:  cfg.Jira.Timeout,
		PageSize: cfg.Jira.PageSize,
	})
}

func strOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
