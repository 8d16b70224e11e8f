package jira

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/worktrack/internal/models"
)

// Source is where projects and issues come from; *Client satisfies it
type Source interface {
	ListProjects(ctx context.Context) ([]Project, error)
	SearchIssues(ctx context.Context, projectID int64) ([]Issue, error)
}

// Sink is where they land; *db.Store satisfies it
type Sink interface {
	UpsertProjects(ctx context.Context, projects []models.Project) error
	UpsertIssues(ctx context.Context, issues []models.Issue) error
	ListTargetProjects(ctx context.Context) ([]models.Project, error)
}

// ProjectFailure records a project whose issues could not be synced
type ProjectFailure struct {
	ProjectID int64  `json:"project_id"`
	Key       string `json:"jira_key"`
	Error     string `json:"error"`
}

// SyncReport summarizes one resync
type SyncReport struct {
	Projects       int              `json:"projects"`
	SyncedProjects int              `json:"synced_projects"`
	Issues         int              `json:"issues"`
	Failures       []ProjectFailure `json:"failures,omitempty"`
	Duration       time.Duration    `json:"duration_ns"`
}

// Syncer mirrors Jira into the local store
type Syncer struct {
	src           Source
	sink          Sink
	defaultTarget bool
	log           *slog.Logger
}

// NewSyncer builds a Syncer. defaultTarget is the is_target value given to
// projects seen for the first time.
func NewSyncer(src Source, sink Sink, defaultTarget bool, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{src: src, sink: sink, defaultTarget: defaultTarget, log: log}
}

// Resync pulls every project, then the issues of each target project.
// Each project's issues are committed on their own, so a failure leaves
// earlier projects in place and re-running converges.
func (s *Syncer) Resync(ctx context.Context) (*SyncReport, error) {
	start := time.Now()
	report := &SyncReport{}

	remote, err := s.src.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	report.Projects = len(remote)

	projects := make([]models.Project, 0, len(remote))
	for _, p := range remote {
		projects = append(projects, ProjectToModel(p, s.defaultTarget))
	}
	if err := s.sink.UpsertProjects(ctx, projects); err != nil {
		return nil, fmt.Errorf("store projects: %w", err)
	}

	targets, err := s.sink.ListTargetProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list target projects: %w", err)
	}

	for _, p := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		n, err := s.syncProject(ctx, p)
		if err != nil {
			var upstream *UpstreamError
			if errors.As(err, &upstream) {
				s.log.Warn("skipping project", "project_id", p.ID, "jira_key", p.JiraKey, "status", upstream.StatusCode)
			} else {
				s.log.Error("project sync failed", "project_id", p.ID, "jira_key", p.JiraKey, "error", err)
			}
			report.Failures = append(report.Failures, ProjectFailure{ProjectID: p.ID, Key: p.JiraKey, Error: err.Error()})
			continue
		}
		report.SyncedProjects++
		report.Issues += n
	}

	report.Duration = time.Since(start)
	s.log.Info("jira resync finished",
		"projects", report.Projects,
		"synced", report.SyncedProjects,
		"issues", report.Issues,
		"failures", len(report.Failures),
		"duration", report.Duration)
	return report, nil
}

func (s *Syncer) syncProject(ctx context.Context, p models.Project) (int, error) {
	remote, err := s.src.SearchIssues(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	issues := make([]models.Issue, 0, len(remote))
	for _, r := range remote {
		issues = append(issues, IssueToModel(r))
	}
	if err := s.sink.UpsertIssues(ctx, issues); err != nil {
		return 0, fmt.Errorf("store issues: %w", err)
	}
	return len(issues), nil
}

// ProjectToModel converts a Jira project to its stored form
func ProjectToModel(p Project, target bool) models.Project {
	return models.Project{
		ID:          p.ID,
		Name:        p.Name,
		JiraKey:     p.Key,
		Description: p.Description,
		IsTarget:    target,
	}
}

// IssueToModel converts a Jira issue to its stored form
func IssueToModel(i Issue) models.Issue {
	return models.Issue{
		ID:            i.ID,
		Name:          i.Name,
		ProjectID:     i.ProjectID,
		ParentIssueID: i.ParentID,
		Type:          i.Type,
		IsSubtask:     i.IsSubtask,
		Status:        i.Status,
		LimitDate:     i.DueDate,
		Description:   i.Description,
	}
}
