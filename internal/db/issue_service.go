package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/worktrack/internal/hierarchy"
	"github.com/balkashynov/worktrack/internal/models"
)

var issueSyncColumns = []string{
	"name", "project_id", "parent_issue_id", "type", "is_subtask",
	"status", "limit_date", "description", "update_timestamp",
}

// UpsertIssues inserts or refreshes a batch of issues in one transaction.
// Either the whole batch lands or none of it does.
func (s *Store) UpsertIssues(ctx context.Context, issues []models.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	now := s.now()
	for i := range issues {
		issues[i].UpdateTimestamp = now
		issues[i].CreateTimestamp = now
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(issueSyncColumns),
		}).CreateInBatches(&issues, 200).Error
		if err != nil {
			return fmt.Errorf("upsert %d issues: %w", len(issues), err)
		}
		return nil
	})
}

// ListMainIssues returns the containers (is_subtask = false)
func (s *Store) ListMainIssues(ctx context.Context) ([]models.Issue, error) {
	return s.listIssues(ctx, false)
}

// ListSubtasks returns the loggable leaves (is_subtask = true)
func (s *Store) ListSubtasks(ctx context.Context) ([]models.Issue, error) {
	return s.listIssues(ctx, true)
}

func (s *Store) listIssues(ctx context.Context, subtask bool) ([]models.Issue, error) {
	var issues []models.Issue
	err := s.db.WithContext(ctx).
		Where("is_subtask = ?", subtask).
		Order("project_id, parent_issue_id, id").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// ListIssueNodes loads just the columns the path deriver needs
func (s *Store) ListIssueNodes(ctx context.Context) ([]hierarchy.Node, error) {
	issues, err := s.listIssueSkeletons(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.NodesFromIssues(issues), nil
}

func (s *Store) listIssueSkeletons(ctx context.Context) ([]models.Issue, error) {
	var issues []models.Issue
	err := s.db.WithContext(ctx).
		Select("id", "project_id", "parent_issue_id", "is_subtask").
		Order("id").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// SubtasksWithPath reads the live path view; it always reflects the
// current issue table.
func (s *Store) SubtasksWithPath(ctx context.Context) ([]models.SubtaskWithPath, error) {
	var rows []models.SubtaskWithPath
	err := s.db.WithContext(ctx).
		Order("project_id, parent_issue_id, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IssueTriples flattens the stored forest into one
// (ancestor_1, ancestor_2, subtask) triple per placeable subtask
func (s *Store) IssueTriples(ctx context.Context) ([]hierarchy.Triple, error) {
	nodes, err := s.ListIssueNodes(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Triples(nodes)
}

// VerifyPaths compares the SQL view with the in-memory deriver
func (s *Store) VerifyPaths(ctx context.Context) ([]hierarchy.Mismatch, error) {
	view, err := s.SubtasksWithPath(ctx)
	if err != nil {
		return nil, err
	}
	issues, err := s.listIssueSkeletons(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Verify(view, issues)
}
