package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/worktrack/internal/models"
)

// projectSyncColumns are overwritten on re-sync; is_target and
// create_timestamp are deliberately absent so local state survives.
var projectSyncColumns = []string{"name", "jira_key", "description", "update_timestamp"}

// UpsertProjects inserts or refreshes projects keyed on their Jira id.
// New rows keep the IsTarget value the caller set; existing rows keep theirs.
func (s *Store) UpsertProjects(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	now := s.now()
	for i := range projects {
		projects[i].UpdateTimestamp = now
		projects[i].CreateTimestamp = now
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(projectSyncColumns),
		}).CreateInBatches(&projects, 100).Error
		if err != nil {
			return fmt.Errorf("upsert %d projects: %w", len(projects), err)
		}
		return nil
	})
}

// ListProjects returns every stored project ordered by id
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).Order("id").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListTargetProjects returns the projects that take part in sync and reporting
func (s *Store) ListTargetProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("is_target = ?", true).
		Order("id").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject retrieves a project by id
func (s *Store) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: project #%d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectByKey retrieves a project by its Jira key
func (s *Store) GetProjectByKey(ctx context.Context, key string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Where("jira_key = ?", key).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SetProjectTarget flips the local is_target flag
func (s *Store) SetProjectTarget(ctx context.Context, id int64, target bool) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: project #%d", ErrNotFound, id)
			}
			return err
		}
		return tx.Model(&project).Updates(map[string]any{
			"is_target":        target,
			"update_timestamp": s.now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	project.IsTarget = target
	return &project, nil
}
