package db

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/balkashynov/worktrack/internal/models"
)

// DefaultListRangeDays bounds ListUserWorkloads when no dates are given
const DefaultListRangeDays = 365

// registeredWorkloadColumns aliases every joined column onto
// models.RegisteredWorkload
var registeredWorkloadColumns = []string{
	"st.project_id AS project_id",
	"p.name AS project_name",
	"st.path AS path",
	"i1.id AS issue_id_1",
	"i1.name AS issue_name_1",
	"i2.id AS issue_id_2",
	"i2.name AS issue_name_2",
	"w.subtask_id AS subtask_id",
	"st.name AS subtask_name",
	"w.id AS workload_id",
	"w.user_id AS user_id",
	"u.name AS user_name",
	"w.work_date AS work_date",
	"w.workload_minute AS workload_minute",
	"w.detail AS detail",
	"w.update_timestamp AS update_timestamp",
	"w.create_timestamp AS create_timestamp",
}

// CreateWorkload logs time for form.UserID, or for actor when it is zero.
// Only a superuser may log on someone else's behalf.
func (s *Store) CreateWorkload(ctx context.Context, actor models.User, form models.WorkloadForm) (*models.Workload, error) {
	if form.UserID == 0 {
		form.UserID = actor.ID
	}
	if form.UserID != actor.ID && !actor.IsSuperuser {
		return nil, fmt.Errorf("%w: cannot log time for user #%d", ErrForbidden, form.UserID)
	}
	if err := validateWorkloadForm(form); err != nil {
		return nil, err
	}

	now := s.now()
	workload := models.Workload{
		SubtaskID:       form.SubtaskID,
		UserID:          form.UserID,
		WorkDate:        form.WorkDate,
		WorkloadMinute:  form.WorkloadMinute,
		Detail:          form.Detail,
		UpdateTimestamp: now,
		CreateTimestamp: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkWorkloadRefs(tx, form); err != nil {
			return err
		}
		return tx.Create(&workload).Error
	})
	if err != nil {
		return nil, err
	}
	return &workload, nil
}

// GetWorkload retrieves a raw workload row by id
func (s *Store) GetWorkload(ctx context.Context, id int64) (*models.Workload, error) {
	var workload models.Workload
	err := s.db.WithContext(ctx).First(&workload, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: workload #%d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &workload, nil
}

// UpdateWorkload overwrites the editable fields. Owner or superuser only.
func (s *Store) UpdateWorkload(ctx context.Context, actor models.User, id int64, form models.WorkloadForm) (*models.Workload, error) {
	if err := validateWorkloadForm(form); err != nil {
		return nil, err
	}

	var workload models.Workload
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadOwnedWorkload(tx, actor, id, &workload); err != nil {
			return err
		}
		if form.UserID == 0 {
			form.UserID = workload.UserID
		}
		if form.UserID != workload.UserID && !actor.IsSuperuser {
			return fmt.Errorf("%w: cannot reassign workload #%d", ErrForbidden, id)
		}
		if err := checkWorkloadRefs(tx, form); err != nil {
			return err
		}
		return tx.Model(&workload).Updates(map[string]any{
			"subtask_id":       form.SubtaskID,
			"user_id":          form.UserID,
			"work_date":        form.WorkDate,
			"workload_minute":  form.WorkloadMinute,
			"detail":           form.Detail,
			"update_timestamp": s.now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetWorkload(ctx, id)
}

// DeleteWorkload removes a workload. Owner or superuser only.
func (s *Store) DeleteWorkload(ctx context.Context, actor models.User, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workload models.Workload
		if err := loadOwnedWorkload(tx, actor, id, &workload); err != nil {
			return err
		}
		return tx.Delete(&workload).Error
	})
}

// ListUserWorkloads returns a user's raw entries between lower and upper
// inclusive. A nil upper defaults to today and a nil lower to
// DefaultListRangeDays before today, whatever upper is.
func (s *Store) ListUserWorkloads(ctx context.Context, userID int64, lower, upper *models.Date) ([]models.Workload, error) {
	today := models.DateOf(s.now())
	if upper == nil {
		upper = &today
	}
	if lower == nil {
		from := today.AddDays(-DefaultListRangeDays)
		lower = &from
	}

	var workloads []models.Workload
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("work_date >= ? AND work_date <= ?", *lower, *upper).
		Order("work_date, id").
		Find(&workloads).Error
	if err != nil {
		return nil, err
	}
	return workloads, nil
}

// SearchWorkloads returns every workload matching cond with its project,
// two reporting ancestors, subtask and user resolved. Only the user join is
// inner; a workload whose subtask has no hierarchy comes back with nulls.
func (s *Store) SearchWorkloads(ctx context.Context, cond models.WorkloadCondition) ([]models.RegisteredWorkload, error) {
	var rows []models.RegisteredWorkload
	err := s.db.WithContext(ctx).
		Table("workload AS w").
		Select(registeredWorkloadColumns).
		Joins("LEFT JOIN " + subtaskPathView + " AS st ON st.id = w.subtask_id").
		Joins("LEFT JOIN project AS p ON p.id = st.project_id").
		Joins("LEFT JOIN issue AS i1 ON i1.parent_issue_id IS NULL AND " + ancestorMatch("st.path", "i1.id")).
		Joins("LEFT JOIN issue AS i2 ON i2.parent_issue_id = i1.id AND " + ancestorMatch("st.path", "i2.id")).
		Joins(`JOIN "user" AS u ON u.id = w.user_id`).
		Scopes(scopes(conditionFilters(cond))...).
		Order("w.work_date, p.id NULLS FIRST, i1.id NULLS FIRST, i2.id NULLS FIRST, w.subtask_id, w.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search workloads: %w", err)
	}
	return rows, nil
}

// validateWorkloadForm rejects forms that can never be stored
func validateWorkloadForm(form models.WorkloadForm) error {
	if form.SubtaskID <= 0 {
		return fmt.Errorf("%w: subtask_id is required", ErrValidation)
	}
	if form.WorkDate.IsZero() {
		return fmt.Errorf("%w: work_date is required", ErrValidation)
	}
	m := form.WorkloadMinute
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		return fmt.Errorf("%w: workload_minute must be a non-negative number", ErrValidation)
	}
	return nil
}

// checkWorkloadRefs makes sure the subtask and user a form points at exist
func checkWorkloadRefs(tx *gorm.DB, form models.WorkloadForm) error {
	var subtask models.Issue
	err := tx.Select("id", "is_subtask").First(&subtask, form.SubtaskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: subtask #%d", ErrNotFound, form.SubtaskID)
	}
	if err != nil {
		return err
	}
	if !subtask.IsSubtask {
		return fmt.Errorf("%w: issue #%d is not a subtask", ErrValidation, form.SubtaskID)
	}

	var users int64
	if err := tx.Model(&models.User{}).Where("id = ?", form.UserID).Count(&users).Error; err != nil {
		return err
	}
	if users == 0 {
		return fmt.Errorf("%w: user #%d", ErrNotFound, form.UserID)
	}
	return nil
}

// loadOwnedWorkload fetches a workload the actor is allowed to change
func loadOwnedWorkload(tx *gorm.DB, actor models.User, id int64, dst *models.Workload) error {
	err := tx.First(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: workload #%d", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if dst.UserID != actor.ID && !actor.IsSuperuser {
		return fmt.Errorf("%w: workload #%d belongs to another user", ErrForbidden, id)
	}
	return nil
}
