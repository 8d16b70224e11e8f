package db

import (
	"gorm.io/gorm"

	"github.com/balkashynov/worktrack/internal/models"
)

// filter narrows a workload search query
type filter func(*gorm.DB) *gorm.DB

// conditionFilters turns each set field of cond into a predicate.
// Unset fields contribute nothing.
func conditionFilters(cond models.WorkloadCondition) []filter {
	var filters []filter

	if cond.TargetDate != nil {
		d := *cond.TargetDate
		filters = append(filters, func(q *gorm.DB) *gorm.DB {
			return q.Where("w.work_date = ?", d)
		})
	}
	if cond.LowerDate != nil {
		d := *cond.LowerDate
		filters = append(filters, func(q *gorm.DB) *gorm.DB {
			return q.Where("w.work_date >= ?", d)
		})
	}
	if cond.UpperDate != nil {
		d := *cond.UpperDate
		filters = append(filters, func(q *gorm.DB) *gorm.DB {
			return q.Where("w.work_date <= ?", d)
		})
	}
	if cond.SpecifyUserID != nil {
		id := *cond.SpecifyUserID
		filters = append(filters, func(q *gorm.DB) *gorm.DB {
			return q.Where("w.user_id = ?", id)
		})
	}
	if cond.WorkloadID != nil {
		id := *cond.WorkloadID
		filters = append(filters, func(q *gorm.DB) *gorm.DB {
			return q.Where("w.id = ?", id)
		})
	}
	if cond.IsTargetProject != nil {
		target := *cond.IsTargetProject
		filters = append(filters, func(q *gorm.DB) *gorm.DB {
			return q.Where("p.is_target = ?", target)
		})
	}

	return filters
}

// scopes adapts filters to gorm's Scopes signature
func scopes(filters []filter) []func(*gorm.DB) *gorm.DB {
	out := make([]func(*gorm.DB) *gorm.DB, len(filters))
	for i, f := range filters {
		out[i] = f
	}
	return out
}
