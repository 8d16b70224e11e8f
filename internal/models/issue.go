package models

import "time"

// Issue mirrors a Jira issue. Containers and subtasks share one table and
// point at their parent by id only, so the tree is read back as flat rows.
type Issue struct {
	ID              int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	ProjectID       *int64    `gorm:"index" json:"project_id"`
	ParentIssueID   *int64    `gorm:"index" json:"parent_issue_id"`
	Type            string    `gorm:"size:64" json:"type"`
	IsSubtask       bool      `gorm:"not null;index" json:"is_subtask"`
	Status          string    `gorm:"size:64" json:"status"`
	LimitDate       *Date     `json:"limit_date"`
	Description     string    `json:"description"`
	UpdateTimestamp time.Time `gorm:"not null" json:"update_timestamp"`
	CreateTimestamp time.Time `gorm:"not null" json:"create_timestamp"`
}

// TableName pins the table to "issue"
func (Issue) TableName() string { return "issue" }

// SubtaskWithPath is a row of the subtask_with_parent_path view: a subtask
// plus the derived "/<project>/<ancestor>>...>subtask." path. Path is nil
// when no container sits above the subtask.
type SubtaskWithPath struct {
	ID              int64     `gorm:"column:id" json:"id"`
	Name            string    `gorm:"column:name" json:"name"`
	ProjectID       *int64    `gorm:"column:project_id" json:"project_id"`
	ParentIssueID   *int64    `gorm:"column:parent_issue_id" json:"parent_issue_id"`
	Type            string    `gorm:"column:type" json:"type"`
	IsSubtask       bool      `gorm:"column:is_subtask" json:"is_subtask"`
	Status          string    `gorm:"column:status" json:"status"`
	LimitDate       *Date     `gorm:"column:limit_date" json:"limit_date"`
	Description     string    `gorm:"column:description" json:"description"`
	Path            *string   `gorm:"column:path" json:"path"`
	UpdateTimestamp time.Time `gorm:"column:update_timestamp" json:"update_timestamp"`
	CreateTimestamp time.Time `gorm:"column:create_timestamp" json:"create_timestamp"`
}

// TableName points reads at the view
func (SubtaskWithPath) TableName() string { return "subtask_with_parent_path" }
