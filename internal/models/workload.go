package models

import "time"

// Workload is time a user logged against a subtask
type Workload struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	SubtaskID       int64     `gorm:"not null;index" json:"subtask_id"`
	UserID          int64     `gorm:"not null;index" json:"user_id"`
	WorkDate        Date      `gorm:"not null;index" json:"work_date"`
	WorkloadMinute  float64   `gorm:"not null" json:"workload_minute"`
	Detail          string    `json:"detail"`
	UpdateTimestamp time.Time `gorm:"not null" json:"update_timestamp"`
	CreateTimestamp time.Time `gorm:"not null" json:"create_timestamp"`
}

// TableName pins the table to "workload"
func (Workload) TableName() string { return "workload" }

// WorkloadForm carries the editable fields of a workload.
// UserID zero means "the caller".
type WorkloadForm struct {
	SubtaskID      int64   `json:"subtask_id"`
	UserID         int64   `json:"user_id"`
	WorkDate       Date    `json:"work_date"`
	WorkloadMinute float64 `json:"workload_minute"`
	Detail         string  `json:"detail"`
}

// WorkloadCondition narrows a workload search. Nil fields impose no constraint.
type WorkloadCondition struct {
	TargetDate      *Date  `json:"target_date,omitempty"`
	LowerDate       *Date  `json:"lower_date,omitempty"`
	UpperDate       *Date  `json:"upper_date,omitempty"`
	SpecifyUserID   *int64 `json:"specify_user_id,omitempty"`
	WorkloadID      *int64 `json:"workload_id,omitempty"`
	IsTargetProject *bool  `json:"is_target_project,omitempty"`
}

// RegisteredWorkload is one fully denormalized workload row: the entry with
// its project, two reporting ancestors, subtask and user resolved.
type RegisteredWorkload struct {
	ProjectID       *int64    `gorm:"column:project_id" json:"project_id"`
	ProjectName     *string   `gorm:"column:project_name" json:"project_name"`
	Path            *string   `gorm:"column:path" json:"path"`
	IssueID1        *int64    `gorm:"column:issue_id_1" json:"issue_id_1"`
	IssueName1      *string   `gorm:"column:issue_name_1" json:"issue_name_1"`
	IssueID2        *int64    `gorm:"column:issue_id_2" json:"issue_id_2"`
	IssueName2      *string   `gorm:"column:issue_name_2" json:"issue_name_2"`
	SubtaskID       int64     `gorm:"column:subtask_id" json:"subtask_id"`
	SubtaskName     *string   `gorm:"column:subtask_name" json:"subtask_name"`
	WorkloadID      int64     `gorm:"column:workload_id" json:"workload_id"`
	UserID          int64     `gorm:"column:user_id" json:"user_id"`
	UserName        string    `gorm:"column:user_name" json:"user_name"`
	WorkDate        Date      `gorm:"column:work_date" json:"work_date"`
	WorkloadMinute  float64   `gorm:"column:workload_minute" json:"workload_minute"`
	Detail          string    `gorm:"column:detail" json:"detail"`
	UpdateTimestamp time.Time `gorm:"column:update_timestamp" json:"update_timestamp"`
	CreateTimestamp time.Time `gorm:"column:create_timestamp" json:"create_timestamp"`
}
