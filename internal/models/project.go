package models

import "time"

// Project mirrors a Jira project. IsTarget is local-only and survives every sync.
type Project struct {
	ID              int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	JiraKey         string    `gorm:"size:32;uniqueIndex;not null" json:"jira_key"`
	Description     string    `json:"description"`
	IsTarget        bool      `gorm:"not null" json:"is_target"` // only superusers may flip it
	UpdateTimestamp time.Time `gorm:"not null" json:"update_timestamp"`
	CreateTimestamp time.Time `gorm:"not null" json:"create_timestamp"`
}

// TableName pins the table to "project"
func (Project) TableName() string { return "project" }
