package models

import "time"

// User is an application account. HashedPassword never leaves the server.
type User struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	FamilyName      string    `gorm:"size:30" json:"family_name"`
	FirstName       string    `gorm:"size:30" json:"first_name"`
	Email           string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HashedPassword  string    `gorm:"not null" json:"-"`
	IsSuperuser     bool      `gorm:"not null" json:"is_superuser"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	UpdateTimestamp time.Time `gorm:"not null" json:"update_timestamp"`
	CreateTimestamp time.Time `gorm:"not null" json:"create_timestamp"`
}

// TableName pins the table to "user"
func (User) TableName() string { return "user" }

// SignupForm holds what a new account needs
type SignupForm struct {
	Name       string `json:"name"`
	FamilyName string `json:"family_name"`
	FirstName  string `json:"first_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// LoginForm holds sign-in credentials
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserSummary is the public listing shape
type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
