package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user profile can hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile represents an account's contact profile
type UserProfile struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Auth0ID      string         `gorm:"uniqueIndex;not null" json:"auth0Id"` // Auth0 user ID (from 'sub' claim)
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string         `json:"phone"`
	Location     string         `json:"location"`
	Role         string         `gorm:"not null;default:'user'" json:"role"` // "user" or "admin"
	AvatarFileID string         `json:"avatarFileId,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the UserProfile model
func (UserProfile) TableName() string {
	return "users"
}

// BeforeCreate assigns a document id and the default role
func (u *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsAdmin reports whether the profile holds the admin role
func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}
