package models

import "time"

// PushToken is a device's Expo push token, registered by the signed-in user on that device
type PushToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"` // foreign key to users table
	IsAdmin   bool      `gorm:"not null;default:false;index" json:"isAdmin"`
	Platform  string    `gorm:"size:16" json:"platform"` // ios, android, web
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the PushToken model
func (PushToken) TableName() string {
	return "push_tokens"
}
