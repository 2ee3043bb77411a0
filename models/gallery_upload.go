package models

import "time"

// GalleryUpload records which account uploaded a gallery file. A technician
// gallery may only reference files its owner uploaded.
type GalleryUpload struct {
	FileID    string    `gorm:"primaryKey;size:255" json:"fileId"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"` // foreign key to users table
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for the GalleryUpload model
func (GalleryUpload) TableName() string {
	return "gallery_uploads"
}
