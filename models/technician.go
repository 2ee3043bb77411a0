package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Limits enforced by callers before a profile is written
const (
	MaxTechnicianSkills = 3
	MinExperienceYears  = 0
	MaxExperienceYears  = 50
	MinHourlyRate       = 500
	MaxHourlyRate       = 100000
)

// TechnicianProfile is a registered technician account's public profile
type TechnicianProfile struct {
	ID              string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID          string                      `gorm:"size:36;not null;uniqueIndex" json:"userId"` // foreign key to users table
	User            *UserProfile                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Skills          datatypes.JSONSlice[string] `gorm:"not null" json:"skills"`
	ExperienceYears int                         `gorm:"not null;default:0" json:"experienceYears"`
	HourlyRate      float64                     `gorm:"not null" json:"hourlyRate"`
	Availability    Availability                `gorm:"size:16;not null;default:'available'" json:"availability"`
	Bio             string                      `gorm:"type:text" json:"bio"`
	BioFr           string                      `gorm:"type:text" json:"bioFr"`
	Gallery         datatypes.JSONSlice[string] `json:"gallery"` // file ids in display order
	Rating          float64                     `gorm:"not null;default:0" json:"rating"`
	ReviewCount     int                         `gorm:"not null;default:0" json:"reviewCount"`
	JobsCompleted   int                         `gorm:"not null;default:0" json:"jobsCompleted"`
	Version         int                         `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt              `gorm:"index" json:"-"`
}

// TableName specifies the table name for the TechnicianProfile model
func (TechnicianProfile) TableName() string {
	return "technicians"
}

// BeforeCreate assigns a document id and the initial version
func (t *TechnicianProfile) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Version == 0 {
		t.Version = 1
	}
	return nil
}

// TechnicianListing is a technician profile joined with its owner's contact details,
// as shown in the directory
type TechnicianListing struct {
	TechnicianProfile
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Location    string   `json:"location"`
	GalleryURLs []string `json:"galleryUrls"`
}

func (l TechnicianListing) ListingName() string        { return l.Name }
func (l TechnicianListing) ListingSkills() []string    { return l.Skills }
func (l TechnicianListing) ListingLocation() string    { return l.Location }
func (l TechnicianListing) ListingRating() float64     { return l.Rating }
func (l TechnicianListing) ListingExperience() int     { return l.ExperienceYears }
func (l TechnicianListing) ListingHourlyRate() float64 { return l.HourlyRate }
