package models

import "time"

// SkillDefinition describes a trade technicians can offer, with bilingual display names
type SkillDefinition struct {
	NameEn    string    `gorm:"primaryKey;size:64" json:"nameEn"`
	NameFr    string    `gorm:"size:64;not null" json:"nameFr"`
	Color     string    `gorm:"size:16" json:"color"`
	Icon      string    `gorm:"size:64" json:"icon"`
	IsDefault bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for the SkillDefinition model
func (SkillDefinition) TableName() string {
	return "skills"
}

// DefaultSkills are always present and cannot be removed
var DefaultSkills = []SkillDefinition{
	{NameEn: "Plumber", NameFr: "Plombier", Color: "#2196F3", Icon: "water", IsDefault: true},
	{NameEn: "Electrician", NameFr: "Électricien", Color: "#FFC107", Icon: "flash", IsDefault: true},
	{NameEn: "Carpenter", NameFr: "Menuisier", Color: "#795548", Icon: "hammer", IsDefault: true},
	{NameEn: "Mason", NameFr: "Maçon", Color: "#9E9E9E", Icon: "construct", IsDefault: true},
	{NameEn: "Painter", NameFr: "Peintre", Color: "#E91E63", Icon: "color-palette", IsDefault: true},
}
