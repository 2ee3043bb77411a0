package models

// All lists every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&UserProfile{},
		&TechnicianProfile{},
		&SkillDefinition{},
		&PushToken{},
		&GalleryUpload{},
	}
}
