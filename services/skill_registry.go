package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kendall-kelly/technician-finder-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkillRegistry holds the skills technicians may offer. It is loaded from the
// skills table and kept in memory; Add and Remove write through to the table.
type SkillRegistry struct {
	db     *gorm.DB
	mu     sync.RWMutex
	skills []models.SkillDefinition
}

// NewSkillRegistry seeds the default skills if missing and loads the registry
func NewSkillRegistry(ctx context.Context, db *gorm.DB) (*SkillRegistry, error) {
	defaults := append([]models.SkillDefinition(nil), models.DefaultSkills...)
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return nil, fmt.Errorf("seed default skills: %w", err)
	}

	r := &SkillRegistry{db: db}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the in-memory registry with the table contents.
// Default skills come first in their canonical order, custom skills follow by creation time.
func (r *SkillRegistry) Reload(ctx context.Context) error {
	var rows []models.SkillDefinition
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load skills: %w", err)
	}

	byName := make(map[string]models.SkillDefinition, len(rows))
	for _, s := range rows {
		byName[s.NameEn] = s
	}

	ordered := make([]models.SkillDefinition, 0, len(rows))
	for _, d := range models.DefaultSkills {
		if s, ok := byName[d.NameEn]; ok {
			ordered = append(ordered, s)
			delete(byName, d.NameEn)
		}
	}
	custom := make([]models.SkillDefinition, 0, len(byName))
	for _, s := range byName {
		custom = append(custom, s)
	}
	sort.Slice(custom, func(i, j int) bool {
		if !custom[i].CreatedAt.Equal(custom[j].CreatedAt) {
			return custom[i].CreatedAt.Before(custom[j].CreatedAt)
		}
		return custom[i].NameEn < custom[j].NameEn
	})

	r.mu.Lock()
	r.skills = append(ordered, custom...)
	r.mu.Unlock()
	return nil
}

// All returns a copy of every registered skill
func (r *SkillRegistry) All() []models.SkillDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.SkillDefinition(nil), r.skills...)
}

// Names returns the English names of every registered skill
func (r *SkillRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.skills))
	for i, s := range r.skills {
		names[i] = s.NameEn
	}
	return names
}

// Lookup finds a skill by English or French name, ignoring case
func (r *SkillRegistry) Lookup(name string) (models.SkillDefinition, bool) {
	name = strings.TrimSpace(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.skills {
		if strings.EqualFold(s.NameEn, name) || strings.EqualFold(s.NameFr, name) {
			return s, true
		}
	}
	return models.SkillDefinition{}, false
}

// Contains reports whether name is a registered English skill name
func (r *SkillRegistry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.skills {
		if s.NameEn == name {
			return true
		}
	}
	return false
}

// ValidateSkills checks a technician's skill list: 1 to MaxTechnicianSkills
// distinct, registered names
func (r *SkillRegistry) ValidateSkills(skills []string) error {
	if len(skills) == 0 || len(skills) > models.MaxTechnicianSkills {
		return invalid(CodeUnknownSkill, fmt.Sprintf("between 1 and %d skills are required", models.MaxTechnicianSkills))
	}
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if !r.Contains(s) {
			return invalid(CodeUnknownSkill, fmt.Sprintf("unknown skill %q", s))
		}
		if _, dup := seen[s]; dup {
			return invalid(CodeUnknownSkill, fmt.Sprintf("skill %q listed twice", s))
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Add registers a custom skill
func (r *SkillRegistry) Add(ctx context.Context, def models.SkillDefinition) (models.SkillDefinition, error) {
	def.NameEn = strings.TrimSpace(def.NameEn)
	def.NameFr = strings.TrimSpace(def.NameFr)
	def.IsDefault = false
	if def.NameFr == "" {
		def.NameFr = def.NameEn
	}

	if _, exists := r.Lookup(def.NameEn); exists {
		return models.SkillDefinition{}, conflict(CodeSkillExists, fmt.Sprintf("skill %q already exists", def.NameEn))
	}

	if err := r.db.WithContext(ctx).Create(&def).Error; err != nil {
		if isUniqueViolation(err) {
			return models.SkillDefinition{}, conflict(CodeSkillExists, fmt.Sprintf("skill %q already exists", def.NameEn))
		}
		return models.SkillDefinition{}, transport("failed to save skill", err)
	}

	r.mu.Lock()
	r.skills = append(r.skills, def)
	r.mu.Unlock()
	return def, nil
}

// Remove deletes a custom skill. Default skills cannot be removed.
func (r *SkillRegistry) Remove(ctx context.Context, name string) error {
	def, ok := r.Lookup(name)
	if !ok {
		return notFound(CodeSkillNotFound, fmt.Sprintf("skill %q not found", name))
	}
	if def.IsDefault {
		return conflict(CodeSkillProtected, fmt.Sprintf("default skill %q cannot be removed", def.NameEn))
	}

	res := r.db.WithContext(ctx).Where("name_en = ?", def.NameEn).Delete(&models.SkillDefinition{})
	if res.Error != nil {
		return transport("failed to delete skill", res.Error)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.skills {
		if s.NameEn == def.NameEn {
			r.skills = append(r.skills[:i:i], r.skills[i+1:]...)
			break
		}
	}
	return nil
}
