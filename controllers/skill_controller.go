package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/kendall-kelly/technician-finder-api/services"
)

// SkillController serves the skill registry
type SkillController struct {
	skills *services.SkillRegistry
}

// NewSkillController creates a controller over registry
func NewSkillController(registry *services.SkillRegistry) *SkillController {
	return &SkillController{skills: registry}
}

// AddSkillRequest is the body of POST /api/v1/admin/skills
type AddSkillRequest struct {
	NameEn string `json:"nameEn" binding:"required,max=64"`
	NameFr string `json:"nameFr" binding:"max=64"`
	Color  string `json:"color" binding:"omitempty,hexcolor"`
	Icon   string `json:"icon" binding:"max=64"`
}

// List handles GET /api/v1/skills
func (sc *SkillController) List(c *gin.Context) {
	respondData(c, http.StatusOK, sc.skills.All())
}

// Add handles POST /api/v1/admin/skills
func (sc *SkillController) Add(c *gin.Context) {
	var req AddSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	skill, err := sc.skills.Add(c.Request.Context(), models.SkillDefinition{
		NameEn: req.NameEn,
		NameFr: req.NameFr,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, skill)
}

// Remove handles DELETE /api/v1/admin/skills/:name
func (sc *SkillController) Remove(c *gin.Context) {
	if err := sc.skills.Remove(c.Request.Context(), c.Param("name")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Skill removed",
	})
}
