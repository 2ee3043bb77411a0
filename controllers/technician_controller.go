package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/kendall-kelly/technician-finder-api/query"
	"github.com/kendall-kelly/technician-finder-api/services"
)

// ListTechnicians handles GET /api/v1/technicians - the public directory,
// filtered and sorted by the search, skill, location and sort query parameters
func ListTechnicians(c *gin.Context) {
	criteria, ok := bindCriteria(c)
	if !ok {
		return
	}

	profiles := services.GetProfileService()
	listings, err := profiles.ListTechnicians(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, query.Compose(listings, criteria))
}

// GetTechnician handles GET /api/v1/technicians/:id
func GetTechnician(c *gin.Context) {
	profiles := services.GetProfileService()
	profile, err := profiles.GetTechnicianByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, profiles.Listing(*profile))
}

// GetMyTechnician handles GET /api/v1/technicians/me
func GetMyTechnician(c *gin.Context) {
	user, ok := currentUserProfile(c)
	if !ok {
		return
	}

	profiles := services.GetProfileService()
	profile, err := profiles.GetTechnician(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if profile == nil {
		respondError(c, http.StatusNotFound, services.CodeTechnicianNotFound, "You have not registered as a technician")
		return
	}

	respondData(c, http.StatusOK, profiles.Listing(*profile))
}

// CreateMyTechnician handles POST /api/v1/technicians/me - registers the caller as a technician.
// Accepts JSON, or multipart/form-data with the JSON in a "profile" field plus image parts.
func CreateMyTechnician(c *gin.Context) {
	user, ok := currentUserProfile(c)
	if !ok {
		return
	}

	var input services.TechnicianInput
	if err := bindProfileBody(c, &input); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := attachGalleryFiles(c, input.Gallery); err != nil {
		respondValidationError(c, err)
		return
	}

	profiles := services.GetProfileService()
	profile, err := profiles.CreateTechnician(c.Request.Context(), user.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, profiles.Listing(*profile))
}

// UpdateMyTechnician handles PUT /api/v1/technicians/me - partial update of the caller's profile
func UpdateMyTechnician(c *gin.Context) {
	user, ok := currentUserProfile(c)
	if !ok {
		return
	}

	profiles := services.GetProfileService()
	current, err := profiles.GetTechnician(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if current == nil {
		respondError(c, http.StatusNotFound, services.CodeTechnicianNotFound, "You have not registered as a technician")
		return
	}

	var update services.TechnicianUpdate
	if err := bindProfileBody(c, &update); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := attachGalleryFiles(c, update.Gallery); err != nil {
		respondValidationError(c, err)
		return
	}

	profile, err := profiles.UpdateTechnician(c.Request.Context(), current.ID, update)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, profiles.Listing(*profile))
}

// DeleteMyTechnician handles DELETE /api/v1/technicians/me
func DeleteMyTechnician(c *gin.Context) {
	user, ok := currentUserProfile(c)
	if !ok {
		return
	}

	profiles := services.GetProfileService()
	current, err := profiles.GetTechnician(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if current == nil {
		respondError(c, http.StatusNotFound, services.CodeTechnicianNotFound, "You have not registered as a technician")
		return
	}

	if err := profiles.DeleteTechnician(c.Request.Context(), current.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Technician profile deleted",
	})
}

func bindCriteria(c *gin.Context) (query.Criteria, bool) {
	var criteria query.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		respondValidationError(c, err)
		return criteria, false
	}
	criteria.Sort = query.ParseSort(string(criteria.Sort))
	return criteria, true
}

// bindProfileBody decodes a technician profile body. Multipart bodies carry
// the JSON document in their "profile" field.
func bindProfileBody(c *gin.Context, dst interface{}) error {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return c.ShouldBindJSON(dst)
	}

	raw := c.PostForm("profile")
	if raw == "" {
		return errors.New("multipart body requires a profile field")
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(dst)
}

// attachGalleryFiles links each new gallery entry to the uploaded part it names
func attachGalleryFiles(c *gin.Context, entries []services.GalleryEntry) error {
	for i := range entries {
		if entries[i].Kind != services.GalleryNew {
			continue
		}
		if entries[i].Field == "" {
			return fmt.Errorf("gallery[%d]: new entries must name their file field", i)
		}
		file, err := c.FormFile(entries[i].Field)
		if err != nil {
			return fmt.Errorf("gallery[%d]: file %q not found in request", i, entries[i].Field)
		}
		entries[i].File = file
	}
	return nil
}
