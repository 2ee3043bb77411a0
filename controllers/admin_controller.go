package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/services"
)

// PromoteUser handles POST /api/v1/admin/users/:id/promote
func PromoteUser(c *gin.Context) {
	user, err := services.GetProfileService().PromoteToAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, user)
}

// AdminDeleteTechnician handles DELETE /api/v1/admin/technicians/:id
func AdminDeleteTechnician(c *gin.Context) {
	if err := services.GetProfileService().DeleteTechnician(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Technician profile deleted",
	})
}
