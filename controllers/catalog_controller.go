package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/models"
)

// ListLocations handles GET /api/v1/locations
func ListLocations(c *gin.Context) {
	respondData(c, http.StatusOK, models.Cities)
}
