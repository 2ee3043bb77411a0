package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/services"
)

// UploadGalleryImage handles POST /api/v1/uploads/gallery - stores one image
// and returns the file id to reference from a technician gallery
func UploadGalleryImage(c *gin.Context) {
	user, ok := currentUserProfile(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "NO_FILE", "No file provided in the 'file' field")
		return
	}

	fileID, err := services.GetProfileService().UploadGalleryImage(c.Request.Context(), user.ID, file)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"fileId": fileID,
		"url":    services.GetImageService().GetGalleryImageURL(fileID),
	})
}

// GetGalleryImageURL handles GET /api/v1/gallery/*fileId
func GetGalleryImageURL(c *gin.Context) {
	fileID := strings.TrimPrefix(c.Param("fileId"), "/")

	// Security: ids are bucket keys under the gallery prefix, nothing else
	if !strings.HasPrefix(fileID, services.GalleryKeyPrefix+"/") ||
		strings.Contains(fileID, "..") || strings.Contains(fileID, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_ID", "Invalid gallery file id")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"fileId": fileID,
		"url":    services.GetImageService().GetGalleryImageURL(fileID),
	})
}
