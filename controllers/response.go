package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/services"
	"github.com/kendall-kelly/technician-finder-api/utils"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondServiceError maps service and upload errors to an HTTP response
func respondServiceError(c *gin.Context, err error) {
	var fileErr *utils.FileUploadError
	if errors.As(err, &fileErr) {
		respondError(c, http.StatusBadRequest, fileErr.Code, fileErr.Message)
		return
	}

	var se *services.ServiceError
	if !errors.As(err, &se) {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, se.Code, se.Message)
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusConflict, se.Code, se.Message)
	case errors.Is(err, services.ErrValidation):
		respondError(c, http.StatusBadRequest, se.Code, se.Message)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, se.Code, se.Message)
	}
}
