package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/notifications"
	"github.com/kendall-kelly/technician-finder-api/services"
)

// RegisterPushTokenRequest is the body of POST /api/v1/push-tokens
type RegisterPushTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android web"`
}

// RegisterPushToken handles POST /api/v1/push-tokens - registers or refreshes
// the caller's Expo push token
func RegisterPushToken(c *gin.Context) {
	user, ok := currentUserProfile(c)
	if !ok {
		return
	}

	var req RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if !notifications.IsValidToken(req.Token) {
		respondError(c, http.StatusBadRequest, "INVALID_PUSH_TOKEN", "Token is not an Expo push token")
		return
	}

	token, err := services.GetProfileService().RegisterPushToken(c.Request.Context(), user, req.Token, req.Platform)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, token)
}
