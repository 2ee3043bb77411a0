package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/config"
	"github.com/kendall-kelly/technician-finder-api/middleware"
	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/kendall-kelly/technician-finder-api/services"
)

// CreateUserRequest carries the profile fields Auth0 does not know about
type CreateUserRequest struct {
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// CreateUser handles POST /api/v1/users - creates a new user from Auth0 userinfo
// This endpoint requires authentication and fetches user data from Auth0's /userinfo endpoint
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	// The body is optional
	var req CreateUserRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}
	if req.Location != "" && !models.IsKnownCity(req.Location) {
		respondError(c, http.StatusBadRequest, "UNKNOWN_LOCATION", "Location is not a supported city")
		return
	}

	auth0Service := services.NewAuth0Service(config.GetConfig())
	userInfo, err := auth0Service.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	// Every account starts as a regular user; admins are promoted explicitly
	user := models.UserProfile{
		Auth0ID:  auth0ID,
		Name:     userInfo.Name,
		Email:    userInfo.Email,
		Phone:    req.Phone,
		Location: req.Location,
		Role:     models.RoleUser,
	}

	if err := services.GetProfileService().CreateUserProfile(c.Request.Context(), &user); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	user, ok := currentUserProfile(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates current user's profile
func UpdateMyProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req services.UserProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Location != "" && !models.IsKnownCity(req.Location) {
		respondError(c, http.StatusBadRequest, "UNKNOWN_LOCATION", "Location is not a supported city")
		return
	}

	user, err := services.GetProfileService().UpdateUserProfile(c.Request.Context(), auth0ID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, user)
}

// currentUserProfile loads the caller's profile, writing the error response when
// there is none. The second result reports whether the handler may continue.
func currentUserProfile(c *gin.Context) (*models.UserProfile, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	user, err := services.GetProfileService().GetUserProfile(c.Request.Context(), auth0ID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	if user == nil {
		respondError(c, http.StatusNotFound, services.CodeUserNotFound, "User profile not found. Please create a profile first.")
		return nil, false
	}
	return user, true
}
