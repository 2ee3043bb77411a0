package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/kendall-kelly/technician-finder-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoteUser(t *testing.T) {
	env := setupServices(t)
	user := env.createUser(t, "auth0|future-admin", "Future Admin", "Douala")
	_, err := env.profiles.RegisterPushToken(context.Background(), user, "ExponentPushToken[admin-phone]", "ios")
	require.NoError(t, err)

	router := setupTestRouter()
	router.POST("/admin/users/:id/promote", PromoteUser)

	w, resp := serve(t, router, httptest.NewRequest(http.MethodPost, "/admin/users/"+user.ID+"/promote", nil))
	require.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())
	var promoted models.UserProfile
	decodeData(t, resp, &promoted)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	var token models.PushToken
	require.NoError(t, env.db.Where("token = ?", "ExponentPushToken[admin-phone]").First(&token).Error)
	assert.True(t, token.IsAdmin)

	w, resp = serve(t, router, httptest.NewRequest(http.MethodPost, "/admin/users/missing/promote", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", resp.Error.Code)
}

func TestAdminDeleteTechnician(t *testing.T) {
	env := setupServices(t)
	user := env.createUser(t, "auth0|tech", "Tech User", "Douala")
	env.putUpload(t, user.ID, "gallery/shot.png")
	profile, err := env.profiles.CreateTechnician(context.Background(), user.ID, services.TechnicianInput{
		Skills:       []string{"Plumber"},
		HourlyRate:   1000,
		Availability: models.AvailabilityAvailable,
		Gallery:      []services.GalleryEntry{{Kind: services.GalleryExisting, FileID: "gallery/shot.png"}},
	})
	require.NoError(t, err)

	router := setupTestRouter()
	router.DELETE("/admin/technicians/:id", AdminDeleteTechnician)

	w, _ := serve(t, router, httptest.NewRequest(http.MethodDelete, "/admin/technicians/"+profile.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.s3.FileExists("gallery/shot.png"))

	var count int64
	env.db.Unscoped().Model(&models.TechnicianProfile{}).Count(&count)
	assert.Zero(t, count)

	w, resp := serve(t, router, httptest.NewRequest(http.MethodDelete, "/admin/technicians/"+profile.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TECHNICIAN_NOT_FOUND", resp.Error.Code)
}
