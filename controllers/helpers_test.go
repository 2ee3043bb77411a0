package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/events"
	"github.com/kendall-kelly/technician-finder-api/middleware"
	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/kendall-kelly/technician-finder-api/services"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test database")
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// testEnv holds the services a controller test runs against
type testEnv struct {
	db       *gorm.DB
	s3       *services.MockS3Service
	skills   *services.SkillRegistry
	profiles *services.ProfileService
}

// setupServices installs sqlite-backed profile and image services as the globals
// the controllers read, and restores the previous ones when the test ends
func setupServices(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	skills, err := services.NewSkillRegistry(context.Background(), db)
	require.NoError(t, err)

	previousProfiles := services.GetProfileService()
	previousImages := services.GetImageService()

	s3 := services.NewMockS3Service()
	images := services.InitImageService(s3, zap.NewNop())
	profiles := services.NewProfileService(db, images, skills, events.NopPublisher{}, zap.NewNop())
	services.SetProfileService(profiles)
	t.Cleanup(func() {
		services.SetProfileService(previousProfiles)
		services.SetImageService(previousImages)
	})

	return &testEnv{db: db, s3: s3, skills: skills, profiles: profiles}
}

// createUser stores a user profile directly
func (e *testEnv) createUser(t *testing.T, auth0ID, name, location string) *models.UserProfile {
	t.Helper()
	user := &models.UserProfile{
		Auth0ID:  auth0ID,
		Name:     name,
		Email:    auth0ID[len("auth0|"):] + "@example.com",
		Phone:    "+237 600 000 000",
		Location: location,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// putUpload stores a file as if userID had uploaded it through the gallery endpoint
func (e *testEnv) putUpload(t *testing.T, userID, fileID string) {
	t.Helper()
	e.s3.Put(fileID, []byte("image"))
	require.NoError(t, e.db.Create(&models.GalleryUpload{FileID: fileID, UserID: userID}).Error)
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userInfo, exists := userInfoMap[authHeader[7:]]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, scope, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{Scope: scope},
		})
		c.Next()
	}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a multipart request with the given text fields and file parts
func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image content"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// envelope is the decoded response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Response body: %s", w.Body.String())
	return w, resp
}

func decodeData(t *testing.T, resp envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}
