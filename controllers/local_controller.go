package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/middleware"
	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/kendall-kelly/technician-finder-api/query"
	"github.com/kendall-kelly/technician-finder-api/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const codeStorageFailure = "STORAGE_FAILURE"

// LocalController serves the device-local catalogs kept in Redis.
// Every route runs behind middleware.RequireDeviceID.
type LocalController struct {
	client redis.Cmdable
	logger *zap.Logger
}

// NewLocalController creates a controller over client
func NewLocalController(client redis.Cmdable, logger *zap.Logger) *LocalController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalController{client: client, logger: logger}
}

func (lc *LocalController) catalog(c *gin.Context) (*store.LocalStore, store.KV) {
	deviceID := middleware.GetDeviceID(c)
	kv := store.DeviceKV(lc.client, deviceID)
	return store.NewLocalStore(kv, lc.logger.With(zap.String("device_id", deviceID))), kv
}

func (lc *LocalController) storageError(c *gin.Context, err error) {
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, codeStorageFailure, "Device catalog could not be saved")
}

// Init handles POST /api/v1/local/init
func (lc *LocalController) Init(c *gin.Context) {
	catalog, _ := lc.catalog(c)
	seeded, err := catalog.Initialize(c.Request.Context())
	if err != nil {
		lc.storageError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"seeded": seeded})
}

// List handles GET /api/v1/local/technicians
func (lc *LocalController) List(c *gin.Context) {
	criteria, ok := bindCriteria(c)
	if !ok {
		return
	}

	catalog, _ := lc.catalog(c)
	records := catalog.GetAll(c.Request.Context())
	respondData(c, http.StatusOK, query.Compose(records, criteria))
}

// Create handles POST /api/v1/local/technicians
func (lc *LocalController) Create(c *gin.Context) {
	var form models.TechnicianForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondValidationError(c, err)
		return
	}

	catalog, _ := lc.catalog(c)
	record, err := catalog.Add(c.Request.Context(), form)
	if err != nil {
		lc.storageError(c, err)
		return
	}

	respondData(c, http.StatusCreated, record)
}

// Update handles PUT /api/v1/local/technicians/:id
func (lc *LocalController) Update(c *gin.Context) {
	var form models.TechnicianForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondValidationError(c, err)
		return
	}

	catalog, _ := lc.catalog(c)
	record, err := catalog.Update(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		lc.storageError(c, err)
		return
	}
	if record == nil {
		respondError(c, http.StatusNotFound, "TECHNICIAN_NOT_FOUND", "Technician not found")
		return
	}

	respondData(c, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/local/technicians/:id
func (lc *LocalController) Delete(c *gin.Context) {
	catalog, _ := lc.catalog(c)
	removed, err := catalog.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.storageError(c, err)
		return
	}
	if !removed {
		respondError(c, http.StatusNotFound, "TECHNICIAN_NOT_FOUND", "Technician not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Technician deleted",
	})
}

// Reset handles POST /api/v1/local/reset - restores the seed catalog
func (lc *LocalController) Reset(c *gin.Context) {
	catalog, _ := lc.catalog(c)
	if err := catalog.ResetToSeed(c.Request.Context()); err != nil {
		lc.storageError(c, err)
		return
	}

	respondData(c, http.StatusOK, catalog.GetAll(c.Request.Context()))
}

// ToggleFavorite handles POST /api/v1/local/favorites/:id/toggle
func (lc *LocalController) ToggleFavorite(c *gin.Context) {
	catalog, kv := lc.catalog(c)
	favorites := store.NewFavorites(kv, catalog, lc.logger)

	id := c.Param("id")
	favorite, err := favorites.Toggle(c.Request.Context(), id)
	if err != nil {
		lc.storageError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": id, "favorite": favorite})
}

// ListFavorites handles GET /api/v1/local/favorites
func (lc *LocalController) ListFavorites(c *gin.Context) {
	catalog, kv := lc.catalog(c)
	favorites := store.NewFavorites(kv, catalog, lc.logger)

	respondData(c, http.StatusOK, favorites.List(c.Request.Context()))
}
