package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/technician-finder-api/config"
	"github.com/kendall-kelly/technician-finder-api/controllers"
	"github.com/kendall-kelly/technician-finder-api/events"
	"github.com/kendall-kelly/technician-finder-api/logger"
	"github.com/kendall-kelly/technician-finder-api/middleware"
	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/kendall-kelly/technician-finder-api/notifications"
	"github.com/kendall-kelly/technician-finder-api/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the dependencies the router is built from
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	redis    redis.Cmdable
	skills   *services.SkillRegistry
	profiles *services.ProfileService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("starting Technician Finder API server", zap.String("env", cfg.GoEnv))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := bootstrap(ctx, cfg, zlog)
	defer cleanup()
	if err != nil {
		zlog.Error("failed to start", zap.Error(err))
		return
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(a, middleware.EnsureValidToken(cfg, zlog))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}
}

// bootstrap connects every backing service. The returned cleanup closes them
// in reverse order.
func bootstrap(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*app, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return nil, cleanup, err
	}
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, cleanup, err
	}
	zlog.Info("database migration completed")

	skills, err := services.NewSkillRegistry(ctx, db)
	if err != nil {
		return nil, cleanup, err
	}

	s3Service, err := services.InitS3Service(ctx, cfg, zlog)
	if err != nil {
		return nil, cleanup, err
	}
	images := services.InitImageService(s3Service, zlog)

	rdb, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, func() { _ = rdb.Close() })

	publisher, closePublisher, err := newPublisher(cfg, db, zlog)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closePublisher)

	profiles := services.InitProfileService(db, images, skills, publisher, zlog)

	return &app{
		cfg:      cfg,
		logger:   zlog,
		db:       db,
		redis:    rdb,
		skills:   skills,
		profiles: profiles,
	}, cleanup, nil
}

// newPublisher returns the broker publisher when RABBIT_URL is set. Without a
// broker, events are dispatched in-process straight to the notification fan-out.
func newPublisher(cfg *config.Config, db *gorm.DB, zlog *zap.Logger) (events.Publisher, func(), error) {
	if cfg.RabbitURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.RabbitURL, events.Exchange)
		if err != nil {
			return nil, nil, err
		}
		zlog.Info("publishing events to broker", zap.String("exchange", events.Exchange))
		return pub, func() { _ = pub.Close() }, nil
	}

	sender := notifications.NewExpoClient(cfg.ExpoPushURL, cfg.ExpoAccessToken)
	fanOut, err := notifications.NewFanOut(db, sender, zlog.Named("fanout"))
	if err != nil {
		return nil, nil, err
	}

	bus := events.NewLocalBus(zlog)
	bus.Subscribe(events.RKUserCreated, fanOut.HandleEvent)
	zlog.Info("no broker configured, dispatching events in-process")
	return bus, bus.Wait, nil
}

// setupRouter registers every route. auth guards the authenticated groups.
func setupRouter(a *app, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(a.logger))
	router.Use(cors.New(corsConfig(a.cfg)))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	skills := controllers.NewSkillController(a.skills)
	local := controllers.NewLocalController(a.redis, a.logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(a.db))

		// Public directory
		v1.GET("/technicians", controllers.ListTechnicians)
		v1.GET("/technicians/:id", controllers.GetTechnician)
		v1.GET("/skills", skills.List)
		v1.GET("/locations", controllers.ListLocations)
		v1.GET("/gallery/*fileId", controllers.GetGalleryImageURL)

		// Device-local catalogs
		device := v1.Group("/local", middleware.RequireDeviceID())
		{
			device.POST("/init", local.Init)
			device.GET("/technicians", local.List)
			device.POST("/technicians", local.Create)
			device.PUT("/technicians/:id", local.Update)
			device.DELETE("/technicians/:id", local.Delete)
			device.POST("/reset", local.Reset)
			device.POST("/favorites/:id/toggle", local.ToggleFavorite)
			device.GET("/favorites", local.ListFavorites)
		}

		// Authenticated routes
		authed := v1.Group("", auth)
		{
			authed.POST("/users", controllers.CreateUser)
			authed.GET("/users/me", controllers.GetMyProfile)
			authed.PUT("/users/me", controllers.UpdateMyProfile)

			// static segments win over /technicians/:id
			authed.GET("/technicians/me", controllers.GetMyTechnician)
			authed.POST("/technicians/me", controllers.CreateMyTechnician)
			authed.PUT("/technicians/me", controllers.UpdateMyTechnician)
			authed.DELETE("/technicians/me", controllers.DeleteMyTechnician)

			authed.POST("/uploads/gallery", controllers.UploadGalleryImage)
			authed.POST("/push-tokens", controllers.RegisterPushToken)

			admin := authed.Group("/admin", middleware.RequireAdmin(a.profiles))
			{
				admin.POST("/users/:id/promote", controllers.PromoteUser)
				admin.DELETE("/technicians/:id", controllers.AdminDeleteTechnician)
				admin.POST("/skills", skills.Add)
				admin.DELETE("/skills/:name", skills.Remove)
			}
		}
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.DeviceIDHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.CORSOrigins
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	return c
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Technician Finder API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		tables, err := db.Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
