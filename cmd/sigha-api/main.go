package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sigha-api/api/swagger"
	"github.com/noah-isme/sigha-api/internal/allocator"
	"github.com/noah-isme/sigha-api/internal/handler"
	"github.com/noah-isme/sigha-api/internal/middleware"
	"github.com/noah-isme/sigha-api/internal/models"
	"github.com/noah-isme/sigha-api/internal/repository"
	"github.com/noah-isme/sigha-api/internal/service"
	"github.com/noah-isme/sigha-api/pkg/cache"
	"github.com/noah-isme/sigha-api/pkg/config"
	"github.com/noah-isme/sigha-api/pkg/database"
	"github.com/noah-isme/sigha-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sigha-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sigha-api/pkg/middleware/requestid"
)

// @title SIGHA API
// @version 1.0.0
// @description Timetable allocation service for academic programs
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	metricsSvc := service.NewMetricsService()

	cacheEnabled := cfg.Cache.Enabled
	var cacheSvc *service.CacheService
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.DefaultTTL, logr, false)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, true)
		}
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.DefaultTTL, logr, false)
	}

	validate := validator.New()

	timetableSvc := service.NewTimetableService(
		courseRepo,
		roomRepo,
		timetableRepo,
		db,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.TimetableServiceConfig{
			Days:         gridDays(cfg.Timetable.Days),
			Slots:        gridSlots(cfg.Timetable.Slots),
			Programs:     allocator.DefaultPrograms(),
			WeeksPerTerm: cfg.Timetable.WeeksPerTerm,
			ProposalTTL:  cfg.Timetable.ProposalTTL,
		},
	)

	courseSvc := service.NewCourseService(courseRepo, allocator.DefaultPrograms(), validate, logr)

	var exportSvc *service.ExportService
	if cfg.Export.Enabled {
		exportSvc = service.NewExportService(timetableRepo, nil, nil, logr)
	}

	courseHandler := handler.NewCourseHandler(courseSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.POST("", courseHandler.Create)
			courses.POST("/seed", courseHandler.Seed)
			courses.GET("/:id", courseHandler.Get)
			courses.PUT("/:id", courseHandler.Update)
			courses.DELETE("/:id", courseHandler.Delete)
		}

		timetable := api.Group("/timetable")
		{
			timetable.POST("/generate", timetableHandler.Generate)
			timetable.POST("/save", timetableHandler.Save)
			timetable.GET("/current", timetableHandler.Current)
			timetable.GET("/versions", timetableHandler.Versions)
			timetable.GET("/versions/:id", timetableHandler.Version)
			timetable.DELETE("/versions/:id", timetableHandler.Delete)
			if cfg.Export.Enabled {
				timetable.GET("/export", timetableHandler.Export)
			}
		}

		if cfg.Dashboard.Enabled {
			dashboardSvc := service.NewDashboardService(timetableRepo, cacheSvc, logr, service.DashboardServiceConfig{
				CacheTTL: cfg.Dashboard.CacheTTL,
			})
			dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
			api.GET("/dashboard/metrics", dashboardHandler.Metrics)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func gridDays(days []string) []string {
	if len(days) == 0 {
		return allocator.DefaultDays()
	}
	return days
}

// gridSlots parses "HH:MM-HH:MM" entries, falling back to the built-in grid
// when the list is empty or malformed.
func gridSlots(raw []string) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, "-", 2)
		if len(parts) != 2 {
			continue
		}
		slots = append(slots, models.TimeSlot{
			Start: strings.TrimSpace(parts[0]),
			End:   strings.TrimSpace(parts[1]),
		})
	}
	if len(slots) == 0 {
		return allocator.DefaultSlots()
	}
	return slots
}
