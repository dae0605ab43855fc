package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-insights-api/api/swagger"
	"github.com/noah-isme/lms-insights-api/internal/handler"
	"github.com/noah-isme/lms-insights-api/internal/middleware"
	"github.com/noah-isme/lms-insights-api/internal/repository"
	"github.com/noah-isme/lms-insights-api/internal/service"
	"github.com/noah-isme/lms-insights-api/pkg/cache"
	"github.com/noah-isme/lms-insights-api/pkg/config"
	"github.com/noah-isme/lms-insights-api/pkg/database"
	"github.com/noah-isme/lms-insights-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-insights-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-insights-api/pkg/middleware/requestid"
)

// @title LMS Insights API
// @version 0.1.0
// @description Risk and progress analytics over LMS fact tables
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

	var db *sqlx.DB
	var snapshots service.SnapshotProvider
	switch cfg.Data.Source {
	case config.DataSourcePostgres:
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("postgres connection failed", "error", err)
		}
		defer db.Close() //nolint:errcheck
		snapshots = repository.NewPostgresSnapshotRepository(db, logr)
	case config.DataSourceCSV:
		snapshots = repository.NewCSVSnapshotRepository(cfg.Data.Dir, logr)
	default:
		logr.Sugar().Fatalw("unknown data source", "source", cfg.Data.Source)
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, responses will not be cached", zap.Error(err))
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	dashboardCfg := service.DashboardServiceConfig{
		CacheTTL:          cfg.Dashboard.CacheTTL,
		AtRiskThreshold:   cfg.Risk.AtRiskThreshold,
		LookaheadDays:     cfg.Risk.LookaheadDays,
		InactiveAfterDays: cfg.Risk.InactiveAfterDays,
		RiskTopSize:       cfg.Risk.TopSize,
	}
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Snapshots: snapshots,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Logger:    logr,
		Config:    dashboardCfg,
	})
	exportSvc := service.NewExportService(snapshots, logr, dashboardCfg)

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", readiness(cfg, db))
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.Dashboard.Enabled {
		api.GET("/student/:user_id/dashboard", dashboardHandler.Student)
		api.GET("/teacher/course/:course_id/dashboard", dashboardHandler.TeacherCourse)
		api.GET("/teacher/:teacher_id/dashboard", dashboardHandler.TeacherOverall)
	}
	if cfg.Dashboard.Enabled && cfg.Mentor.Enabled {
		api.GET("/mentor/:mentor_id/dashboard", dashboardHandler.Mentor)
	}
	if cfg.Dashboard.Enabled && cfg.Exports.Enabled {
		api.GET("/teacher/course/:course_id/dashboard/export", exportHandler.CourseRiskReport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "data_source", cfg.Data.Source)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// readiness verifies the configured snapshot source is reachable.
func readiness(cfg *config.Config, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch cfg.Data.Source {
		case config.DataSourcePostgres:
			if db == nil || db.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
				return
			}
		case config.DataSourceCSV:
			if info, err := os.Stat(cfg.Data.Dir); err != nil || !info.IsDir() {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "data directory missing"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
