package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ecocity/waste-api/api/swagger"
	"github.com/ecocity/waste-api/internal/handler"
	"github.com/ecocity/waste-api/internal/middleware"
	"github.com/ecocity/waste-api/internal/models"
	"github.com/ecocity/waste-api/internal/repository"
	"github.com/ecocity/waste-api/internal/repository/memory"
	"github.com/ecocity/waste-api/internal/service"
	"github.com/ecocity/waste-api/pkg/cache"
	"github.com/ecocity/waste-api/pkg/config"
	"github.com/ecocity/waste-api/pkg/database"
	"github.com/ecocity/waste-api/pkg/logger"
	corsmiddleware "github.com/ecocity/waste-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ecocity/waste-api/pkg/middleware/requestid"
	"github.com/ecocity/waste-api/pkg/storage"
)

// @title EcoCity Waste API
// @version 1.0.0
// @description Municipal waste reporting, eco-credit ledger and collector directory
// @BasePath /api
// @schemes http

const memorySeedPassword = "password123"

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

	var db *sqlx.DB
	var stores repository.Stores
	switch cfg.StoreDriver {
	case config.StoreMemory:
		store := memory.NewStore()
		if cfg.Env != config.EnvProduction {
			if err := store.Seed(memorySeedPassword); err != nil {
				logr.Sugar().Fatalw("failed to seed memory store", "error", err)
			}
			logr.Info("memory store seeded with demo fixtures")
		}
		stores = memory.NewStores(store)
	default:
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		stores = repository.NewPostgresStores(db)
	}

	var redisClient *redis.Client
	if cfg.Stats.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats cache disabled", "error", err)
		}
	}

	uploads, err := storage.NewUploads(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}

	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(stores.Users, stores.Profiles, validate, logr, service.AuthConfig{
		Secret:      cfg.JWT.Secret,
		Expiry:      cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
		SignupGrant: cfg.Credits.SignupGrant,
	})
	complaintSvc := service.NewComplaintService(stores.Complaints, stores.Workers, validate, logr)
	reportSvc := service.NewReportService(stores.Reports, stores.Complaints, validate, logr)
	creditSvc := service.NewCreditService(stores.Profiles, stores.Codes, validate, logr, service.CreditConfig{
		RedeemCost: cfg.Credits.RedeemCost,
		CodePrefix: cfg.Credits.CodePrefix,
	})
	workerSvc := service.NewWorkerService(stores.Workers, validate, logr)
	statsSvc := service.NewStatsService(stores.Profiles, stores.Complaints, stores.Reports, cacheRepo, metricsSvc, logr, service.StatsConfig{
		CacheEnabled: cfg.Stats.CacheEnabled && redisClient != nil,
		CacheTTL:     cfg.Stats.CacheTTL,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	complaintHandler := handler.NewComplaintHandler(complaintSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	creditHandler := handler.NewCreditHandler(creditSvc)
	workerHandler := handler.NewWorkerHandler(workerSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	uploadHandler := handler.NewUploadHandler(uploads, cfg.Uploads.PublicURL)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	if cfg.MaxRequestSize > 0 {
		r.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxRequestSize)
			c.Next()
		})
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Static("/uploads", uploads.Dir())

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	complaints := api.Group("/complaints", middleware.JWT(authSvc))
	complaints.POST("", complaintHandler.Create)
	complaints.GET("", complaintHandler.List)
	complaints.GET("/:id", complaintHandler.Get)
	complaints.PUT("/:id/assign", adminOnly, complaintHandler.Assign)
	complaints.PUT("/:id/status", adminOnly, complaintHandler.UpdateStatus)

	reports := api.Group("/reports", middleware.JWT(authSvc))
	reports.POST("", reportHandler.Create)
	reports.GET("", reportHandler.List)
	reports.PUT("/:id/status", adminOnly, reportHandler.UpdateStatus)

	users := api.Group("/users", middleware.JWT(authSvc))
	users.GET("", adminOnly, creditHandler.ListUsers)
	users.GET("/:id/credits", middleware.RBAC(string(models.RoleAdmin), "SELF"), creditHandler.Balance)
	users.POST("/:id/credits", adminOnly, creditHandler.Grant)

	api.POST("/credits/redeem", middleware.JWT(authSvc), creditHandler.Redeem)
	api.GET("/redeem-codes", middleware.JWT(authSvc), creditHandler.ListCodes)
	api.PUT("/redeem-codes/:code/use", middleware.JWT(authSvc), adminOnly, creditHandler.UseCode)

	workers := api.Group("/workers", middleware.JWT(authSvc))
	workers.GET("", workerHandler.List)
	workers.POST("", adminOnly, workerHandler.Create)

	stats := api.Group("/stats", middleware.JWT(authSvc), adminOnly)
	stats.GET("/overview", statsHandler.Overview)
	stats.GET("/export", statsHandler.Export)
	api.GET("/green-champion", middleware.JWT(authSvc), adminOnly, statsHandler.GreenChampion)

	api.POST("/uploads", middleware.JWT(authSvc), uploadHandler.Upload)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
