package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mochila-app/backpack-api/api/swagger"
	"github.com/mochila-app/backpack-api/internal/handler"
	"github.com/mochila-app/backpack-api/internal/middleware"
	"github.com/mochila-app/backpack-api/internal/repository"
	"github.com/mochila-app/backpack-api/internal/service"
	"github.com/mochila-app/backpack-api/pkg/ai"
	"github.com/mochila-app/backpack-api/pkg/cache"
	"github.com/mochila-app/backpack-api/pkg/config"
	"github.com/mochila-app/backpack-api/pkg/database"
	"github.com/mochila-app/backpack-api/pkg/jobs"
	"github.com/mochila-app/backpack-api/pkg/logger"
	corsmiddleware "github.com/mochila-app/backpack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mochila-app/backpack-api/pkg/middleware/requestid"
	"github.com/mochila-app/backpack-api/pkg/storage"
	"github.com/mochila-app/backpack-api/pkg/tts"
)

// @title Backpack API
// @version 1.0.0
// @description School backpack planning service: weekly schedules, vacations and day-aware packing advice
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var adviceCache service.Cache
	if cfg.Advice.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		adviceCache = service.NewCacheService(cacheRepo, metricsSvc, cfg.Advice.CacheTTL, logr)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "backpack-api",
	})
	profileSvc := service.NewProfileService(profileRepo, userRepo, adviceCache, validate, logr)
	scheduleSvc := service.NewScheduleService(profileRepo, adviceCache, validate, logr)
	adviceSvc := service.NewAdviceService(profileRepo, adviceCache, service.AdviceCacheConfig{
		Enabled: cfg.Advice.CacheEnabled,
		TTL:     cfg.Advice.CacheTTL,
	}, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	exportSvc := service.NewExportService(profileRepo, cfg.Exports.Enabled, logr)

	importCfg := service.ImportConfig{
		Enabled:          cfg.AI.Enabled,
		MaxImageBytes:    cfg.AI.MaxImageBytes,
		AllowedMIMETypes: cfg.AI.AllowedMIMETypes,
	}
	var importSvc *service.ImportService
	if cfg.AI.Enabled {
		extractor, err := ai.NewExtractor(ai.Config{
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			APIKey:  cfg.AI.APIKey,
			Timeout: cfg.AI.Timeout,
		}, logr)
		if err != nil {
			logr.Fatal("failed to init schedule extractor", zap.Error(err))
		}
		importSvc = service.NewImportService(profileRepo, extractor, adviceCache, importCfg, logr)
	} else {
		importSvc = service.NewImportService(profileRepo, nil, adviceCache, importCfg, logr)
	}

	mediaStore, err := storage.NewLocalStorage(cfg.Media.StorageDir)
	if err != nil {
		logr.Fatal("failed to init media storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Media.SignedURLSecret, cfg.Media.SignedURLTTL)

	var narrationSvc *service.NarrationService
	if cfg.TTS.Enabled {
		synthesizer := tts.New(tts.Config{
			Endpoint: cfg.TTS.Endpoint,
			APIKey:   cfg.TTS.APIKey,
			Voice:    cfg.TTS.Voice,
			Language: cfg.TTS.Language,
			Timeout:  cfg.TTS.Timeout,
		})
		narrationSvc = service.NewNarrationService(adviceSvc, synthesizer, mediaStore, signer, true, logr)
	} else {
		narrationSvc = service.NewNarrationService(adviceSvc, nil, mediaStore, signer, false, logr)
	}

	// The dispatch handler and the queue reference each other, so the queue
	// closes over the service variable.
	var notifierSvc *service.NotifierService
	queue := jobs.NewQueue("reminders", func(ctx context.Context, job jobs.Job) error {
		return notifierSvc.Dispatch(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Notifier.Workers,
		MaxRetries: cfg.Notifier.MaxRetries,
		RetryDelay: cfg.Notifier.RetryDelay,
		Logger:     logr,
	})
	notifierSvc = service.NewNotifierService(profileRepo, notificationRepo, queue, service.NotifierConfig{
		Interval:   cfg.Notifier.Interval,
		WebhookURL: cfg.Notifier.WebhookURL,
	}, logr).WithMetrics(metricsSvc)
	queue.Start(ctx)
	defer queue.Stop()
	if cfg.Notifier.Enabled {
		go notifierSvc.Run(ctx)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	adviceHandler := handler.NewAdviceHandler(adviceSvc, metricsSvc)
	importHandler := handler.NewImportHandler(importSvc, metricsSvc)
	narrationHandler := handler.NewNarrationHandler(narrationSvc, metricsSvc)
	mediaHandler := handler.NewMediaHandler(signer, mediaStore, logr)
	exportHandler := handler.NewExportHandler(exportSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/media/:token", mediaHandler.Download)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
			auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		profiles := api.Group("/profiles", middleware.JWT(authSvc))
		{
			profiles.GET("", profileHandler.List)
			profiles.POST("", profileHandler.Create)
			profiles.GET("/selected", profileHandler.Selected)
			profiles.GET("/:id", profileHandler.Get)
			profiles.PUT("/:id", profileHandler.Update)
			profiles.DELETE("/:id", profileHandler.Delete)
			profiles.POST("/:id/select", profileHandler.Select)

			profiles.GET("/:id/schedule", scheduleHandler.Get)
			profiles.PUT("/:id/schedule", scheduleHandler.Update)
			profiles.POST("/:id/schedule/import", importHandler.Import)
			profiles.GET("/:id/schedule/export", exportHandler.Export)

			profiles.GET("/:id/advice", adviceHandler.Get)
			profiles.POST("/:id/advice/narration", narrationHandler.Narrate)
		}

		api.GET("/notifications", middleware.JWT(authSvc), notificationHandler.List)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
