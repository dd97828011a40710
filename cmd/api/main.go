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

	_ "github.com/amar-rokto/api/api/swagger"
	"github.com/amar-rokto/api/internal/handler"
	"github.com/amar-rokto/api/internal/middleware"
	"github.com/amar-rokto/api/internal/models"
	"github.com/amar-rokto/api/internal/repository"
	"github.com/amar-rokto/api/internal/service"
	"github.com/amar-rokto/api/internal/ws"
	"github.com/amar-rokto/api/pkg/cache"
	"github.com/amar-rokto/api/pkg/config"
	"github.com/amar-rokto/api/pkg/database"
	"github.com/amar-rokto/api/pkg/jobs"
	"github.com/amar-rokto/api/pkg/logger"
	"github.com/amar-rokto/api/pkg/mailer"
	corsmiddleware "github.com/amar-rokto/api/pkg/middleware/cors"
	reqidmiddleware "github.com/amar-rokto/api/pkg/middleware/requestid"
)

// @title Amar Rokto API
// @version 1.0.0
// @description Blood donation coordination backend
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	bankRepo := repository.NewBankRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// Cross-cutting services.
	metricsSvc := service.NewMetricsService()

	var outbound mailer.Mailer = mailer.NopMailer{}
	if cfg.Mailer.Enabled {
		outbound = mailer.NewSMTP(cfg.Mailer)
	}
	mailSvc := service.NewMailService(userRepo, outbound, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerCount,
		BufferSize: cfg.Notifications.QueueSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		Logger:     logr,
	}, logr)
	mailSvc.Start(ctx)
	defer mailSvc.Stop()

	var feedHub *ws.Hub
	if cfg.LiveFeed.Enabled {
		feedHub = ws.NewHub(logr)
		go feedHub.Run()
	}

	// Domain services.
	authSvc := service.NewAuthService(userRepo, bankRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "amar-rokto",
	})

	moderationOpts := []service.ModerationServiceOption{
		service.WithModerationNotifier(mailSvc),
		service.WithDecisionRecorder(metricsSvc),
		service.WithDashboardInvalidator(cacheRepo),
		service.WithStockRetries(cfg.Inventory.StockWriteRetries),
	}
	if feedHub != nil {
		moderationOpts = append(moderationOpts, service.WithPendingFeed(feedHub))
	}
	moderationSvc := service.NewModerationService(bankRepo, donationRepo, requestRepo, notificationRepo, auditRepo, logr, moderationOpts...)

	bankSvc := service.NewBankService(bankRepo, auditRepo, validate, logr)
	donationSvc := service.NewDonationService(donationRepo, bankRepo, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, bankRepo, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	alertSvc := service.NewAlertService(alertRepo, bankRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(statsRepo, bankRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(donationRepo, requestRepo, bankRepo, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	bankHandler := handler.NewBankHandler(bankSvc)
	moderationHandler := handler.NewModerationHandler(moderationSvc)
	donationHandler := handler.NewDonationHandler(donationSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	alertHandler := handler.NewAlertHandler(alertSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	public := api.Group("", middleware.OptionalJWT(authSvc))
	public.GET("/banks", bankHandler.Search)
	public.GET("/banks/:bankId", bankHandler.Get)
	public.GET("/alerts", alertHandler.ListActive)

	operator := api.Group("/banks/:bankId", middleware.JWT(authSvc), middleware.RequireBankOperator())
	{
		operator.PUT("", bankHandler.Update)
		operator.GET("/overview", dashboardHandler.BankOverview)
		operator.GET("/pending", moderationHandler.ListPending)
		operator.POST("/pending/:recordId/approve", moderationHandler.Approve)
		operator.POST("/pending/:recordId/reject", moderationHandler.Reject)
		operator.PATCH("/stock", moderationHandler.AdjustStock)
		operator.GET("/donations", donationHandler.BankHistory)
		operator.GET("/requests", requestHandler.BankHistory)
		operator.GET("/alerts", alertHandler.ListForBank)
		operator.POST("/alerts", alertHandler.Publish)
		operator.PATCH("/alerts/:alertId", alertHandler.SetActive)
		operator.DELETE("/alerts/:alertId", alertHandler.Delete)
		if cfg.Exports.Enabled {
			operator.GET("/exports/:report", exportHandler.Export)
		}
	}

	user := api.Group("", middleware.JWT(authSvc))
	{
		user.POST("/donations", donationHandler.Schedule)
		user.GET("/donations", donationHandler.History)
		user.GET("/donations/stats", donationHandler.Stats)
		user.POST("/requests", requestHandler.Create)
		user.GET("/requests", requestHandler.History)
		user.GET("/notifications", notificationHandler.List)
		user.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	if cfg.Dashboard.Enabled {
		admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
		admin.GET("/stats", dashboardHandler.AdminStats)
		admin.GET("/low-stock", dashboardHandler.LowStock)
	}

	if feedHub != nil {
		api.GET("/banks/:bankId/feed", func(c *gin.Context) {
			feedHub.Serve(c, authSvc)
		})
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
