package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-console/api/swagger"
	"github.com/noah-isme/school-console/internal/handler"
	"github.com/noah-isme/school-console/internal/middleware"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/internal/repository"
	"github.com/noah-isme/school-console/internal/service"
	"github.com/noah-isme/school-console/pkg/cache"
	"github.com/noah-isme/school-console/pkg/config"
	"github.com/noah-isme/school-console/pkg/database"
	"github.com/noah-isme/school-console/pkg/jobs"
	"github.com/noah-isme/school-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-console/pkg/middleware/requestid"
)

// @title School Console Gateway
// @version 1.0.0
// @description Dashboard context, filters and page views of the school admin console
// @BasePath /console
// @schemes http https
// @securityDefinitions.apikey ConsoleSession
// @in header
// @name X-Console-Session

const reapInterval = time.Minute

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("redis is required for console sessions", zap.Error(err))
	}
	tokens := repository.NewTokenRepository(redisClient, cfg.Redis.KeyPrefix, logr)
	defer tokens.Close() //nolint:errcheck

	readiness := map[string]handler.ReadinessCheck{
		"redis": cache.Checker(redisClient),
	}

	metricsSvc := service.NewMetricsService()

	var auditSvc *service.AuditService
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect audit database", zap.Error(err))
		}
		defer closeDB(db, logr)

		auditRepo := repository.NewAuditRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare audit schema", zap.Error(err))
		}
		auditSvc = service.NewAuditService(auditRepo, metricsSvc, logr, jobs.QueueConfig{
			Workers:    cfg.Audit.Workers,
			MaxRetries: cfg.Audit.MaxRetries,
			RetryDelay: cfg.Audit.RetryDelay,
		})
		auditSvc.Start(ctx)
		readiness["postgres"] = db.PingContext
	}

	upstream := repository.NewSchoolAPIRepository(cfg.Upstream, metricsSvc, logr)
	sessions := service.NewConsoleSessionService(
		tokens,
		func(ts repository.TokenSource) service.SchoolAPI { return upstream.ForToken(ts) },
		auditSvc,
		metricsSvc,
		logr,
		service.ConsoleSessionConfig{
			TTL:            cfg.Console.SessionTTL,
			Leeway:         cfg.JWT.Leeway,
			Debounce:       cfg.Dashboard.Debounce,
			PageSize:       cfg.Dashboard.PageSize,
			RequestTimeout: cfg.Upstream.Timeout,
		},
	)
	go sessions.RunReaper(ctx, reapInterval)

	validate := validator.New()
	entitySvc := service.NewEntityService(validate, auditSvc, sessions, logr, cfg.Dashboard.PageWindow)
	pageViews := service.NewPageViewService(cfg.Dashboard.PageWindow)

	loginPath := cfg.Console.LoginPath
	sessionHandler := handler.NewSessionHandler(sessions, validate, cfg.Console.SessionHeader, loginPath)
	dashboardHandler := handler.NewDashboardHandler(loginPath)
	pageHandler := handler.NewPageHandler(pageViews, entitySvc, validate, cfg.Dashboard.PageSize, loginPath)
	entityHandler := handler.NewEntityHandler(entitySvc, loginPath)
	auditHandler := handler.NewAuditHandler(auditSvc, loginPath)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, sessions, readiness)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS, cfg.Console.SessionHeader))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/sessions", sessionHandler.Open)

	console := api.Group("")
	console.Use(middleware.ConsoleSession(sessions, cfg.Console.SessionHeader, loginPath))
	console.GET("/sessions/current", sessionHandler.Current)
	console.DELETE("/sessions/current", sessionHandler.Close)

	console.GET("/dashboard/context", dashboardHandler.Context)
	console.PATCH("/dashboard/filters", dashboardHandler.UpdateFilters)
	console.DELETE("/dashboard/filters", dashboardHandler.ClearFilters)
	console.POST("/dashboard/refetch", dashboardHandler.Refetch)
	console.GET("/dashboard/display-names", dashboardHandler.DisplayNames)
	console.GET("/dashboard/events", dashboardHandler.Events)
	if cfg.Exports.Enabled {
		exportHandler := handler.NewExportHandler(service.NewExportService(nil, nil, logr), validate, loginPath)
		console.GET("/dashboard/export", exportHandler.Export)
	}

	console.GET("/pages/questions", pageHandler.Questions)
	console.PUT("/pages/questions/page", pageHandler.SetQuestionsPage)
	console.GET("/pages/classes", pageHandler.Classes)
	console.GET("/pages/classes/:classId/students", pageHandler.ClassStudents)
	console.GET("/pages/students", pageHandler.Students)
	console.GET("/pages/subjects", pageHandler.Subjects)
	console.GET("/pages/sessions", pageHandler.Sessions)
	console.GET("/pages/dashboard", pageHandler.Dashboard)

	entityRoutes := map[string]models.Resource{
		"/questions":      models.ResourceQuestions,
		"/classes":        models.ResourceClasses,
		"/students":       models.ResourceStudents,
		"/subjects":       models.ResourceSubjects,
		"/sessions-admin": models.ResourceSessions,
	}
	for path, resource := range entityRoutes {
		console.POST(path, entityHandler.Submit(resource))
		console.DELETE(path+"/:id", entityHandler.Delete(resource))
	}

	console.GET("/audit", auditHandler.List)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Closing the sessions ends their event streams so Shutdown can drain.
	srv.RegisterOnShutdown(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sessions.CloseAll(closeCtx)
	})

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	sessions.CloseAll(shutdownCtx)
	if auditSvc != nil {
		auditSvc.Stop()
	}
}

func closeDB(db *sqlx.DB, logr *zap.Logger) {
	if err := db.Close(); err != nil {
		logr.Warn("close audit database", zap.Error(err))
	}
}
