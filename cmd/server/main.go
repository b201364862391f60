package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cvos/coach-app/internal/api"
	"cvos/coach-app/internal/app"
	"cvos/coach-app/internal/config"
	"cvos/coach-app/internal/logger"
	"cvos/coach-app/internal/scheduler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title CV-OS Coaching API
// @version 1.0
// @description API for coaches to manage athletes, gyms, exercises and periodized programs.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if cfg.JWT.Secret == "" {
		logg.Fatal("jwt.secret must be set")
	}

	repos, closeRepos, err := app.OpenRepositories(cfg.Database, logg)
	if err != nil {
		logg.Fatal("could not open repositories", zap.Error(err))
	}
	defer closeRepos()

	files, err := app.NewFileStorage(context.Background(), cfg.S3, logg)
	if err != nil {
		logg.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	svc := app.NewServices(cfg, repos, files, app.NewNotifier(cfg.Email, logg))
	svc.RequestLogs = true
	if svc.Assistant, err = app.NewAssistant(context.Background(), cfg.AI, logg); err != nil {
		logg.Fatal("failed to initialize AI assistant", zap.Error(err))
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(svc.Programs, logg)
		if err = sched.Start(cfg.Scheduler.ArchiveSpec); err != nil {
			logg.Fatal("could not start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, svc, logg)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logg.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logg.Error("server forced to shutdown", zap.Error(err))
	}
	logg.Info("server exiting")
}
