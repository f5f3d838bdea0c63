package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/app"
	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
)

const (
	appName    = "hris-attendance"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	slog.SetDefault(newLogger(cfg))

	ctx := context.Background()
	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	loc := cfg.Location()
	handlers := appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(a.JWT, a.Auth, cfg.App.FrontendURL, !cfg.IsDevelopment()),
		User:         appHTTP.NewUserHandler(a.User, a.ProfileUpdate),
		Attendance:   appHTTP.NewAttendanceHandler(a.Attendance, a.Report, loc),
		Shift:        appHTTP.NewShiftHandler(a.Shift),
		Request:      appHTTP.NewRequestHandler(a.Regularization, a.WFH),
		Leave:        appHTTP.NewLeaveHandler(a.Leave, a.Report, loc),
		CompOff:      appHTTP.NewCompOffHandler(a.CompOff, loc),
		Batch:        appHTTP.NewBatchHandler(a.Batch),
		Notification: appHTTP.NewNotificationHandler(a.Notification, a.JWT),
		Dashboard:    appHTTP.NewDashboardHandler(a.Dashboard),
		Activity:     appHTTP.NewActivityHandler(a.Activity),
	}

	router := appHTTP.NewRouter(a.JWT, handlers, appHTTP.RouterOptions{
		AppName:        appName,
		Version:        appVersion,
		Env:            cfg.App.Env,
		AllowedOrigins: []string{cfg.App.FrontendURL},
		CronSecret:     cfg.Cron.Secret,
		UploadsDir:     a.Storage.BasePath(),
		UploadsURL:     cfg.Storage.BaseURL,
		Authorizer:     a.Enforcer,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		Idempotency:    middleware.NewIdempotency(a.Redis, a.RedisPrefix(), 24*time.Hour),
	})

	var scheduler *cron.Scheduler
	if cfg.Cron.Enabled {
		scheduler = cron.NewScheduler()
		cron.NewBatchJobs(a.Batch, cfg.Policy, loc).RegisterJobs(scheduler)
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	slog.Info("Server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", appName),
		slog.String("env", cfg.App.Env),
	)
}
