// Package app wires configuration, storage and services shared by the API server and the batch CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	activityService "github.com/cmlabs-hris/hris-attendance-go/internal/service/activity"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-attendance-go/internal/service/auth"
	batchService "github.com/cmlabs-hris/hris-attendance-go/internal/service/batch"
	compOffService "github.com/cmlabs-hris/hris-attendance-go/internal/service/compoff"
	dashboardService "github.com/cmlabs-hris/hris-attendance-go/internal/service/dashboard"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/hris-attendance-go/internal/service/report"
	userService "github.com/cmlabs-hris/hris-attendance-go/internal/service/user"
	"github.com/cmlabs-hris/hris-attendance-go/migrations"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "hris:"

// App holds every long-lived dependency of the process.
type App struct {
	Config   *config.Config
	DB       *database.DB
	Redis    *redis.Client
	JWT      *jwt.JWTService
	Enforcer *rbac.Enforcer
	Storage  *storage.LocalStorage

	Activity       *activityService.ActivityServiceImpl
	Notification   notification.NotificationService
	Auth           *serviceAuth.AuthServiceImpl
	User           *userService.UserServiceImpl
	ProfileUpdate  *userService.ProfileUpdateServiceImpl
	Attendance     *attendanceService.AttendanceServiceImpl
	Shift          *attendanceService.ShiftServiceImpl
	Regularization *attendanceService.RegularizationServiceImpl
	WFH            *attendanceService.WFHServiceImpl
	Leave          *leaveService.LeaveServiceImpl
	CompOff        compoff.CompOffService
	Batch          *batchService.BatchServiceImpl
	Report         *reportService.ReportServiceImpl
	Dashboard      *dashboardService.DashboardServiceImpl
}

// Build connects to PostgreSQL (and Redis when configured), applies
// migrations and constructs the services.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolSize{MaxConns: cfg.Database.MaxConns, MinConns: cfg.Database.MinConns})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrations.Up(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &App{Config: cfg, DB: db}
	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	loc := cfg.Location()

	if cfg.Redis.Addr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("Redis connection established", "addr", cfg.Redis.Addr)
	} else {
		slog.Warn("REDIS_ADDR not set, using in-process locks and no idempotency store")
	}

	var err error
	a.JWT, err = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, !cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("invalid jwt configuration: %w", err)
	}
	a.Enforcer, err = rbac.New()
	if err != nil {
		return fmt.Errorf("failed to build rbac enforcer: %w", err)
	}
	a.Storage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}
	emailSvc, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}
	var google oauth.GoogleService
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL)
	}

	tx := postgresql.NewTransactor(a.DB)
	userRepo := postgresql.NewUserRepository(a.DB)
	tokenRepo := postgresql.NewTokenRepository(a.DB)
	attendanceRepo := postgresql.NewAttendanceRepository(a.DB)
	shiftRepo := postgresql.NewShiftRepository(a.DB)
	locationRepo := postgresql.NewOfficeLocationRepository(a.DB)
	regularizationRepo := postgresql.NewRegularizationRepository(a.DB)
	wfhRepo := postgresql.NewWFHRepository(a.DB)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(a.DB)
	balanceRepo := postgresql.NewLeaveBalanceRepository(a.DB)
	requestRepo := postgresql.NewLeaveRequestRepository(a.DB)
	allocationRepo := postgresql.NewAllocationRepository(a.DB)
	holidayRepo := postgresql.NewHolidayRepository(a.DB)
	compOffRepo := postgresql.NewCompOffRepository(a.DB)
	batchRepo := postgresql.NewBatchRepository(a.DB)
	notificationRepo := postgresql.NewNotificationRepository(a.DB)
	activityRepo := postgresql.NewActivityRepository(a.DB)
	dashboardRepo := postgresql.NewDashboardRepository(a.DB)

	a.Activity = activityService.NewActivityService(activityRepo)
	a.Notification = notificationService.NewNotificationService(notificationRepo, sse.NewHub(cfg.Notification.MaxStreams), notificationService.Options{
		Workers:       cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
	})

	a.Auth = serviceAuth.NewAuthService(tx, userRepo, a.JWT, tokenRepo, google, a.Activity)
	a.User = userService.NewUserService(tx, userRepo, shiftRepo, a.Storage, a.Activity, loc)
	a.ProfileUpdate = userService.NewProfileUpdateService(postgresql.NewProfileUpdateRepository(a.DB), a.User, a.Notification)
	a.CompOff = compOffService.NewCompOffService(compOffRepo, userRepo, tx, a.Activity, a.Notification, cfg.Policy.CompOffExpiryDays)
	a.Leave = leaveService.NewLeaveService(
		tx,
		leaveTypeRepo,
		balanceRepo,
		requestRepo,
		allocationRepo,
		holidayRepo,
		userRepo,
		attendanceRepo,
		a.CompOff,
		a.Activity,
		a.Notification,
		emailSvc,
		loc,
	)

	rules := attendanceService.NewRules(cfg.Policy, loc)
	a.Attendance = attendanceService.NewAttendanceService(
		tx,
		attendanceRepo,
		shiftRepo,
		locationRepo,
		wfhRepo,
		userRepo,
		holidayRepo,
		compOffRepo,
		a.CompOff,
		a.Leave,
		a.Activity,
		a.Notification,
		emailSvc,
		rules,
		attendanceService.Geofence{Fallback: cfg.Office, DevMode: cfg.IsDevelopment()},
		cfg.Policy.AutoPunchOutHour,
	)
	a.Shift = attendanceService.NewShiftService(shiftRepo, locationRepo)
	a.Regularization = attendanceService.NewRegularizationService(
		tx,
		regularizationRepo,
		attendanceRepo,
		shiftRepo,
		userRepo,
		a.Activity,
		a.Notification,
		emailSvc,
		rules,
	)
	a.WFH = attendanceService.NewWFHService(tx, wfhRepo, userRepo, a.Activity, a.Notification, emailSvc, loc)

	a.Batch = batchService.NewBatchService(
		tx,
		batchRepo,
		userRepo,
		leaveTypeRepo,
		balanceRepo,
		leaveService.NewBalanceService(leaveTypeRepo, balanceRepo, allocationRepo),
		attendanceRepo,
		a.Attendance,
		a.CompOff,
		lock.New(a.Redis, redisPrefix+"lock:"),
		a.Activity,
		cfg.Policy,
		loc,
	)
	a.Report = reportService.NewReportService(attendanceRepo, requestRepo, loc)
	a.Dashboard = dashboardService.NewDashboardService(dashboardRepo, loc)
	return nil
}

// RedisPrefix namespaces every key this process writes.
func (a *App) RedisPrefix() string {
	return redisPrefix
}

// Close stops background workers and releases connections.
func (a *App) Close() {
	if a.Notification != nil {
		a.Notification.Stop()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
