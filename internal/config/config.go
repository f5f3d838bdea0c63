package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	Office       OfficeConfig
	Policy       PolicyConfig
	Cron         CronConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	OAuth2Google OAuth2GoogleConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	Timezone    string
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

// OfficeConfig is the fallback geofence used when no office location rows exist.
type OfficeConfig struct {
	Latitude     *float64
	Longitude    *float64
	RadiusMeters float64
	AllowedIPs   []string
}

// PolicyConfig holds attendance and leave rules.
type PolicyConfig struct {
	PresentHours        decimal.Decimal
	HalfDayHours        decimal.Decimal
	ShortDayStatus      string
	CompOffExpiryDays   int
	HoursPerDay         decimal.Decimal
	AutoPunchOutHour    int
	SickLeaveCode       string
	LateGraceMinutes    int
	DefaultShiftStart   string
	DefaultShiftEnd     string
	DefaultBreakStart   string
	DefaultBreakEnd     string
	MonthEndDayOfMonth  int
	YearEndMonthOfYear  time.Month
	AbsentMarkingHour   int
	CompOffExpiryHour   int
	BatchMaxConcurrency int
}

type CronConfig struct {
	Secret  string
	Enabled bool
}

// RedisConfig is optional; an empty Addr switches idempotency and job locks to in-process mode.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// NotificationConfig sizes the background notification writers.
type NotificationConfig struct {
	Workers       int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	MaxStreams    int
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Timezone:    getEnv("APP_TIMEZONE", "Asia/Kolkata"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "HR Attendance"),
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "/uploads"),
	}

	office, err := loadOffice()
	if err != nil {
		return nil, err
	}
	config.Office = office

	policy, err := loadPolicy()
	if err != nil {
		return nil, err
	}
	config.Policy = policy

	config.Cron = CronConfig{
		Secret:  getEnv("CRON_SECRET_KEY", ""),
		Enabled: getEnvBool("CRON_ENABLED", true),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	config.RateLimit = RateLimitConfig{RequestsPerSecond: rps, Burst: burst}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		Scopes:       getEnvSlice("GOOGLE_SCOPES"),
	}

	notifications, err := loadNotification()
	if err != nil {
		return nil, err
	}
	config.Notification = notifications

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadOffice() (OfficeConfig, error) {
	office := OfficeConfig{AllowedIPs: getEnvSlice("ALLOWED_OFFICE_IPS")}

	if v := getEnv("OFFICE_LATITUDE", ""); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return office, fmt.Errorf("invalid OFFICE_LATITUDE: %w", err)
		}
		office.Latitude = &lat
	}
	if v := getEnv("OFFICE_LONGITUDE", ""); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return office, fmt.Errorf("invalid OFFICE_LONGITUDE: %w", err)
		}
		office.Longitude = &lon
	}
	radius, err := strconv.ParseFloat(getEnv("OFFICE_RADIUS_METERS", "50"), 64)
	if err != nil {
		return office, fmt.Errorf("invalid OFFICE_RADIUS_METERS: %w", err)
	}
	office.RadiusMeters = radius
	return office, nil
}

func loadNotification() (NotificationConfig, error) {
	n := NotificationConfig{}
	ints := []struct {
		key string
		dst *int
	}{
		{"NOTIFICATION_WORKERS", &n.Workers},
		{"NOTIFICATION_QUEUE_SIZE", &n.QueueSize},
		{"NOTIFICATION_BATCH_SIZE", &n.BatchSize},
		{"NOTIFICATION_MAX_STREAMS", &n.MaxStreams},
	}
	for _, i := range ints {
		v, err := strconv.Atoi(getEnv(i.key, "0"))
		if err != nil {
			return n, fmt.Errorf("invalid %s: %w", i.key, err)
		}
		*i.dst = v
	}
	if v := getEnv("NOTIFICATION_FLUSH_INTERVAL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return n, fmt.Errorf("invalid NOTIFICATION_FLUSH_INTERVAL: %w", err)
		}
		n.FlushInterval = d
	}
	return n, nil
}

func loadPolicy() (PolicyConfig, error) {
	p := DefaultPolicy()

	var err error
	if p.PresentHours, err = decimal.NewFromString(getEnv("PRESENT_MIN_HOURS", p.PresentHours.String())); err != nil {
		return p, fmt.Errorf("invalid PRESENT_MIN_HOURS: %w", err)
	}
	if p.HalfDayHours, err = decimal.NewFromString(getEnv("HALF_DAY_MIN_HOURS", p.HalfDayHours.String())); err != nil {
		return p, fmt.Errorf("invalid HALF_DAY_MIN_HOURS: %w", err)
	}
	if p.HoursPerDay, err = decimal.NewFromString(getEnv("HOURS_PER_DAY", p.HoursPerDay.String())); err != nil {
		return p, fmt.Errorf("invalid HOURS_PER_DAY: %w", err)
	}
	p.ShortDayStatus = getEnv("SHORT_DAY_STATUS", p.ShortDayStatus)
	p.SickLeaveCode = getEnv("SICK_LEAVE_CODE", p.SickLeaveCode)
	p.DefaultShiftStart = getEnv("DEFAULT_SHIFT_START", p.DefaultShiftStart)
	p.DefaultShiftEnd = getEnv("DEFAULT_SHIFT_END", p.DefaultShiftEnd)
	p.DefaultBreakStart = getEnv("DEFAULT_BREAK_START", p.DefaultBreakStart)
	p.DefaultBreakEnd = getEnv("DEFAULT_BREAK_END", p.DefaultBreakEnd)

	ints := []struct {
		key string
		dst *int
	}{
		{"COMP_OFF_EXPIRY_DAYS", &p.CompOffExpiryDays},
		{"AUTO_PUNCH_OUT_HOUR", &p.AutoPunchOutHour},
		{"LATE_GRACE_MINUTES", &p.LateGraceMinutes},
		{"MONTH_END_DAY", &p.MonthEndDayOfMonth},
		{"ABSENT_MARKING_HOUR", &p.AbsentMarkingHour},
		{"COMP_OFF_EXPIRY_HOUR", &p.CompOffExpiryHour},
		{"BATCH_MAX_CONCURRENCY", &p.BatchMaxConcurrency},
	}
	for _, i := range ints {
		v, err := strconv.Atoi(getEnv(i.key, strconv.Itoa(*i.dst)))
		if err != nil {
			return p, fmt.Errorf("invalid %s: %w", i.key, err)
		}
		*i.dst = v
	}

	return p, nil
}

// DefaultPolicy returns the office rules used when nothing is configured.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		PresentHours:        decimal.NewFromInt(6),
		HalfDayHours:        decimal.NewFromInt(4),
		ShortDayStatus:      "half_day",
		CompOffExpiryDays:   90,
		HoursPerDay:         decimal.NewFromInt(8),
		AutoPunchOutHour:    23,
		SickLeaveCode:       "SL",
		LateGraceMinutes:    10,
		DefaultShiftStart:   "10:00",
		DefaultShiftEnd:     "19:00",
		DefaultBreakStart:   "14:00",
		DefaultBreakEnd:     "15:00",
		MonthEndDayOfMonth:  1,
		YearEndMonthOfYear:  time.January,
		AbsentMarkingHour:   1,
		CompOffExpiryHour:   0,
		BatchMaxConcurrency: 4,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Cron.Secret == "" {
		return fmt.Errorf("CRON_SECRET_KEY is required")
	}
	if c.Policy.ShortDayStatus != "half_day" && c.Policy.ShortDayStatus != "absent" {
		return fmt.Errorf("SHORT_DAY_STATUS must be half_day or absent")
	}
	if c.Policy.HalfDayHours.GreaterThan(c.Policy.PresentHours) {
		return fmt.Errorf("HALF_DAY_MIN_HOURS must not exceed PRESENT_MIN_HOURS")
	}
	if (c.Office.Latitude == nil) != (c.Office.Longitude == nil) {
		return fmt.Errorf("OFFICE_LATITUDE and OFFICE_LONGITUDE must be set together")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Location returns the configured business timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.OAuth2Google.ClientID != "" && c.OAuth2Google.ClientSecret != "" && c.OAuth2Google.RedirectURL != ""
}

// DatabaseURL returns the PostgreSQL connection string with credentials escaped.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
