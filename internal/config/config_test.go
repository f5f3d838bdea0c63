package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Host: "db", Port: 5432, User: "hris", Password: "secret", Name: "hris", SSLMode: "disable", MaxConns: 10, MinConns: 2},
		JWT:      JWTConfig{Secret: "jwt"},
		App:      AppConfig{Timezone: "Asia/Kolkata"},
		Policy:   DefaultPolicy(),
		Cron:     CronConfig{Secret: "cron"},
	}
}

func TestDatabaseURL_EscapesCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "p@ss/w:rd"

	assert.Equal(t, "postgres://hris:p%40ss%2Fw%3Ard@db:5432/hris?sslmode=disable", cfg.DatabaseURL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "DB_PASSWORD"},
		{name: "missing cron secret", mutate: func(c *Config) { c.Cron.Secret = "" }, wantErr: "CRON_SECRET_KEY"},
		{name: "bad short day status", mutate: func(c *Config) { c.Policy.ShortDayStatus = "leave" }, wantErr: "SHORT_DAY_STATUS"},
		{name: "half day above present", mutate: func(c *Config) { c.Policy.HalfDayHours = c.Policy.PresentHours.Add(c.Policy.PresentHours) }, wantErr: "HALF_DAY_MIN_HOURS"},
		{name: "latitude without longitude", mutate: func(c *Config) { lat := 12.9; c.Office.Latitude = &lat }, wantErr: "OFFICE_LATITUDE"},
		{name: "pool bounds", mutate: func(c *Config) { c.Database.MinConns = 20 }, wantErr: "DB_MIN_CONNS"},
		{name: "unknown timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }, wantErr: "APP_TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt")
	t.Setenv("CRON_SECRET_KEY", "cron")
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("NOTIFICATION_FLUSH_INTERVAL", "2s")
	t.Setenv("NOTIFICATION_BATCH_SIZE", "50")
	t.Setenv("COMP_OFF_EXPIRY_DAYS", "60")
	t.Setenv("ALLOWED_OFFICE_IPS", "10.0.0.1, 10.0.0.2,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int32(8), cfg.Database.MaxConns)
	assert.Equal(t, 2*time.Second, cfg.Notification.FlushInterval)
	assert.Equal(t, 50, cfg.Notification.BatchSize)
	assert.Equal(t, 60, cfg.Policy.CompOffExpiryDays)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Office.AllowedIPs)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestLoad_RejectsMalformedNumbers(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt")
	t.Setenv("CRON_SECRET_KEY", "cron")
	t.Setenv("LATE_GRACE_MINUTES", "ten")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LATE_GRACE_MINUTES")
}
