package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grocerylab/grocery-api/internal/auth"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, time.Hour, cfg.Cache.TTL)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 120*time.Hour, cfg.Auth.Refresh.TTL)
	require.Equal(t, 5*time.Minute, cfg.Auth.OTP.CodeTTL)
	require.Equal(t, 30*time.Second, cfg.Auth.OTP.Cooldown)
	require.Empty(t, cfg.Auth.OTP.FallbackSecret)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.False(t, cfg.SMS.Enabled)
	require.Equal(t, "Grocery", cfg.Company.Name)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 9100
  log_level: debug
database:
  driver: postgres
  postgres:
    host: db.internal
    port: 5433
    database: grocery
    username: api
    password: hunter2
cache:
  redis:
    enabled: true
    address: redis.internal:6379
auth:
  jwt:
    secret: file-secret
  otp:
    fallback_secret: JBSWY3DPEHPK3PXP
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.internal:6379", cfg.Cache.Redis.Address)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "JBSWY3DPEHPK3PXP", cfg.Auth.OTP.FallbackSecret)

	dbCfg := cfg.Database.DatabaseOpenConfig()
	require.Equal(t, "grocery", dbCfg.Name)
	require.Equal(t, "api", dbCfg.User)
	require.Equal(t, 5433, dbCfg.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("GROCERY_SERVER_PORT", "9200")
	t.Setenv("GROCERY_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestAuthConfigConverters(t *testing.T) {
	var cfg AuthConfig

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.DefaultAccessTokenTTL, jwtCfg.AccessTokenTTL)

	refreshCfg := cfg.RefreshServiceConfig()
	require.Equal(t, auth.DefaultRefreshTokenTTL, refreshCfg.TTL)

	otpCfg := cfg.OTPServiceConfig()
	require.Equal(t, auth.DefaultOTPTTL, otpCfg.CodeTTL)
	require.Equal(t, auth.DefaultOTPCooldown, otpCfg.Cooldown)
}
