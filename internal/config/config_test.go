package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "hms")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "hms")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("OTP_TTL", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 60, cfg.AccessTTLMin)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.False(t, cfg.Mail.Configured())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "portal@example.com")
	t.Setenv("SMTP_PASSWORD", "pw")
	t.Setenv("MAIL_FROM", "")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.OTPTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.Mail.Configured())
	assert.Equal(t, "portal@example.com", cfg.Mail.From)
}

func TestLoadEventsConfig_URLPrecedence(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://a:b@broker:5672/")
	assert.Equal(t, "amqp://a:b@broker:5672/", LoadEventsConfig().URL)

	t.Setenv("RABBITMQ_URL", "amqp://x:y@rabbit:5672/")
	ev := LoadEventsConfig()
	assert.Equal(t, "amqp://x:y@rabbit:5672/", ev.URL)
	assert.Equal(t, "hostel.events", ev.Queue)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()

	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 10*time.Second, rl.TTL)
	assert.Equal(t, "ip_route", rl.KeyStrategy)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "off")
	assert.False(t, envBool("FLAG", true))
	t.Setenv("FLAG", "maybe")
	assert.True(t, envBool("FLAG", true))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("HOSTEL_A=fromfile\nHOSTEL_B=fromfile\n"), 0o600))
	t.Setenv("HOSTEL_A", "fromenv")
	t.Setenv("HOSTEL_B", "")
	require.NoError(t, os.Unsetenv("HOSTEL_B"))

	LoadDotEnv(p, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "fromenv", os.Getenv("HOSTEL_A"))
	assert.Equal(t, "fromfile", os.Getenv("HOSTEL_B"))
	os.Unsetenv("HOSTEL_B")
}
