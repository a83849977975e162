package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withEnv replaces the environment lookup with a fixed map for one test.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = orig })
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseEnv(t *testing.T) {
	withEnv(t, map[string]string{
		"APP_ENV":                 "production",
		"HTTP_ADDR":               ":9999",
		"DATABASE_DSN":            "postgres://env/db",
		"JWT_SECRET":              "env-secret",
		"JWT_ALGORITHM":           "HS384",
		"JWT_EXPIRATION_DAYS":     "3",
		"PASSWORD_HASH_ROUNDS":    "11",
		"CORS_ORIGINS":            "https://a.example, https://b.example ,",
		"RATE_LIMIT_MAX_ATTEMPTS": "10",
		"RATE_LIMIT_WINDOW":       "2m",
		"RATE_LIMIT_BACKEND":      "redis",
		"REDIS_URL":               "redis://r:6379/0",
		"SESSION_COOKIE_NAME":     "tk_session",
		"COOKIE_SECURE":           "true",
		"SESSION_PURGE_INTERVAL":  "10m",
		"LOG_LEVEL":               "error",
	})

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, []string{"-env-file", writeEnvFile(t, "")}))

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseDSN)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, "HS384", cfg.SigningAlgorithm)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimitMaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, BackendRedis, cfg.RateLimitBackend)
	assert.Equal(t, "redis://r:6379/0", cfg.RedisURL)
	assert.Equal(t, "tk_session", cfg.SessionCookieName)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 10*time.Minute, cfg.SessionPurgeInterval)
	assert.Equal(t, "error", cfg.LogLevel)
}

func Test_parseEnv_BadValues(t *testing.T) {
	withEnv(t, map[string]string{
		"JWT_EXPIRATION_DAYS":  "seven",
		"PASSWORD_HASH_ROUNDS": "x",
		"RATE_LIMIT_WINDOW":    "1 minute",
		"COOKIE_SECURE":        "maybe",
	})

	cfg := &Config{}
	cfg.LoadDefaults()
	err := parseEnv(cfg, []string{"-env-file", writeEnvFile(t, "")})
	require.Error(t, err)
	for _, key := range []string{"JWT_EXPIRATION_DAYS", "PASSWORD_HASH_ROUNDS", "RATE_LIMIT_WINDOW", "COOKIE_SECURE"} {
		assert.Contains(t, err.Error(), key)
	}
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL, "bad value keeps the previous setting")
}

func Test_loadEnvFile(t *testing.T) {
	const key = "TASKKEEPER_DOTENV_PROBE"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	path := writeEnvFile(t, key+"=from-file\n")
	require.NoError(t, loadEnvFile([]string{"-env-file", path}))
	assert.Equal(t, "from-file", os.Getenv(key))

	t.Run("explicit missing file fails", func(t *testing.T) {
		require.Error(t, loadEnvFile([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")}))
	})

	t.Run("existing variables win", func(t *testing.T) {
		t.Setenv(key, "from-process")
		require.NoError(t, loadEnvFile([]string{"-env-file", path}))
		assert.Equal(t, "from-process", os.Getenv(key))
	})
}
