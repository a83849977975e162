package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8000", c.HTTPAddr)
	assert.Equal(t, "HS256", c.SigningAlgorithm)
	assert.Equal(t, 7*24*time.Hour, c.TokenTTL)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins)
	assert.Equal(t, 5, c.RateLimitMaxAttempts)
	assert.Equal(t, time.Minute, c.RateLimitWindow)
	assert.Equal(t, BackendMemory, c.RateLimitBackend)
	assert.Equal(t, "session_token", c.SessionCookieName)
	assert.False(t, c.IsProduction())
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults ok", mutate: func(c *Config) {}},
		{name: "bad algorithm", mutate: func(c *Config) { c.SigningAlgorithm = "RS256" }, wantErr: "unsupported signing algorithm"},
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: "secret key is empty"},
		{name: "default secret in production", mutate: func(c *Config) { c.Environment = "production" }, wantErr: "JWT_SECRET must be set"},
		{name: "custom secret in production", mutate: func(c *Config) {
			c.Environment = "production"
			c.SecretKey = "prod-secret"
		}},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: "token ttl"},
		{name: "zero attempts", mutate: func(c *Config) { c.RateLimitMaxAttempts = 0 }, wantErr: "max attempts"},
		{name: "zero window", mutate: func(c *Config) { c.RateLimitWindow = 0 }, wantErr: "window"},
		{name: "redis without url", mutate: func(c *Config) { c.RateLimitBackend = BackendRedis }, wantErr: "requires REDIS_URL"},
		{name: "redis with url", mutate: func(c *Config) {
			c.RateLimitBackend = BackendRedis
			c.RedisURL = "redis://localhost:6379/0"
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.RateLimitBackend = "memcached" }, wantErr: "unknown rate limit backend"},
		{name: "zero purge interval", mutate: func(c *Config) { c.SessionPurgeInterval = 0 }, wantErr: "purge interval"},
		{name: "empty cookie name", mutate: func(c *Config) { c.SessionCookieName = "" }, wantErr: "cookie name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	env := map[string]string{
		"HTTP_ADDR":  ":7000",
		"JWT_SECRET": "from-env",
		"LOG_LEVEL":  "warn",
	}
	withEnv(t, env)

	path := writeTempJSON(t, t.TempDir(), "cfg.json", map[string]any{
		"http_addr":   ":6000",
		"secret_key":  "from-json",
		"log_level":   "debug",
		"bcrypt_cost": 10,
	})

	c, err := load([]string{"-c", path, "-env-file", writeEnvFile(t, ""), "-a", ":9000"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.HTTPAddr, "flag beats env and json")
	assert.Equal(t, "from-env", c.SecretKey, "env beats json")
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, 10, c.BcryptCost, "json beats defaults")
}

func TestLoad_InvalidConfig(t *testing.T) {
	withEnv(t, map[string]string{"JWT_ALGORITHM": "none"})

	_, err := load([]string{"-env-file", writeEnvFile(t, "")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported signing algorithm")
}
