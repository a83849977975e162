package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Duration
// fields accept strings such as "1m" as well as integer nanoseconds. Fields
// left out of the file keep their previous values.
type JsonConfig struct {
	Environment          string         `json:"environment"`
	HTTPAddr             string         `json:"http_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	SigningAlgorithm     string         `json:"signing_algorithm"`
	TokenTTL             timex.Duration `json:"token_ttl"`
	BcryptCost           int            `json:"bcrypt_cost"`
	AllowedOrigins       []string       `json:"allowed_origins"`
	RateLimitMaxAttempts int            `json:"rate_limit_max_attempts"`
	RateLimitWindow      timex.Duration `json:"rate_limit_window"`
	RateLimitBackend     string         `json:"rate_limit_backend"`
	RedisURL             string         `json:"redis_url"`
	SessionCookieName    string         `json:"session_cookie_name"`
	CookieSecure         *bool          `json:"cookie_secure"`
	SessionPurgeInterval timex.Duration `json:"session_purge_interval"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays config with the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.Environment, c.Environment)
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setString(&config.RateLimitBackend, c.RateLimitBackend)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.SessionCookieName, c.SessionCookieName)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenTTL.Duration > 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.RateLimitWindow.Duration > 0 {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if c.SessionPurgeInterval.Duration > 0 {
		config.SessionPurgeInterval = c.SessionPurgeInterval.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.RateLimitMaxAttempts > 0 {
		config.RateLimitMaxAttempts = c.RateLimitMaxAttempts
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
