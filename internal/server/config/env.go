package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// loadEnvFile reads a dotenv file into the process environment without
// overriding variables that are already set. A missing default file is not
// an error; a missing file requested with -env-file is.
func loadEnvFile(args []string) error {
	path := flagx.EnvFilePath(args)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays config with environment variables.
//
//	APP_ENV, HTTP_ADDR, DATABASE_DSN, JWT_SECRET, JWT_ALGORITHM,
//	JWT_EXPIRATION_DAYS, PASSWORD_HASH_ROUNDS, CORS_ORIGINS (comma separated),
//	RATE_LIMIT_MAX_ATTEMPTS, RATE_LIMIT_WINDOW, RATE_LIMIT_BACKEND, REDIS_URL,
//	SESSION_COOKIE_NAME, COOKIE_SECURE, SESSION_PURGE_INTERVAL, LOG_LEVEL
func parseEnv(config *Config, args []string) error {
	if err := loadEnvFile(args); err != nil {
		return err
	}

	var errs []error

	envString(&config.Environment, "APP_ENV")
	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "JWT_SECRET")
	envString(&config.SigningAlgorithm, "JWT_ALGORITHM")
	envString(&config.RateLimitBackend, "RATE_LIMIT_BACKEND")
	envString(&config.RedisURL, "REDIS_URL")
	envString(&config.SessionCookieName, "SESSION_COOKIE_NAME")
	envString(&config.LogLevel, "LOG_LEVEL")

	if v, ok := lookupEnv("JWT_EXPIRATION_DAYS"); ok {
		days, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("JWT_EXPIRATION_DAYS: %w", err))
		} else {
			config.TokenTTL = time.Duration(days) * 24 * time.Hour
		}
	}
	errs = append(errs,
		envInt(&config.BcryptCost, "PASSWORD_HASH_ROUNDS"),
		envInt(&config.RateLimitMaxAttempts, "RATE_LIMIT_MAX_ATTEMPTS"),
		envDuration(&config.RateLimitWindow, "RATE_LIMIT_WINDOW"),
		envDuration(&config.SessionPurgeInterval, "SESSION_PURGE_INTERVAL"),
	)

	if v, ok := lookupEnv("COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("COOKIE_SECURE: %w", err))
		} else {
			config.CookieSecure = b
		}
	}
	if v, ok := lookupEnv("CORS_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

func envString(dst *string, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v, ok := lookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(dst *time.Duration, key string) error {
	v, ok := lookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
