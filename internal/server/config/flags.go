package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags overlays config with command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g. ":8000")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t int        token validity, days
//	-b int        bcrypt cost
//	-o string     allowed CORS origins, comma separated
//	-r string     Redis URL
//	-l string     log level
//	-m int        signin attempts allowed per window
//	-w duration   signin rate limit window (e.g. "1m")
//
// Only these flags are read from args (see flagx.FilterArgs); everything else
// is left to other parsers.
func parseFlags(config *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-b", "-o", "-r", "-l", "-m", "-w"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	ttlDays := fs.Int("t", int(config.TokenTTL/(24*time.Hour)), "token validity (in days)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	origins := fs.String("o", "", "allowed CORS origins, comma separated")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.RateLimitMaxAttempts, "m", config.RateLimitMaxAttempts, "signin attempts per window")
	fs.DurationVar(&config.RateLimitWindow, "w", config.RateLimitWindow, "signin rate limit window")

	if err := fs.Parse(filtered); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenTTL = time.Duration(*ttlDays) * 24 * time.Hour
		case "o":
			config.AllowedOrigins = splitList(*origins)
		}
	})
	return nil
}
