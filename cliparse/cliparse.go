// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// WordPress directory
	WPTablePrefix string
	VoterRule     string
	AdminRule     string

	// Notifications
	SiteURL         string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPass        string
	SMTPFrom        string
	SMTPConnections int
	NotifySchedule  string
	NotifyBatchSize int

	SweepSchedule string

	LogLevel string
	LogFile  string
}

// SMTPEnabled reports whether outgoing mail is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("condo-survey", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	fs.StringVar(&cfg.WPTablePrefix, "wp-prefix", "", "WordPress table prefix")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Rotating log file path")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.WPTablePrefix == "" {
		cfg.WPTablePrefix = envString("WP_TABLE_PREFIX", "wp_")
	}
	cfg.VoterRule = envString("VOTER_RULE", `"subscriber" in roles || "administrator" in roles`)
	cfg.AdminRule = envString("ADMIN_RULE", `"administrator" in roles`)

	cfg.SiteURL = envString("SITE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port))
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.SMTPFrom = envString("SMTP_FROM", "no-reply@localhost")

	var err error
	if cfg.SMTPPort, err = envInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.SMTPConnections, err = envInt("SMTP_CONNECTIONS", 2); err != nil {
		return Config{}, err
	}
	if cfg.NotifyBatchSize, err = envInt("NOTIFY_BATCH_SIZE", 30); err != nil {
		return Config{}, err
	}
	if cfg.NotifyBatchSize < 1 {
		return Config{}, errors.New("NOTIFY_BATCH_SIZE must be positive")
	}

	cfg.NotifySchedule = envString("NOTIFY_SCHEDULE", "@every 2m")
	cfg.SweepSchedule = envString("SWEEP_SCHEDULE", "@every 1h")

	if cfg.LogLevel == "" {
		cfg.LogLevel = envString("LOG_LEVEL", "info")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = os.Getenv("LOG_FILE")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
