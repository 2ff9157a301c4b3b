// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p           Server port
	-d           Database URL
	-t           Database type (sqlite or postgres)
	-wp-prefix   WordPress table prefix
	-log-level   Log level
	-log-file    Rotating log file path

CLI flags take precedence over environment variables.

# Environment Variables

	PORT              → -p (default 3318)
	DATABASE_URL      → -d (required)
	DATABASE_TYPE     → -t (default sqlite)
	WP_TABLE_PREFIX   → -wp-prefix (default wp_)
	VOTER_RULE        eligibility expression over roles, building, user_id
	ADMIN_RULE        admin expression (default "administrator" in roles)
	SITE_URL          base URL for links in mails
	SMTP_HOST         outgoing mail host; empty disables SMTP
	SMTP_PORT         default 587
	SMTP_USER, SMTP_PASS, SMTP_FROM
	SMTP_CONNECTIONS  pooled SMTP connections (default 2)
	NOTIFY_SCHEDULE   cron expression for the notification drain (default @every 2m)
	NOTIFY_BATCH_SIZE mails per drain (default 30)
	SWEEP_SCHEDULE    cron expression for the expiry sweep (default @every 1h)
	LOG_LEVEL         → -log-level (default info)
	LOG_FILE          → -log-file

# Validation

ParseFlags returns an error if DATABASE_URL is missing, the database type
is unknown, or a numeric variable does not parse.
*/
package cliparse
