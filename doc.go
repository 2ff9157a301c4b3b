// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the condo-survey API server.

condo-survey runs surveys for a condominium: the board opens a survey with
one or more questions, eligible residents vote once, and results are
released when voting ends. Residents and roles come from the
condominium's WordPress site, whose user tables share the database.

# Starting the Server

	DATABASE_URL=survey.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first if present.

# Configuration

  - DATABASE_URL (-d): connection string or SQLite file
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - PORT (-p): server port (default: 3318)
  - WP_TABLE_PREFIX (-wp-prefix): WordPress table prefix (default: wp_)
  - VOTER_RULE, ADMIN_RULE: expressions over a user's roles and building
  - SITE_URL: base address used in notification links
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM, SMTP_CONNECTIONS
  - NOTIFY_SCHEDULE, NOTIFY_BATCH_SIZE: notification drain (default: @every 2m, 30)
  - SWEEP_SCHEDULE: expiry sweep (default: @every 1h)
  - LOG_LEVEL (-log-level), LOG_FILE (-log-file)

Without SMTP_HOST notifications are logged instead of sent.

# Architecture

  - survey: lifecycle, voting and results engines
  - store: persistence with sqlx and goqu
  - directory: WordPress voter directory and role rules
  - notify: notification queue and mailers
  - report: PDF results
  - jobs: cron schedules
  - handlers, router, middleware, auth: HTTP surface
  - db, cliparse, logging, fault, models, paginator: support packages
*/
package main
