// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package jobs schedules background work with cron expressions: the
// expiry sweep that closes ended surveys, and the notification drain.
package jobs
