// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify announces new surveys to eligible voters by mail.

SurveyCreated looks up recipients in the background and appends one item
per voter to an in-memory queue. A scheduled job calls Drain, which sends
a single batch concurrently. Failed sends are logged and not retried, and
the queue does not survive a restart.

Mail bodies are rendered with html/template. Survey descriptions are
treated as markdown and sanitized before they are embedded.
*/
package notify
