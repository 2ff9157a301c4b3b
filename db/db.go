// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(SQLite, sqlx.QUESTION)
}

// Open connects to the database and verifies the connection.
func Open(dbType, url string) (*sqlx.DB, error) {
	driver, err := DriverName(dbType)
	if err != nil {
		return nil, err
	}

	if driver == SQLite {
		url = sqliteDSN(url)
	}

	conn, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == SQLite {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// sqliteDSN adds the options every SQLite connection needs unless the
// caller already set them: foreign keys are off by default per connection,
// and times must be stored in a format that sorts as text.
func sqliteDSN(url string) string {
	for _, opt := range []struct{ key, param string }{
		{"foreign_keys", "_pragma=foreign_keys(1)"},
		{"_time_format", "_time_format=sqlite"},
	} {
		if strings.Contains(url, opt.key) {
			continue
		}
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + opt.param
	}
	return url
}

// DriverName maps a configured database type to its driver name.
func DriverName(dbType string) (string, error) {
	switch strings.ToLower(dbType) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(conn *sqlx.DB) error {
	schema := sqliteSchema
	if conn.DriverName() == Postgres {
		schema = postgresSchema
	}

	// Executed one statement at a time; lib/pq and modernc differ on
	// multi-statement Exec.
	for _, stmt := range strings.Split(schema, ";\n") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}
