// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/condo-survey/db"
	"github.com/danielhkuo/condo-survey/fault"
)

// Store persists surveys, participation and responses. All multi-step
// writes run in a single transaction.
type Store struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// New wraps an open connection. The dialect follows conn.DriverName().
func New(conn *sqlx.DB) *Store {
	dialect := "sqlite3"
	if conn.DriverName() == db.Postgres {
		dialect = "postgres"
	}
	return &Store{db: conn, dialect: goqu.Dialect(dialect)}
}

// DB exposes the underlying connection for health checks.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) postgres() bool {
	return s.db.DriverName() == db.Postgres
}

// lock returns a row-locking suffix. SQLite runs with a single writer
// connection, so the transaction alone serializes access.
func (s *Store) lock(mode string) string {
	if !s.postgres() {
		return ""
	}
	return " FOR " + mode
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// utc normalizes timestamps before they reach the database so both
// drivers store and compare the same instant.
func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fault.NewNotFound("survey not found")
	}
	return err
}
