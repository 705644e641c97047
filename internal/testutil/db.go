// Package testutil provides an in-memory SQLite database carrying the same
// tables, constraints and indexes as the PostgreSQL migrations.
package testutil

import (
	_ "embed"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

//go:embed schema_sqlite.sql
var schema string

// NewDB opens a fresh in-memory database with the catalog schema applied.
// A single connection is kept so the in-memory database lives for the whole test.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}
