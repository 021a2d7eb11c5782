// Package dbtest opens a migrated sqlite database for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/01moynul/storefront-golang/internal/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// Open returns a fresh file-backed sqlite database with the full schema and
// foreign keys enforced. It is closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "store.db") +
		"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
	return db
}
