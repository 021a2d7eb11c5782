// Package store holds every SQL statement the API runs. Methods take a
// context, run multi-row writes in a single transaction, and return
// *apperr.Error for domain failures.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/catalog"
)

// Store wraps the primary read/write pool.
type Store struct {
	DB  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// exists runs a `SELECT 1 ...` style query.
func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// uniqueSlug returns base, or the first free base-N, for the slug column of
// table. excludeID lets an update keep its own slug. table is always a constant.
func uniqueSlug(ctx context.Context, q querier, table, base string, excludeID int64) (string, error) {
	query := "SELECT 1 FROM " + table + " WHERE slug = ? AND id <> ?"
	for n := 0; ; n++ {
		candidate := catalog.SlugCandidate(base, n)
		taken, err := exists(ctx, q, query, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '!'.
// '!' is used as the escape character because a backslash literal is read
// differently by MySQL and SQLite.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern is the lower-cased substring pattern for term.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
