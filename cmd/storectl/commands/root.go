// Package commands implements the storectl maintenance commands.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbDSN   string
	dialect string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Storefront maintenance commands",
	Long: `storectl runs one-off maintenance tasks against the storefront database.

Commands:
  migrate          - Create any missing tables
  seed-categories  - Create the standard Men/Women/Kids categories`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", os.Getenv("DB_DSN"), "Database DSN (defaults to $DB_DSN)")
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", string(database.MySQL), "SQL dialect: mysql or sqlite3")
}

// openDB connects with the selected dialect.
func openDB(ctx context.Context) (*sql.DB, database.Dialect, error) {
	if dbDSN == "" {
		return nil, "", fmt.Errorf("no database DSN: pass --db or set DB_DSN")
	}
	switch d := database.Dialect(dialect); d {
	case database.MySQL:
		db, err := database.OpenDB(ctx, dbDSN)
		return db, d, err
	case database.SQLite:
		db, err := sql.Open("sqlite3", dbDSN)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("enable foreign keys: %w", err)
		}
		return db, d, nil
	default:
		return nil, "", fmt.Errorf("unknown dialect %q (want mysql or sqlite3)", dialect)
	}
}
