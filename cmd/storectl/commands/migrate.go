package commands

import (
	"fmt"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create any missing tables",
	Long: `Create every storefront table that does not exist yet. Existing tables
are left untouched, so the command is safe to run on every deploy.

Examples:
  storectl migrate --db "user:pass@tcp(127.0.0.1:3306)/storefront?parseTime=true"
  storectl migrate --dialect sqlite3 --db ./dev.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, d, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(ctx, db, d); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
