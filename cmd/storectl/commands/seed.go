package commands

import (
	"fmt"

	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed-categories command
var seedCmd = &cobra.Command{
	Use:   "seed-categories",
	Short: "Create the standard categories and subcategories",
	Long: `Create Men, Women and Kids with their subcategories. Rows are matched
by slug, so running the command again only fills in what is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, _, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		report, err := store.New(db).SeedCategories(ctx, store.StandardCategories)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %d categories and %d subcategories\n",
			report.Categories, report.SubCategories)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
