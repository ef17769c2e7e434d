package cli

import (
	"fmt"

	"github.com/fpawel/curtains/internal/data"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newSeedCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with sample customers and products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				r, err := data.Seed(db)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "added customers: %d, products: %d, variations: %d, links: %d\n",
					r.Customers, r.Products, r.Variations, r.Links)
				return err
			})
		},
	}
}
