package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/export"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newProductCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "product",
		Aliases: []string{"products"},
		Short:   "Product catalog",
	}
	cmd.AddCommand(
		newProductListCommand(e),
		newProductAddCommand(e),
		newProductEditCommand(e),
		newProductRemoveCommand(e),
		newProductShowCommand(e),
		newVariationCommand(e),
		newLinkCommand(e),
		newProductExportCommand(e),
		newProductImportCommand(e),
	)
	return cmd
}

type productFlags struct {
	name, category, unit, currency, notes string
	price                                 decValue
}

func (f *productFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "product name")
	fs.StringVar(&f.category, "category", "", "category")
	fs.StringVar(&f.unit, "unit", string(quote.UnitArea), "priced by: area, width, length or pcs")
	fs.Var(&f.price, "price", "base unit price ex VAT")
	fs.StringVar(&f.currency, "currency", string(quote.SAR), "SAR or USD")
	fs.StringVar(&f.notes, "notes", "", "notes")
}

func (f *productFlags) apply(cmd *cobra.Command, in *quote.ProductInput) error {
	if changed(cmd, "unit") || in.UnitType == "" {
		u, err := quote.ParseUnitType(f.unit)
		if err != nil {
			return err
		}
		in.UnitType = u
	}
	if changed(cmd, "currency") || in.Currency == "" {
		c, err := quote.ParseCurrency(f.currency)
		if err != nil {
			return err
		}
		in.Currency = c
	}
	if f.price.set {
		in.BaseUnitPrice = f.price.x
	}
	if changed(cmd, "name") {
		in.Name = f.name
	}
	if changed(cmd, "category") {
		in.Category = f.category
	}
	if changed(cmd, "notes") {
		in.Notes = f.notes
	}
	return nil
}

func newProductListCommand(e *env) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				xs, err := data.SearchProducts(db, query)
				if err != nil {
					return err
				}
				t := newTable(e.out, "ID", "NAME", "CATEGORY", "UNIT", "PRICE", "VARIATIONS")
				for _, p := range xs {
					t.row(p.ID, p.Name, p.Category, string(p.UnitType), p.BaseUnitPrice, len(p.Variations))
				}
				return t.flush()
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "name or category contains")
	return cmd
}

func newProductAddCommand(e *env) *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in quote.ProductInput
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				p, err := data.CreateProduct(db, in)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "product %d added\n", p.ID)
				return err
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newProductEditCommand(e *env) *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the given fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				p, err := data.GetProduct(db, id)
				if err != nil {
					return err
				}
				in := quote.ProductInputOf(p)
				if err := f.apply(cmd, &in); err != nil {
					return err
				}
				if _, err := data.UpdateProduct(db, id, in); err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "product %d saved\n", id)
				return err
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newProductRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a product not used in quotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				if err := data.DeleteProduct(db, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(e.out, "product %d deleted\n", id)
				return err
			})
		},
	}
}

func newProductShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a product with variations and linked products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				p, err := data.GetProduct(db, id)
				if err != nil {
					return err
				}
				if err := fields(e.out,
					"ID", p.ID,
					"Name", p.Name,
					"Category", p.Category,
					"Unit", string(p.UnitType),
					"Price", p.BaseUnitPrice,
					"Currency", string(p.Currency),
					"Notes", p.Notes,
				); err != nil {
					return err
				}
				if len(p.Variations) > 0 {
					_, _ = fmt.Fprintln(e.out, "\nVariations:")
					t := newTable(e.out, "ID", "NAME", "PRICE", "SKU", "IMAGE")
					for _, v := range p.Variations {
						t.row(v.ID, v.Name, v.UnitPriceOverride, v.SKU, v.ImagePath)
					}
					if err := t.flush(); err != nil {
						return err
					}
				}
				if len(p.Links) > 0 {
					_, _ = fmt.Fprintln(e.out, "\nLinked products:")
					t := newTable(e.out, "ID", "PRODUCT", "TYPE", "NOTE")
					for _, l := range p.Links {
						t.row(l.LinkedProductID, l.LinkedName, l.LinkType, l.Note)
					}
					return t.flush()
				}
				return nil
			})
		},
	}
}

func newVariationCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variation",
		Short: "Colour and size variations of a product",
	}

	var (
		name, sku, image string
		price            decValue
	)
	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a variation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				in := quote.VariationInput{
					Name:              name,
					UnitPriceOverride: price.Ptr(),
					SKU:               sku,
				}
				if image != "" {
					abs, err := filepath.Abs(image)
					if err != nil {
						return merry.Wrap(err)
					}
					in.ImagePath = e.Paths.RelativeMedia(abs)
				}
				v, err := data.AddVariation(db, id, in)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "variation %d added\n", v.ID)
				return err
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "variation name")
	add.Flags().Var(&price, "price", "unit price replacing the product price")
	add.Flags().StringVar(&sku, "sku", "", "stock keeping unit")
	add.Flags().StringVar(&image, "image", "", "image file, stored relative to the media directory when inside it")

	rm := &cobra.Command{
		Use:   "rm VARIATION_ID",
		Short: "Delete a variation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "variation")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				return data.DeleteVariation(db, id)
			})
		},
	}

	clearAll := &cobra.Command{
		Use:   "clear PRODUCT_ID",
		Short: "Delete all variations of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				if _, err := data.GetProduct(db, id); err != nil {
					return err
				}
				return data.ClearVariations(db, id)
			})
		},
	}

	cmd.AddCommand(add, rm, clearAll)
	return cmd
}

func newLinkCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Products offered together",
	}

	var linkType, note string
	add := &cobra.Command{
		Use:   "add PRODUCT_ID LINKED_PRODUCT_ID",
		Short: "Link two products",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			linkedID, err := parseID(args[1], "linked product")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				l, err := data.AddLink(db, id, linkedID, linkType, note)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "product %d linked to %s\n", id, l.LinkedName)
				return err
			})
		},
	}
	add.Flags().StringVar(&linkType, "type", "accessory", "link type")
	add.Flags().StringVar(&note, "note", "", "note")

	clearAll := &cobra.Command{
		Use:   "clear PRODUCT_ID",
		Short: "Remove all links of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				return data.ClearLinks(db, id)
			})
		},
	}

	cmd.AddCommand(add, clearAll)
	return cmd
}

func newProductExportCommand(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				products, err := data.ListProducts(db)
				if err != nil {
					return err
				}
				return writeOutput(e.out, output, func(w io.Writer) error {
					return export.ExportCatalog(w, products)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func newProductImportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add or update products from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return merry.Prepend(err, "open catalog").WithUserMessagef("can not open %s", args[0])
			}
			defer func() { _ = f.Close() }()
			return e.withDB(cmd, func(db *sqlx.DB) error {
				r, err := export.ImportCatalog(db, f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "products created: %d, updated: %d\n", r.Created, r.Updated)
				return err
			})
		},
	}
}

// writeOutput sends fn output to filename, or to out when filename is empty.
func writeOutput(out io.Writer, filename string, fn func(w io.Writer) error) error {
	if filename == "" {
		return fn(out)
	}
	f, err := os.Create(filename)
	if err != nil {
		return merry.Prepend(err, "create").WithUserMessagef("can not create %s", filename)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return merry.Wrap(err)
	}
	_, err = fmt.Fprintf(out, "saved %s\n", filename)
	return err
}
