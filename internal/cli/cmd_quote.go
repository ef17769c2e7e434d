package cli

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/export"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newQuoteCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quote",
		Aliases: []string{"quotes", "quotation"},
		Short:   "Quotations",
	}
	cmd.AddCommand(
		newQuoteNewCommand(e),
		newQuoteAddItemCommand(e),
		newQuoteEditItemCommand(e),
		newQuoteRemoveItemCommand(e),
		newQuoteShowCommand(e),
		newQuoteListCommand(e),
		newQuoteStatusCommand(e),
		newQuoteDiscountCommand(e),
		newQuoteTaxCommand(e),
		newQuoteNotesCommand(e),
		newQuoteRemoveCommand(e),
		newQuotePDFCommand(e),
		newQuoteCSVCommand(e),
		newQuoteCopyCommand(e),
	)
	return cmd
}

// quotationID accepts either a numeric id or a serial number.
func quotationID(db sqlx.Queryer, arg string) (int64, error) {
	if quote.ValidSerial(arg) {
		q, err := data.GetQuotationBySerial(db, arg)
		return q.ID, err
	}
	return parseID(arg, "quotation")
}

// withQuotation runs fn for the quotation named by arg.
func (e *env) withQuotation(cmd *cobra.Command, arg string, fn func(db *sqlx.DB, id int64) error) error {
	return e.withDB(cmd, func(db *sqlx.DB) error {
		id, err := quotationID(db, arg)
		if err != nil {
			return err
		}
		return fn(db, id)
	})
}

type itemFlags struct {
	product, variation         int64
	color, discountType, notes string
	qty                        int
	width, height, price       decValue
	discount                   decValue
}

func (f *itemFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64Var(&f.product, "product", 0, "product id")
	fs.Int64Var(&f.variation, "variation", 0, "variation id, 0 for none")
	fs.StringVar(&f.color, "color", "", "colour text")
	fs.Var(&f.width, "width", "width, m")
	fs.Var(&f.height, "height", "height, m")
	fs.IntVar(&f.qty, "qty", 1, "quantity")
	fs.Var(&f.price, "price", "unit price replacing the catalog price")
	fs.StringVar(&f.discountType, "discount-type", string(quote.DiscountFixed), "percent or fixed")
	fs.Var(&f.discount, "discount", "line discount value")
	fs.StringVar(&f.notes, "notes", "", "notes")
}

func (f *itemFlags) apply(cmd *cobra.Command, in *quote.ItemInput) error {
	if changed(cmd, "product") {
		in.ProductID = f.product
	}
	if changed(cmd, "variation") {
		in.VariationID = nil
		if f.variation > 0 {
			v := f.variation
			in.VariationID = &v
		}
	}
	if changed(cmd, "color") {
		in.ColorText = f.color
	}
	if f.width.set {
		in.Width = f.width.Ptr()
	}
	if f.height.set {
		in.Height = f.height.Ptr()
	}
	if changed(cmd, "qty") || in.Quantity == 0 {
		in.Quantity = f.qty
	}
	if f.price.set {
		in.UnitPriceOverride = f.price.Ptr()
	}
	if changed(cmd, "discount-type") || in.DiscountType == "" {
		t, err := quote.ParseDiscountType(f.discountType)
		if err != nil {
			return err
		}
		in.DiscountType = t
	}
	if f.discount.set {
		in.DiscountValue = f.discount.x
	}
	if changed(cmd, "notes") {
		in.Notes = f.notes
	}
	return nil
}

func newQuoteNewCommand(e *env) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "new CUSTOMER_ID",
		Short: "Start a draft quotation for a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, err := parseID(args[0], "customer")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				q, err := data.CreateQuotation(db, customerID, notes)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "quotation %d %s created\n", q.ID, q.Serial)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "notes printed on the quotation")
	return cmd
}

func newQuoteAddItemCommand(e *env) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "add-item QUOTATION",
		Short: "Add a line item and recalculate the totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in quote.ItemInput
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				x, err := data.AddItem(db, id, in)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "item %d added: %s x %d = %s\n",
					x.ID, x.ProductName, x.Quantity, export.Money(x.LineTotalExVAT))
				return err
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newQuoteEditItemCommand(e *env) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "edit-item ITEM_ID",
		Short: "Change the given fields of a line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				x, err := data.GetItem(db, id)
				if err != nil {
					return err
				}
				in := quote.ItemInputOf(x)
				if err := f.apply(cmd, &in); err != nil {
					return err
				}
				if x, err = data.UpdateItem(db, id, in); err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "item %d saved: %s\n", x.ID, export.Money(x.LineTotalExVAT))
				return err
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newQuoteRemoveItemCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-item ITEM_ID",
		Short: "Remove a line item and recalculate the totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				if err := data.RemoveItem(db, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(e.out, "item %d removed\n", id)
				return err
			})
		},
	}
}

func newQuoteShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show QUOTATION",
		Short: "Show a quotation with items, totals and payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				doc, err := export.LoadDocument(db, id)
				if err != nil {
					return err
				}
				return printDocument(e.out, doc)
			})
		},
	}
}

func printDocument(out io.Writer, doc export.Document) error {
	q := doc.Quotation
	if err := fields(out,
		"Quotation", q.Serial,
		"ID", q.ID,
		"Customer", doc.Customer.DisplayName(),
		"Phone", doc.Customer.Phone,
		"Status", string(q.Status),
		"Date", q.CreatedAt,
		"Tax", doc.TaxPercent()+"%",
		"Notes", q.Notes,
	); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out)
	t := newTable(out, "ITEM", "PRODUCT", "COLOUR", "W", "H", "QTY", "UNIT PRICE", "DISCOUNT", "TOTAL EX VAT")
	for _, x := range q.Items {
		t.row(x.ID, x.ProductName, x.Color(), x.Width, x.Height, x.Quantity, x.UnitPrice, x.DiscountAmount, x.LineTotalExVAT)
	}
	if err := t.flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out)
	t = newTable(out, "", "")
	for _, x := range export.TotalLines(doc) {
		t.row(x.Label, x.Value)
	}
	return t.flush()
}

func printQuotations(e *env, xs []quote.Quotation) error {
	t := newTable(e.out, "ID", "SERIAL", "DATE", "CUSTOMER", "STATUS", "GRAND TOTAL")
	for _, q := range xs {
		t.row(q.ID, q.Serial, q.CreatedAt, q.CustomerName, string(q.Status), q.GrandTotal)
	}
	return t.flush()
}

func newQuoteListCommand(e *env) *cobra.Command {
	var query, phone, from, to, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := data.QuotationFilter{Query: query, Phone: phone}
			var err error
			if f.From, err = parseDate(from, "from date"); err != nil {
				return err
			}
			if f.To, err = parseDate(to, "to date"); err != nil {
				return err
			}
			if status != "" {
				if f.Status, err = quote.ParseStatus(status); err != nil {
					return err
				}
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				xs, err := data.SearchQuotations(db, f)
				if err != nil {
					return err
				}
				return printQuotations(e, xs)
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "serial or customer name contains")
	cmd.Flags().StringVar(&phone, "phone", "", "customer phone contains")
	cmd.Flags().StringVar(&from, "from", "", "created on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "created on or before YYYY-MM-DD")
	cmd.Flags().StringVar(&status, "status", "", "draft, sent, accepted or lost")
	return cmd
}

func newQuoteStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status QUOTATION STATUS",
		Short: "Set the status: draft, sent, accepted or lost",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := quote.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				return data.SetStatus(db, id, status)
			})
		},
	}
}

func printTotals(out io.Writer, t quote.Totals) error {
	_, err := fmt.Fprintf(out, "subtotal %s, discount %s, VAT %s, grand total %s\n",
		export.Money(t.SubtotalExVAT), export.Money(t.DiscountHeader),
		export.Money(t.VATAmount), export.Money(t.GrandTotal))
	return err
}

func newQuoteDiscountCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "discount QUOTATION TYPE VALUE",
		Short: "Set the header discount, TYPE is percent or fixed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := quote.ParseDiscountType(args[1])
			if err != nil {
				return err
			}
			value, err := parseDec(args[2], "discount")
			if err != nil {
				return err
			}
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				t, err := data.SetHeaderDiscount(db, id, typ, value)
				if err != nil {
					return err
				}
				return printTotals(e.out, t)
			})
		},
	}
}

func newQuoteTaxCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tax QUOTATION RATE",
		Short: "Set the VAT rate as a fraction, e.g. 0.15, and recalculate every line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := parseDec(args[1], "tax rate")
			if err != nil {
				return err
			}
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				t, err := data.SetTaxRate(db, id, rate)
				if err != nil {
					return err
				}
				return printTotals(e.out, t)
			})
		},
	}
}

func newQuoteNotesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "notes QUOTATION TEXT",
		Short: "Replace the quotation notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				return data.SetQuotationNotes(db, id, args[1])
			})
		},
	}
}

func newQuoteRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm QUOTATION",
		Short: "Delete a quotation with its items, payments and assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				if err := data.DeleteQuotation(db, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(e.out, "quotation %d deleted\n", id)
				return err
			})
		},
	}
}

func newQuotePDFCommand(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pdf QUOTATION",
		Short: "Print a quotation to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				doc, err := e.LoadDocument(db, id)
				if err != nil {
					return err
				}
				b, err := e.PDFGenerator().Generate(doc)
				if err != nil {
					return err
				}
				filename := output
				if filename == "" {
					filename = doc.Quotation.Serial + ".pdf"
				}
				if err := ioutil.WriteFile(filename, b, 0644); err != nil {
					return merry.Prepend(err, "save pdf").WithUserMessagef("can not write %s", filename)
				}
				log.Info("pdf saved", "serial", doc.Quotation.Serial, "file", filename)
				_, err = fmt.Fprintf(e.out, "saved %s\n", filename)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, SERIAL.pdf when empty")
	return cmd
}

func newQuoteCSVCommand(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "csv QUOTATION",
		Short: "Write quotation items and totals as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				doc, err := e.LoadDocument(db, id)
				if err != nil {
					return err
				}
				return writeOutput(e.out, output, func(w io.Writer) error {
					return export.WriteCSV(w, doc)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func newQuoteCopyCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "copy QUOTATION",
		Short: "Print one line per item in the company copy format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				lines, err := data.ItemCopyLines(db, id)
				if err != nil {
					return err
				}
				if len(lines) == 0 {
					return nil
				}
				_, err = fmt.Fprintln(e.out, strings.Join(lines, "\n"))
				return err
			})
		},
	}
}
