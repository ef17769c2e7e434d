package cli

import (
	"fmt"

	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newPaymentCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payment",
		Aliases: []string{"payments"},
		Short:   "Payments received against quotations",
	}
	cmd.AddCommand(
		newPaymentAddCommand(e),
		newPaymentListCommand(e),
		newPaymentRemoveCommand(e),
	)
	return cmd
}

func newPaymentAddCommand(e *env) *cobra.Command {
	var date, method, reference, notes string
	cmd := &cobra.Command{
		Use:   "add QUOTATION AMOUNT",
		Short: "Record a payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := quote.PaymentInput{Reference: reference, Notes: notes}
			var err error
			if in.Amount, err = parseDec(args[1], "amount"); err != nil {
				return err
			}
			if in.Method, err = quote.ParsePaymentMethod(method); err != nil {
				return err
			}
			if in.Date, err = parseDate(date, "payment date"); err != nil {
				return err
			}
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				if in.Date.IsZero() {
					in.Date = e.Now().UTC()
				}
				p, err := data.AddPayment(db, id, in)
				if err != nil {
					return err
				}
				s, err := data.PaymentSummary(db, id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "payment %d added, paid %s, balance %s\n",
					p.ID, cell(s.Paid), cell(s.Balance))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "payment date YYYY-MM-DD, today when empty")
	cmd.Flags().StringVar(&method, "method", string(quote.PayCash), "cash, card, transfer or other")
	cmd.Flags().StringVar(&reference, "ref", "", "reference")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	return cmd
}

func newPaymentListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list QUOTATION",
		Short: "List payments of a quotation with the balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				xs, err := data.ListPayments(db, id)
				if err != nil {
					return err
				}
				t := newTable(e.out, "ID", "DATE", "AMOUNT", "METHOD", "REFERENCE")
				for _, p := range xs {
					t.row(p.ID, p.Date, p.Amount, string(p.Method), p.Reference)
				}
				if err := t.flush(); err != nil {
					return err
				}
				s, err := data.PaymentSummary(db, id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(e.out)
				return fields(e.out, "Grand total", s.GrandTotal, "Paid", s.Paid, "Balance", s.Balance)
			})
		},
	}
}

func newPaymentRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PAYMENT_ID",
		Short: "Delete a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "payment")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				return data.DeletePayment(db, id)
			})
		},
	}
}
