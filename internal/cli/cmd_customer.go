package cli

import (
	"fmt"

	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newCustomerCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customer",
		Aliases: []string{"customers"},
		Short:   "Customer records",
	}
	cmd.AddCommand(
		newCustomerListCommand(e),
		newCustomerAddCommand(e),
		newCustomerEditCommand(e),
		newCustomerRemoveCommand(e),
		newCustomerShowCommand(e),
	)
	return cmd
}

type customerFlags struct {
	typ, name, email, phone, address string
	companyName, companyVAT          string
	companyAddress                   string
}

func (f *customerFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.typ, "type", string(quote.Individual), "individual or company")
	fs.StringVar(&f.name, "name", "", "contact name")
	fs.StringVar(&f.email, "email", "", "e-mail")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.address, "address", "", "address")
	fs.StringVar(&f.companyName, "company", "", "company name")
	fs.StringVar(&f.companyVAT, "vat", "", "company VAT number")
	fs.StringVar(&f.companyAddress, "company-address", "", "company address")
}

// apply copies the given flags over in.
func (f *customerFlags) apply(cmd *cobra.Command, in *quote.CustomerInput) error {
	if changed(cmd, "type") || in.Type == "" {
		t, err := quote.ParseCustomerType(f.typ)
		if err != nil {
			return err
		}
		in.Type = t
	}
	for name, x := range map[string]struct {
		p *string
		v string
	}{
		"name":            {&in.Name, f.name},
		"email":           {&in.Email, f.email},
		"phone":           {&in.Phone, f.phone},
		"address":         {&in.Address, f.address},
		"company":         {&in.CompanyName, f.companyName},
		"vat":             {&in.CompanyVAT, f.companyVAT},
		"company-address": {&in.CompanyAddress, f.companyAddress},
	} {
		if changed(cmd, name) {
			*x.p = x.v
		}
	}
	return nil
}

func newCustomerListCommand(e *env) *cobra.Command {
	var query, phone string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				xs, err := data.SearchCustomers(db, query, phone)
				if err != nil {
					return err
				}
				t := newTable(e.out, "ID", "NAME", "TYPE", "PHONE", "EMAIL")
				for _, c := range xs {
					t.row(c.ID, c.DisplayName(), string(c.Type), c.Phone, c.Email)
				}
				return t.flush()
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "name, e-mail or company contains")
	cmd.Flags().StringVar(&phone, "phone", "", "phone contains")
	return cmd
}

func newCustomerAddCommand(e *env) *cobra.Command {
	var f customerFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in quote.CustomerInput
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				c, err := data.CreateCustomer(db, in)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "customer %d added\n", c.ID)
				return err
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newCustomerEditCommand(e *env) *cobra.Command {
	var f customerFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the given fields of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "customer")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				c, err := data.GetCustomer(db, id)
				if err != nil {
					return err
				}
				in := quote.CustomerInputOf(c)
				if err := f.apply(cmd, &in); err != nil {
					return err
				}
				if _, err := data.UpdateCustomer(db, id, in); err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "customer %d saved\n", id)
				return err
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newCustomerRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a customer without quotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "customer")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				if err := data.DeleteCustomer(db, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(e.out, "customer %d deleted\n", id)
				return err
			})
		},
	}
}

func newCustomerShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a customer with its quotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "customer")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				c, err := data.GetCustomer(db, id)
				if err != nil {
					return err
				}
				if err := fields(e.out,
					"ID", c.ID,
					"Name", c.Name,
					"Type", string(c.Type),
					"Phone", c.Phone,
					"E-mail", c.Email,
					"Address", c.Address,
					"Company", c.CompanyName,
					"Company VAT", c.CompanyVAT,
					"Company address", c.CompanyAddress,
					"Created", c.CreatedAt,
				); err != nil {
					return err
				}
				qs, err := data.ListCustomerQuotations(db, id)
				if err != nil || len(qs) == 0 {
					return err
				}
				_, _ = fmt.Fprintln(e.out)
				return printQuotations(e, qs)
			})
		},
	}
}
