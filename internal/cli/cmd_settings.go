package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newSettingsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Company details printed on quotations",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print company settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				s, err := data.GetSettings(db)
				if err != nil {
					return err
				}
				return printYaml(e.out, quote.SettingsInputOf(s))
			})
		},
	}

	var (
		str      = map[string]*string{}
		currency string
		tax      decValue
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change the given company settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				s, err := data.GetSettings(db)
				if err != nil {
					return err
				}
				in := quote.SettingsInputOf(s)
				for name, p := range map[string]*string{
					"company":     &in.CompanyName,
					"logo":        &in.LogoPath,
					"address":     &in.Address,
					"phone":       &in.Phone,
					"email":       &in.Email,
					"website":     &in.Website,
					"copy-format": &in.CopyFormat,
				} {
					if changed(cmd, name) {
						*p = *str[name]
					}
				}
				if changed(cmd, "logo") && in.LogoPath != "" {
					if abs, err := filepath.Abs(in.LogoPath); err == nil {
						in.LogoPath = e.Paths.RelativeMedia(abs)
					}
				}
				if changed(cmd, "currency") {
					if in.DefaultCurrency, err = quote.ParseCurrency(currency); err != nil {
						return err
					}
				}
				if tax.set {
					in.DefaultTaxRate = tax.x
				}
				if _, err := data.UpdateSettings(db, in); err != nil {
					return err
				}
				_, err = fmt.Fprintln(e.out, "settings saved")
				return err
			})
		},
	}
	for _, x := range []struct{ name, usage string }{
		{"company", "company name"},
		{"logo", "logo image file"},
		{"address", "address"},
		{"phone", "phone number"},
		{"email", "e-mail"},
		{"website", "web site"},
		{"copy-format", "item copy format, placeholders {ItemName} {Color} {W} {H} {Qty} {Serial}"},
	} {
		str[x.name] = set.Flags().String(x.name, "", x.usage)
	}
	set.Flags().StringVar(&currency, "currency", "", "default currency: SAR or USD")
	set.Flags().Var(&tax, "tax", "default VAT rate as a fraction, e.g. 0.15")

	cmd.AddCommand(show, set)
	return cmd
}

func newStatsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dashboard figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				s, err := data.DashboardStats(db, e.Now())
				if err != nil {
					return err
				}
				if err := fields(e.out,
					"Customers", s.Customers,
					"Products", s.Products,
					"Quotations", s.Quotations,
					"Quotations this month", s.QuotationsThisMonth,
					"Revenue this month", s.MonthRevenue,
					"Upcoming assignments", s.UpcomingAssignments,
				); err != nil {
					return err
				}
				var statuses []string
				for st := range s.ByStatus {
					statuses = append(statuses, string(st))
				}
				sort.Strings(statuses)
				var kv []interface{}
				for _, st := range statuses {
					kv = append(kv, "  "+st, s.ByStatus[quote.Status(st)])
				}
				return fields(e.out, kv...)
			})
		},
	}
}
