package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/fpawel/curtains/internal/quote"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func usageErrorf(format string, args ...interface{}) error {
	return quote.ErrInvalid.Here().WithUserMessagef(format, args...)
}

func parseID(s, what string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, usageErrorf("wrong %s id: %q", what, s)
	}
	return n, nil
}

func parseDate(s, what string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, usageErrorf("wrong %s %q, expected YYYY-MM-DD", what, s)
	}
	return t, nil
}

func parseDec(s, what string) (decimal.Decimal, error) {
	x, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return x, usageErrorf("wrong %s %q", what, s)
	}
	return x, nil
}

// decValue is a decimal flag that remembers whether it was given.
type decValue struct {
	x   decimal.Decimal
	set bool
}

func (v *decValue) String() string {
	if !v.set {
		return ""
	}
	return v.x.String()
}

func (v *decValue) Set(s string) error {
	x, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	v.x, v.set = x, true
	return nil
}

func (v *decValue) Type() string {
	return "decimal"
}

func (v *decValue) Ptr() *decimal.Decimal {
	if !v.set {
		return nil
	}
	x := v.x
	return &x
}

func changed(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name)
}
