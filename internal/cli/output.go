package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fpawel/curtains/internal/export"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer, columns ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	t.row(toInterfaces(columns)...)
	return t
}

func (t *table) row(xs ...interface{}) {
	cells := make([]string, len(xs))
	for i, x := range xs {
		cells[i] = cell(x)
	}
	_, _ = fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

func cell(x interface{}) string {
	switch x := x.(type) {
	case decimal.Decimal:
		return export.Money(x)
	case decimal.NullDecimal:
		if !x.Valid {
			return "-"
		}
		return x.Decimal.String()
	case time.Time:
		if x.IsZero() {
			return "-"
		}
		return x.Format(dateLayout)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case string:
		if x == "" {
			return "-"
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}

func toInterfaces(xs []string) []interface{} {
	r := make([]interface{}, len(xs))
	for i := range xs {
		r[i] = xs[i]
	}
	return r
}

// fields prints label/value pairs aligned.
func fields(out io.Writer, kv ...interface{}) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i := 0; i+1 < len(kv); i += 2 {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", kv[i], cell(kv[i+1]))
	}
	return w.Flush()
}

func printYaml(out io.Writer, x interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(x); err != nil {
		return err
	}
	return enc.Close()
}
