package quote

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatItemCopy expands the company copy format for one quotation item.
// Known placeholders: {ItemName} {Color} {W} {H} {Qty} {Serial}.
func FormatItemCopy(format string, serial string, x Item) string {
	if strings.TrimSpace(format) == "" {
		format = DefaultCopyFormat
	}
	r := strings.NewReplacer(
		"{ItemName}", x.ProductName,
		"{Color}", x.Color(),
		"{W}", formatMeasure(x.Width),
		"{H}", formatMeasure(x.Height),
		"{Qty}", strconv.Itoa(x.Quantity),
		"{Serial}", serial,
	)
	return r.Replace(format)
}

func formatMeasure(x decimal.NullDecimal) string {
	if !x.Valid {
		return "0"
	}
	return x.Decimal.String()
}
