// Package export renders quotations and the product catalog into files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Document is everything printed on a quotation.
type Document struct {
	Settings  quote.Settings
	Customer  quote.Customer
	Quotation quote.Quotation
	Payments  quote.PaymentSummary
	Currency  string
}

func LoadDocument(db *sqlx.DB, quotationID int64) (Document, error) {
	var (
		doc Document
		err error
	)
	if doc.Quotation, err = data.GetQuotation(db, quotationID); err != nil {
		return doc, err
	}
	if doc.Customer, err = data.GetCustomer(db, doc.Quotation.CustomerID); err != nil {
		return doc, err
	}
	if doc.Settings, err = data.GetSettings(db); err != nil {
		return doc, err
	}
	if doc.Payments, err = data.PaymentSummary(db, quotationID); err != nil {
		return doc, err
	}
	doc.Currency = string(doc.Settings.DefaultCurrency)
	return doc, nil
}

// TaxPercent renders the quotation tax rate as a percentage, e.g. "15".
func (x Document) TaxPercent() string {
	return x.Quotation.TaxRate.Mul(decimal.NewFromInt(100)).String()
}

var csvHeader = []string{
	"serial", "item", "color", "width", "height", "area", "quantity", "unit_price",
	"discount", "line_total_ex_vat", "vat", "line_total_inc_vat", "notes",
}

// WriteCSV writes one row per item followed by the quotation totals.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	q := doc.Quotation
	rows := [][]string{csvHeader}
	for _, x := range q.Items {
		rows = append(rows, []string{
			q.Serial,
			x.ProductName,
			x.Color(),
			measure(x.Width),
			measure(x.Height),
			x.Area.String(),
			strconv.Itoa(x.Quantity),
			Money(x.UnitPrice),
			Money(x.DiscountAmount),
			Money(x.LineTotalExVAT),
			Money(x.VATAmount),
			Money(x.LineTotalIncVAT),
			x.Notes,
		})
	}
	rows = append(rows, nil)
	for _, t := range TotalLines(doc) {
		rows = append(rows, []string{t.Label, t.Value})
	}
	if err := cw.WriteAll(rows); err != nil {
		return merry.Wrap(err)
	}
	return nil
}

// TotalLine is a labelled amount of the totals block.
type TotalLine struct {
	Label string
	Value string
}

func TotalLines(doc Document) []TotalLine {
	q := doc.Quotation
	xs := []TotalLine{
		{"Subtotal (ex VAT)", Money(q.SubtotalExVAT)},
	}
	if !q.ItemDiscounts.IsZero() {
		xs = append(xs, TotalLine{"Item discounts", Money(q.ItemDiscounts)})
	}
	if !q.DiscountHeader.IsZero() {
		label := "Discount"
		if q.HeaderDiscountType == quote.DiscountPercent {
			label += " (" + q.HeaderDiscountValue.String() + "%)"
		}
		xs = append(xs, TotalLine{label, "-" + Money(q.DiscountHeader)})
		xs = append(xs, TotalLine{"After discount", Money(q.DiscountedExVAT)})
	}
	xs = append(xs,
		TotalLine{"VAT (" + doc.TaxPercent() + "%)", Money(q.VATAmount)},
		TotalLine{"Grand total " + doc.Currency, Money(q.GrandTotal)},
	)
	if !doc.Payments.Paid.IsZero() {
		xs = append(xs,
			TotalLine{"Paid", Money(doc.Payments.Paid)},
			TotalLine{"Balance", Money(doc.Payments.Balance)},
		)
	}
	return xs
}

func Money(x decimal.Decimal) string {
	return x.StringFixed(2)
}

func measure(x decimal.NullDecimal) string {
	if !x.Valid {
		return ""
	}
	return x.Decimal.String()
}
