package data

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LegacyReport counts the records taken from a legacy database.
type LegacyReport struct {
	Customers  int
	Products   int
	Quotations int
	Items      int
	Settings   bool
}

func (x LegacyReport) String() string {
	return fmt.Sprintf("customers: %d, products: %d, quotations: %d, items: %d, settings: %v",
		x.Customers, x.Products, x.Quotations, x.Items, x.Settings)
}

type legacyRow map[string]interface{}

// ImportLegacy copies customers, products, quotations and items of a database in the old
// single-price schema into db. Identifiers are kept. Records get the defaults of the current schema:
// individual customers, area pricing, draft quotations, generated serials where missing.
// The target must hold no customers and no products. Everything happens in one transaction.
func ImportLegacy(ctx context.Context, db *sqlx.DB, legacyPath string) (LegacyReport, error) {
	var r LegacyReport
	if _, err := os.Stat(legacyPath); err != nil {
		return r, merry.Prepend(err, "legacy database").WithUserMessagef("legacy database %s not found", legacyPath)
	}
	src, err := openSqliteDBx(legacyPath)
	if err != nil {
		return r, err
	}
	defer log.ErrIfFail(src.Close)

	var n int
	if err := db.GetContext(ctx, &n, `SELECT (SELECT COUNT(*) FROM customer) + (SELECT COUNT(*) FROM product)`); err != nil {
		return r, merry.Wrap(err)
	}
	if n > 0 {
		return r, quote.ErrInUse.Append("target database is not empty").
			WithUserMessage("legacy import needs an empty database")
	}

	tables := map[string][]legacyRow{}
	for _, table := range []string{"customers", "products", "quotations", "quote_items", "company_settings"} {
		rows, err := readLegacyTable(ctx, src, table)
		if err != nil {
			if table == "company_settings" {
				log.Debug("legacy settings skipped", "reason", err)
				continue
			}
			return r, merry.Prependf(err, "legacy table %s", table)
		}
		tables[table] = rows
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return r, merry.Wrap(err)
	}
	if err := importLegacy(tx, tables, &r); err != nil {
		_ = tx.Rollback()
		return LegacyReport{}, err
	}
	if err := tx.Commit(); err != nil {
		return LegacyReport{}, merry.Wrap(err)
	}
	log.Info("legacy import", "from", legacyPath, "result", r.String())
	return r, nil
}

func readLegacyTable(ctx context.Context, db *sqlx.DB, table string) ([]legacyRow, error) {
	rows, err := db.QueryxContext(ctx, `SELECT * FROM `+table)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	defer log.ErrIfFail(rows.Close)
	var xs []legacyRow
	for rows.Next() {
		m := map[string]interface{}{}
		if err := rows.MapScan(m); err != nil {
			return nil, merry.Wrap(err)
		}
		xs = append(xs, m)
	}
	return xs, merry.Wrap(rows.Err())
}

func importLegacy(tx *sqlx.Tx, tables map[string][]legacyRow, r *LegacyReport) error {
	defaultTime := now()

	for _, m := range tables["customers"] {
		c := quote.Customer{
			ID:        m.getInt("id"),
			Type:      quote.Individual,
			Name:      m.getStr("name"),
			Email:     m.getStr("email"),
			Phone:     m.getStr("phone"),
			Address:   m.getStr("address"),
			CreatedAt: m.getTime("created_at", defaultTime),
		}
		if _, err := tx.NamedExec(`
INSERT INTO customer (customer_id, type, name, email, phone, address, created_at)
VALUES (:customer_id, :type, :name, :email, :phone, :address, :created_at)`, c); err != nil {
			return merry.Prependf(err, "customer %d", c.ID)
		}
		r.Customers++
	}

	for _, m := range tables["products"] {
		currency, err := quote.ParseCurrency(m.getStr("currency"))
		if err != nil {
			currency = quote.SAR
		}
		p := quote.Product{
			ID:            m.getInt("id"),
			Name:          m.getStr("name"),
			Category:      m.getStr("category"),
			UnitType:      quote.UnitArea,
			BaseUnitPrice: m.getDec("price"),
			Currency:      currency,
			CreatedAt:     m.getTime("created_at", defaultTime),
		}
		if _, err := tx.NamedExec(`
INSERT INTO product (product_id, name, category, unit_type, base_unit_price, currency, created_at)
VALUES (:product_id, :name, :category, :unit_type, :base_unit_price, :currency, :created_at)`, p); err != nil {
			return merry.Prependf(err, "product %d", p.ID)
		}
		r.Products++
	}

	// stored serials go first so the generated ones continue after them
	var (
		serialsSeen = make(map[string]bool)
		unnumbered  []legacyRow
	)
	for _, m := range tables["quotations"] {
		serial := m.getStr("serial_number")
		if !quote.ValidSerial(serial) || serialsSeen[serial] {
			unnumbered = append(unnumbered, m)
			continue
		}
		serialsSeen[serial] = true
		if err := importLegacyQuotation(tx, m, serial, defaultTime); err != nil {
			return err
		}
		r.Quotations++
	}
	for _, m := range unnumbered {
		serial, err := nextSerial(tx, m.getTime("created_at", defaultTime).Year())
		if err != nil {
			return merry.Prependf(err, "quotation %d", m.getInt("id"))
		}
		if err := importLegacyQuotation(tx, m, serial, defaultTime); err != nil {
			return err
		}
		r.Quotations++
	}

	for _, m := range tables["quote_items"] {
		x := quote.Item{
			ID:            m.getInt("id"),
			QuotationID:   m.getInt("quotation_id"),
			ProductID:     m.getInt("product_id"),
			Quantity:      int(m.getInt("quantity")),
			UnitPrice:     m.getDec("unit_price"),
			DiscountType:  quote.DiscountFixed,
			DiscountValue: decimal.Zero,
			CreatedAt:     m.getTime("created_at", defaultTime),
		}
		if x.Quantity <= 0 {
			x.Quantity = 1
		}
		if w := m.getDec("width"); w.IsPositive() {
			x.Width = decimal.NewNullDecimal(w)
		}
		if h := m.getDec("height"); h.IsPositive() {
			x.Height = decimal.NewNullDecimal(h)
		}
		x.Area = quote.Area(x.Width.Decimal, x.Height.Decimal)
		x.TotalArea = quote.TotalArea(x.Area, x.Quantity)

		// the old line total is kept as it was billed
		lineTotal, ok := m.getDecOk("line_total")
		if !ok {
			lineTotal = x.UnitPrice.Mul(decimal.NewFromInt(int64(x.Quantity)))
		}
		x.LineTotalExVAT = lineTotal.Round(2)
		x.VATAmount = x.LineTotalExVAT.Mul(quote.DefaultTaxRate).Round(2)
		x.LineTotalIncVAT = x.LineTotalExVAT.Add(x.VATAmount)

		if _, err := tx.NamedExec(`
INSERT INTO quote_item (item_id, quotation_id, product_id, width, height, area, quantity, total_area,
                        unit_price, discount_type, discount_value, discount_amount,
                        line_total_ex_vat, vat_amount, line_total_inc_vat, created_at)
VALUES (:item_id, :quotation_id, :product_id, :width, :height, :area, :quantity, :total_area,
        :unit_price, :discount_type, :discount_value, :discount_amount,
        :line_total_ex_vat, :vat_amount, :line_total_inc_vat, :created_at)`, x); err != nil {
			return merry.Prependf(err, "quote item %d", x.ID)
		}
		r.Items++
	}

	for _, m := range tables["quotations"] {
		if _, err := recalcTotals(tx, m.getInt("id")); err != nil {
			return err
		}
	}

	if xs := tables["company_settings"]; len(xs) > 0 {
		m := xs[0]
		s := quote.DefaultSettings()
		if v := m.getStr("company_name"); v != "" {
			s.CompanyName = v
		}
		s.LogoPath = m.getStr("logo_path")
		s.Address = m.getStr("address")
		s.Phone = m.getStr("phone")
		s.Email = m.getStr("email")
		s.Website = m.getStr("website")
		if v, ok := m.getDecOk("tax_rate"); ok && quote.CheckTaxRate(v) == nil {
			s.DefaultTaxRate = v
		}
		s.UpdatedAt = defaultTime
		if err := saveSettings(tx, s); err != nil {
			return err
		}
		r.Settings = true
	}
	return nil
}

func (m legacyRow) getStr(k string) string {
	switch v := m[k].(type) {
	case nil:
		return ""
	case []byte:
		return strings.TrimSpace(string(v))
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

func (m legacyRow) getInt(k string) int64 {
	switch v := m[k].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	n, _ := strconv.ParseInt(m.getStr(k), 10, 64)
	return n
}

func (m legacyRow) getDecOk(k string) (decimal.Decimal, bool) {
	switch v := m[k].(type) {
	case nil:
		return decimal.Zero, false
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	}
	d, err := decimal.NewFromString(m.getStr(k))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (m legacyRow) getDec(k string) decimal.Decimal {
	d, _ := m.getDecOk(k)
	return d
}

var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

func (m legacyRow) getTime(k string, def time.Time) time.Time {
	if t, ok := m[k].(time.Time); ok {
		return t.UTC().Truncate(time.Second)
	}
	s := m.getStr(k)
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second)
		}
	}
	return def
}

func importLegacyQuotation(tx *sqlx.Tx, m legacyRow, serial string, defaultTime time.Time) error {
	createdAt := m.getTime("created_at", defaultTime)
	q := quote.Quotation{
		ID:                 m.getInt("id"),
		Serial:             serial,
		CustomerID:         m.getInt("customer_id"),
		Status:             quote.StatusDraft,
		HeaderDiscountType: quote.DiscountFixed,
		TaxRate:            quote.DefaultTaxRate,
		Notes:              m.getStr("notes"),
		CreatedAt:          createdAt,
		UpdatedAt:          m.getTime("updated_at", createdAt),
	}
	_, err := tx.NamedExec(`
INSERT INTO quotation (quotation_id, serial_number, customer_id, status, header_discount_type, header_discount_value,
                       tax_rate, notes, created_at, updated_at)
VALUES (:quotation_id, :serial_number, :customer_id, :status, :header_discount_type, :header_discount_value,
        :tax_rate, :notes, :created_at, :updated_at)`, q)
	return merry.Prependf(err, "quotation %d", q.ID)
}
