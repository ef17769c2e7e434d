package data

import (
	"database/sql"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type QuotationFilter struct {
	Query  string // serial or customer name
	Phone  string
	From   time.Time
	To     time.Time // inclusive day
	Status quote.Status
}

const sqlSelectQuotations = `
SELECT quotation.*,
       CASE WHEN customer.type = 'company' AND customer.company_name <> '' THEN customer.company_name
            ELSE customer.name END AS customer_name
FROM quotation
INNER JOIN customer ON customer.customer_id = quotation.customer_id`

const sqlSelectItems = `
SELECT quote_item.*,
       product.name AS product_name,
       product.unit_type AS unit_type,
       COALESCE(product_variation.name, '') AS variation_name
FROM quote_item
INNER JOIN product ON product.product_id = quote_item.product_id
LEFT JOIN product_variation ON product_variation.variation_id = quote_item.variation_id`

// CreateQuotation opens a draft quotation for the customer. The serial is the next one of the
// current year and the tax rate is the company default.
func CreateQuotation(db *sqlx.DB, customerID int64, notes string) (quote.Quotation, error) {
	var q quote.Quotation
	err := withTx(db, func(tx *sqlx.Tx) error {
		if _, err := GetCustomer(tx, customerID); err != nil {
			return err
		}
		settings, err := getSettings(tx)
		if err != nil {
			return err
		}
		t := now()
		serial, err := nextSerial(tx, t.Year())
		if err != nil {
			return err
		}
		r, err := tx.Exec(`
INSERT INTO quotation (serial_number, customer_id, status, header_discount_type, tax_rate, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			serial, customerID, quote.StatusDraft, quote.DiscountFixed, settings.DefaultTaxRate, notes, t, t)
		if err != nil {
			return merry.Wrap(err)
		}
		quotationID, err := getNewInsertedID(r)
		if err != nil {
			return err
		}
		q, err = getQuotation(tx, quotationID)
		return err
	})
	return q, err
}

func nextSerial(db sqlx.Queryer, year int) (string, error) {
	var xs []string
	err := sqlx.Select(db, &xs, `
SELECT serial_number FROM quotation
WHERE serial_number LIKE ?
ORDER BY serial_number DESC
LIMIT 1`, quote.SerialYearPrefix(year)+"%")
	if err != nil {
		return "", merry.Wrap(err)
	}
	var last string
	if len(xs) > 0 {
		last = xs[0]
	}
	return quote.NextSerial(last, year)
}

// GetQuotation returns the quotation with its items.
func GetQuotation(db sqlx.Queryer, quotationID int64) (quote.Quotation, error) {
	q, err := getQuotation(db, quotationID)
	if err != nil {
		return q, err
	}
	q.Items, err = ListItems(db, quotationID)
	return q, err
}

func getQuotation(db sqlx.Queryer, quotationID int64) (q quote.Quotation, err error) {
	err = getOne(db, &q, "quotation", quotationID, sqlSelectQuotations+` WHERE quotation_id = ?`, quotationID)
	return
}

func GetQuotationBySerial(db sqlx.Queryer, serial string) (quote.Quotation, error) {
	var q quote.Quotation
	err := sqlx.Get(db, &q, sqlSelectQuotations+` WHERE serial_number = ?`, serial)
	if err == sql.ErrNoRows {
		return q, quote.ErrNotFound.Appendf("quotation %s", serial).
			WithUserMessagef("quotation %s not found", serial)
	}
	if err != nil {
		return q, merry.Wrap(err)
	}
	q.Items, err = ListItems(db, q.ID)
	return q, err
}

func ListQuotations(db *sqlx.DB) ([]quote.Quotation, error) {
	return SearchQuotations(db, QuotationFilter{})
}

// SearchQuotations lists quotations newest first. Zero filter fields match everything.
func SearchQuotations(db *sqlx.DB, f QuotationFilter) ([]quote.Quotation, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Query != "" {
		where = append(where, `(serial_number LIKE ? ESCAPE '\' OR customer.name LIKE ? ESCAPE '\' OR customer.company_name LIKE ? ESCAPE '\')`)
		args = append(args, likeArg(f.Query), likeArg(f.Query), likeArg(f.Query))
	}
	if f.Phone != "" {
		where = append(where, `customer.phone LIKE ? ESCAPE '\'`)
		args = append(args, likeArg(f.Phone))
	}
	if !f.From.IsZero() {
		where = append(where, `quotation.created_at >= ?`)
		args = append(args, day(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, `quotation.created_at < ?`)
		args = append(args, day(f.To).AddDate(0, 0, 1))
	}
	if f.Status != "" {
		where = append(where, `quotation.status = ?`)
		args = append(args, f.Status)
	}
	query := sqlSelectQuotations
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY quotation.created_at DESC, quotation_id DESC"

	var xs []quote.Quotation
	if err := db.Select(&xs, query, args...); err != nil {
		return nil, merry.Wrap(err)
	}
	return xs, nil
}

func ListCustomerQuotations(db *sqlx.DB, customerID int64) (xs []quote.Quotation, err error) {
	err = db.Select(&xs, sqlSelectQuotations+`
WHERE quotation.customer_id = ?
ORDER BY quotation.created_at DESC, quotation_id DESC`, customerID)
	return xs, merry.Wrap(err)
}

func ListItems(db sqlx.Queryer, quotationID int64) (xs []quote.Item, err error) {
	err = sqlx.Select(db, &xs, sqlSelectItems+` WHERE quotation_id = ? ORDER BY item_id`, quotationID)
	return xs, merry.Wrap(err)
}

func GetItem(db sqlx.Queryer, itemID int64) (x quote.Item, err error) {
	err = getOne(db, &x, "item", itemID, sqlSelectItems+` WHERE item_id = ?`, itemID)
	return
}

// AddItem prices the item from the catalog at the quotation's tax rate and updates the quotation totals.
func AddItem(db *sqlx.DB, quotationID int64, in quote.ItemInput) (quote.Item, error) {
	if err := in.Validate(); err != nil {
		return quote.Item{}, err
	}
	var x quote.Item
	err := withTx(db, func(tx *sqlx.Tx) error {
		q, err := getQuotation(tx, quotationID)
		if err != nil {
			return err
		}
		itemID, err := insertItem(tx, q, in)
		if err != nil {
			return err
		}
		if _, err := recalcTotals(tx, quotationID); err != nil {
			return err
		}
		x, err = GetItem(tx, itemID)
		return err
	})
	return x, err
}

func insertItem(tx sqlx.Ext, q quote.Quotation, in quote.ItemInput) (int64, error) {
	x, err := pricedItem(tx, in, q.TaxRate)
	if err != nil {
		return 0, err
	}
	x.QuotationID = q.ID
	x.CreatedAt = now()
	r, err := sqlx.NamedExec(tx, `
INSERT INTO quote_item (quotation_id, product_id, variation_id, color_text, width, height, area, quantity, total_area,
                        unit_price, unit_price_override, discount_type, discount_value, discount_amount,
                        line_total_ex_vat, vat_amount, line_total_inc_vat, notes, created_at)
VALUES (:quotation_id, :product_id, :variation_id, :color_text, :width, :height, :area, :quantity, :total_area,
        :unit_price, :unit_price_override, :discount_type, :discount_value, :discount_amount,
        :line_total_ex_vat, :vat_amount, :line_total_inc_vat, :notes, :created_at)`, x)
	if err != nil {
		return 0, merry.Wrap(err)
	}
	return getNewInsertedID(r)
}

// UpdateItem replaces the item fields and prices it again from the catalog.
func UpdateItem(db *sqlx.DB, itemID int64, in quote.ItemInput) (quote.Item, error) {
	if err := in.Validate(); err != nil {
		return quote.Item{}, err
	}
	var x quote.Item
	err := withTx(db, func(tx *sqlx.Tx) error {
		prev, err := GetItem(tx, itemID)
		if err != nil {
			return err
		}
		q, err := getQuotation(tx, prev.QuotationID)
		if err != nil {
			return err
		}
		if err := repriceItem(tx, itemID, in, q.TaxRate); err != nil {
			return err
		}
		if _, err := recalcTotals(tx, q.ID); err != nil {
			return err
		}
		x, err = GetItem(tx, itemID)
		return err
	})
	return x, err
}

func repriceItem(tx sqlx.Ext, itemID int64, in quote.ItemInput, taxRate decimal.Decimal) error {
	x, err := pricedItem(tx, in, taxRate)
	if err != nil {
		return err
	}
	x.ID = itemID
	return updateItemRow(tx, x)
}

func RemoveItem(db *sqlx.DB, itemID int64) error {
	return withTx(db, func(tx *sqlx.Tx) error {
		x, err := GetItem(tx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM quote_item WHERE item_id = ?`, itemID); err != nil {
			return merry.Wrap(err)
		}
		_, err = recalcTotals(tx, x.QuotationID)
		return err
	})
}

// pricedItem resolves the product and variation of the input and computes the line amounts.
func pricedItem(db sqlx.Queryer, in quote.ItemInput, taxRate decimal.Decimal) (quote.Item, error) {
	var p quote.Product
	if err := getOne(db, &p, "product", in.ProductID, `SELECT * FROM product WHERE product_id = ?`, in.ProductID); err != nil {
		return quote.Item{}, err
	}
	x := quote.Item{
		ProductID:     p.ID,
		ProductName:   p.Name,
		UnitType:      p.UnitType,
		ColorText:     in.ColorText,
		Width:         quote.NullDec(in.Width),
		Height:        quote.NullDec(in.Height),
		Quantity:      in.Quantity,
		PriceOverride: quote.NullDec(in.UnitPriceOverride),
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		Notes:         in.Notes,
	}
	var variationPrice decimal.NullDecimal
	if in.VariationID != nil {
		v, err := GetVariation(db, *in.VariationID)
		if err != nil {
			return x, err
		}
		if v.ProductID != p.ID {
			return x, quote.ErrInvalid.Appendf("variation %d does not belong to product %d", v.ID, p.ID).
				WithUserMessagef("variation %q is not a variation of %q", v.Name, p.Name)
		}
		x.VariationID.Int64, x.VariationID.Valid = v.ID, true
		x.VariationName = v.Name
		variationPrice = v.UnitPriceOverride
	}
	applyLine(&x, quote.LineTotals(quote.LineInput{
		Width:             x.Width.Decimal,
		Height:            x.Height.Decimal,
		Quantity:          x.Quantity,
		UnitType:          p.UnitType,
		BaseUnitPrice:     p.BaseUnitPrice,
		VariationPrice:    variationPrice,
		UnitPriceOverride: x.PriceOverride,
		DiscountType:      x.DiscountType,
		DiscountValue:     x.DiscountValue,
		TaxRate:           taxRate,
	}))
	return x, nil
}

func applyLine(x *quote.Item, line quote.Line) {
	x.Area = line.Area
	x.TotalArea = line.TotalArea
	x.UnitPrice = line.UnitPrice
	x.DiscountAmount = line.DiscountAmount
	x.LineTotalExVAT = line.LineTotalExVAT
	x.VATAmount = line.VATAmount
	x.LineTotalIncVAT = line.LineTotalIncVAT
}

func updateItemRow(db sqlx.Ext, x quote.Item) error {
	r, err := sqlx.NamedExec(db, `
UPDATE quote_item
 SET product_id=:product_id,
     variation_id=:variation_id,
     color_text=:color_text,
     width=:width,
     height=:height,
     area=:area,
     quantity=:quantity,
     total_area=:total_area,
     unit_price=:unit_price,
     unit_price_override=:unit_price_override,
     discount_type=:discount_type,
     discount_value=:discount_value,
     discount_amount=:discount_amount,
     line_total_ex_vat=:line_total_ex_vat,
     vat_amount=:vat_amount,
     line_total_inc_vat=:line_total_inc_vat,
     notes=:notes
WHERE item_id=:item_id`, x)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "item", x.ID)
}

// recalcTotals recomputes the header amounts from the stored items.
func recalcTotals(db sqlx.Ext, quotationID int64) (quote.Totals, error) {
	q, err := getQuotation(db, quotationID)
	if err != nil {
		return quote.Totals{}, err
	}
	items, err := ListItems(db, quotationID)
	if err != nil {
		return quote.Totals{}, err
	}
	lines := make([]quote.Line, 0, len(items))
	for _, x := range items {
		lines = append(lines, quote.ItemLine(x))
	}
	t := quote.QuotationTotals(lines, q.HeaderDiscountType, q.HeaderDiscountValue, q.TaxRate)
	_, err = db.Exec(`
UPDATE quotation
 SET subtotal_ex_vat=?,
     item_discounts=?,
     discount_header=?,
     discounted_ex_vat=?,
     vat_amount=?,
     grand_total=?,
     updated_at=?
WHERE quotation_id=?`,
		t.SubtotalExVAT, t.ItemDiscounts, t.DiscountHeader, t.DiscountedExVAT, t.VATAmount, t.GrandTotal,
		now(), quotationID)
	return t, merry.Wrap(err)
}

func RecalculateTotals(db *sqlx.DB, quotationID int64) (t quote.Totals, err error) {
	err = withTx(db, func(tx *sqlx.Tx) error {
		t, err = recalcTotals(tx, quotationID)
		return err
	})
	return
}

func SetHeaderDiscount(db *sqlx.DB, quotationID int64, typ quote.DiscountType, value decimal.Decimal) (quote.Totals, error) {
	if err := quote.CheckDiscount(typ, value); err != nil {
		return quote.Totals{}, err
	}
	var t quote.Totals
	err := withTx(db, func(tx *sqlx.Tx) error {
		r, err := tx.Exec(`UPDATE quotation SET header_discount_type = ?, header_discount_value = ? WHERE quotation_id = ?`,
			typ, value, quotationID)
		if err != nil {
			return merry.Wrap(err)
		}
		if err := expectOneRowAffected(r, "quotation", quotationID); err != nil {
			return err
		}
		t, err = recalcTotals(tx, quotationID)
		return err
	})
	return t, err
}

// SetTaxRate recomputes every line at the new rate. Unit prices already captured on the items are kept.
func SetTaxRate(db *sqlx.DB, quotationID int64, rate decimal.Decimal) (quote.Totals, error) {
	if err := quote.CheckTaxRate(rate); err != nil {
		return quote.Totals{}, err
	}
	var t quote.Totals
	err := withTx(db, func(tx *sqlx.Tx) error {
		r, err := tx.Exec(`UPDATE quotation SET tax_rate = ? WHERE quotation_id = ?`, rate, quotationID)
		if err != nil {
			return merry.Wrap(err)
		}
		if err := expectOneRowAffected(r, "quotation", quotationID); err != nil {
			return err
		}
		items, err := ListItems(tx, quotationID)
		if err != nil {
			return err
		}
		for _, x := range items {
			if err := retaxItem(tx, x, rate); err != nil {
				return err
			}
		}
		t, err = recalcTotals(tx, quotationID)
		return err
	})
	return t, err
}

// retaxItem recomputes the VAT of x at rate. Stored ex-VAT amounts stay as they were billed.
func retaxItem(tx sqlx.Ext, x quote.Item, rate decimal.Decimal) error {
	x.VATAmount = x.LineTotalExVAT.Mul(rate).Round(2)
	x.LineTotalIncVAT = x.LineTotalExVAT.Add(x.VATAmount)
	return updateItemRow(tx, x)
}

func SetStatus(db *sqlx.DB, quotationID int64, status quote.Status) error {
	status, err := quote.ParseStatus(string(status))
	if err != nil {
		return err
	}
	r, err := db.Exec(`UPDATE quotation SET status = ?, updated_at = ? WHERE quotation_id = ?`, status, now(), quotationID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "quotation", quotationID)
}

func SetQuotationNotes(db *sqlx.DB, quotationID int64, notes string) error {
	r, err := db.Exec(`UPDATE quotation SET notes = ?, updated_at = ? WHERE quotation_id = ?`, notes, now(), quotationID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "quotation", quotationID)
}

// DeleteQuotation removes the quotation with its items, payments and assignments.
func DeleteQuotation(db *sqlx.DB, quotationID int64) error {
	r, err := db.Exec(`DELETE FROM quotation WHERE quotation_id = ?`, quotationID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "quotation", quotationID)
}

// ItemCopyLines renders every item of the quotation with the company copy format.
func ItemCopyLines(db *sqlx.DB, quotationID int64) ([]string, error) {
	q, err := GetQuotation(db, quotationID)
	if err != nil {
		return nil, err
	}
	settings, err := GetSettings(db)
	if err != nil {
		return nil, err
	}
	xs := make([]string, 0, len(q.Items))
	for _, x := range q.Items {
		xs = append(xs, quote.FormatItemCopy(settings.CopyFormat, q.Serial, x))
	}
	return xs, nil
}
