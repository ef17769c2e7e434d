package data

import (
	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// QuotationEdit is a whole quotation as it is edited in one document.
type QuotationEdit struct {
	Serial              string             `yaml:"serial"`
	Customer            string             `yaml:"customer"`
	Status              quote.Status       `yaml:"status"`
	HeaderDiscountType  quote.DiscountType `yaml:"header_discount_type"`
	HeaderDiscountValue decimal.Decimal    `yaml:"header_discount_value"`
	TaxRate             decimal.Decimal    `yaml:"tax_rate"`
	Notes               string             `yaml:"notes"`
	Items               []EditItem         `yaml:"items"`
}

// EditItem is an existing item when ID is set, otherwise a new one.
type EditItem struct {
	ID              int64 `yaml:"item_id,omitempty"`
	quote.ItemInput `yaml:",inline"`
}

func QuotationEditOf(q quote.Quotation) QuotationEdit {
	r := QuotationEdit{
		Serial:              q.Serial,
		Customer:            q.CustomerName,
		Status:              q.Status,
		HeaderDiscountType:  q.HeaderDiscountType,
		HeaderDiscountValue: q.HeaderDiscountValue,
		TaxRate:             q.TaxRate,
		Notes:               q.Notes,
	}
	for _, x := range q.Items {
		r.Items = append(r.Items, EditItem{ID: x.ID, ItemInput: quote.ItemInputOf(x)})
	}
	return r
}

func (e *QuotationEdit) validate() error {
	status, err := quote.ParseStatus(string(e.Status))
	if err != nil {
		return err
	}
	e.Status = status
	if e.HeaderDiscountType == "" {
		e.HeaderDiscountType = quote.DiscountFixed
	}
	if err := quote.CheckDiscount(e.HeaderDiscountType, e.HeaderDiscountValue); err != nil {
		return err
	}
	if err := quote.CheckTaxRate(e.TaxRate); err != nil {
		return err
	}
	for i := range e.Items {
		if err := e.Items[i].Validate(); err != nil {
			return merry.Prependf(err, "item %d", i+1)
		}
	}
	return nil
}

// EditQuotation saves the header and the item list in one transaction.
// Items missing from the list are removed, items without ID are added.
// Items whose pricing fields are unchanged keep their stored amounts and only get VAT at the new rate.
// Changed ones are priced from the catalog again.
func EditQuotation(db *sqlx.DB, quotationID int64, e QuotationEdit) (quote.Quotation, error) {
	if err := e.validate(); err != nil {
		return quote.Quotation{}, err
	}
	var q quote.Quotation
	err := withTx(db, func(tx *sqlx.Tx) error {
		prev, err := GetQuotation(tx, quotationID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
UPDATE quotation
SET status = ?, header_discount_type = ?, header_discount_value = ?, tax_rate = ?, notes = ?, updated_at = ?
WHERE quotation_id = ?`,
			e.Status, e.HeaderDiscountType, e.HeaderDiscountValue, e.TaxRate, e.Notes, now(), quotationID); err != nil {
			return merry.Wrap(err)
		}
		prev.TaxRate = e.TaxRate

		existing := make(map[int64]quote.Item, len(prev.Items))
		for _, x := range prev.Items {
			existing[x.ID] = x
		}
		kept := make(map[int64]bool)
		for _, x := range e.Items {
			if x.ID == 0 {
				if _, err := insertItem(tx, prev, x.ItemInput); err != nil {
					return err
				}
				continue
			}
			old, ok := existing[x.ID]
			if !ok {
				return quote.ErrNotFound.Here().
					WithUserMessagef("item %d does not belong to quotation %s", x.ID, prev.Serial)
			}
			if kept[x.ID] {
				return quote.ErrInvalid.Here().WithUserMessagef("item %d is listed twice", x.ID)
			}
			kept[x.ID] = true
			if sameItem(quote.ItemInputOf(old), x.ItemInput) {
				old.Notes = x.Notes
				err = retaxItem(tx, old, e.TaxRate)
			} else {
				err = repriceItem(tx, x.ID, x.ItemInput, e.TaxRate)
			}
			if err != nil {
				return err
			}
		}
		for id := range existing {
			if kept[id] {
				continue
			}
			if _, err := tx.Exec(`DELETE FROM quote_item WHERE item_id = ?`, id); err != nil {
				return merry.Wrap(err)
			}
		}
		if _, err := recalcTotals(tx, quotationID); err != nil {
			return err
		}
		q, err = GetQuotation(tx, quotationID)
		return err
	})
	if err != nil {
		return quote.Quotation{}, err
	}
	log.Info("quotation edited", "serial", q.Serial, "items", len(q.Items), "grand_total", q.GrandTotal)
	return q, nil
}

func sameItem(a, b quote.ItemInput) bool {
	return a.ProductID == b.ProductID &&
		sameID(a.VariationID, b.VariationID) &&
		a.ColorText == b.ColorText &&
		sameDec(a.Width, b.Width) &&
		sameDec(a.Height, b.Height) &&
		a.Quantity == b.Quantity &&
		sameDec(a.UnitPriceOverride, b.UnitPriceOverride) &&
		a.DiscountType == b.DiscountType &&
		a.DiscountValue.Equal(b.DiscountValue)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameDec(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
