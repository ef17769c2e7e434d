package data

import (
	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type SeedReport struct {
	Customers  int
	Products   int
	Variations int
	Links      int
}

type seedProduct struct {
	quote.ProductInput
	variations []quote.VariationInput
}

func seedPrice(s string) *decimal.Decimal {
	x := decimal.RequireFromString(s)
	return &x
}

var seedCustomers = []quote.CustomerInput{
	{Type: quote.Individual, Name: "Ahmed Mohammed", Phone: "0501234567", Email: "ahmed@example.com"},
	{Type: quote.Company, Name: "Al Noor Decor", Phone: "0119876543", Email: "info@alnoor.example.com",
		CompanyName: "Al Noor Decor", CompanyVAT: "300123456789003"},
	{Type: quote.Individual, Name: "Fatima Ahmed", Phone: "0551234567", Email: "fatima@example.com"},
}

var seedProducts = []seedProduct{
	{
		quote.ProductInput{Name: "Silk curtains", Category: "Curtains", UnitType: quote.UnitArea,
			BaseUnitPrice: decimal.RequireFromString("320")},
		[]quote.VariationInput{
			{Name: "Red", UnitPriceOverride: seedPrice("350")},
			{Name: "Blue"},
			{Name: "Gold", UnitPriceOverride: seedPrice("380")},
			{Name: "White"},
		},
	},
	{
		quote.ProductInput{Name: "Cotton curtains", Category: "Curtains", UnitType: quote.UnitArea,
			BaseUnitPrice: decimal.RequireFromString("150")},
		nil,
	},
	{
		quote.ProductInput{Name: "Blackout curtains", Category: "Curtains", UnitType: quote.UnitArea,
			BaseUnitPrice: decimal.RequireFromString("280")},
		[]quote.VariationInput{
			{Name: "Grey"},
			{Name: "Beige"},
			{Name: "Navy", UnitPriceOverride: seedPrice("300")},
		},
	},
	{
		quote.ProductInput{Name: "Metal curtain rod", Category: "Accessories", UnitType: quote.UnitLength,
			BaseUnitPrice: decimal.RequireFromString("45")},
		nil,
	},
	{
		quote.ProductInput{Name: "Curtain rings", Category: "Accessories", UnitType: quote.UnitPcs,
			BaseUnitPrice: decimal.RequireFromString("5")},
		nil,
	},
	{
		quote.ProductInput{Name: "Roller blind", Category: "Blinds", UnitType: quote.UnitArea,
			BaseUnitPrice: decimal.RequireFromString("200")},
		nil,
	},
}

// Seed fills an empty database with sample customers and a small catalog.
// The first curtain product is linked to the accessories.
func Seed(db *sqlx.DB) (SeedReport, error) {
	var r SeedReport
	var n int
	if err := db.Get(&n, `SELECT (SELECT COUNT(*) FROM customer) + (SELECT COUNT(*) FROM product)`); err != nil {
		return r, merry.Wrap(err)
	}
	if n > 0 {
		return r, quote.ErrInUse.Here().WithUserMessage("database is not empty, sample data not added")
	}
	err := withTx(db, func(tx *sqlx.Tx) error {
		for _, in := range seedCustomers {
			if _, err := createCustomer(tx, in); err != nil {
				return err
			}
			r.Customers++
		}
		var curtain int64
		var accessories []int64
		for _, x := range seedProducts {
			in := x.ProductInput
			if err := in.Validate(); err != nil {
				return err
			}
			p, err := createProduct(tx, in)
			if err != nil {
				return err
			}
			r.Products++
			for _, v := range x.variations {
				if err := v.Validate(); err != nil {
					return err
				}
				if _, err := addVariation(tx, p.ID, v); err != nil {
					return err
				}
				r.Variations++
			}
			switch {
			case p.Category == "Accessories":
				accessories = append(accessories, p.ID)
			case curtain == 0:
				curtain = p.ID
			}
		}
		for _, id := range accessories {
			if _, err := tx.Exec(`
INSERT INTO product_link (product_id, linked_product_id, link_type, note) VALUES (?, ?, 'accessory', '')`,
				curtain, id); err != nil {
				return merry.Wrap(err)
			}
			r.Links++
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}
	log.Info("sample data added", "customers", r.Customers, "products", r.Products)
	return r, nil
}
