package data

import (
	"testing"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/stretchr/testify/require"
)

func TestProductCRUD(t *testing.T) {
	db := newTestDB(t)
	p := mustProduct(t, db, "Blackout", quote.UnitArea, "320")

	_, err := AddVariation(db, p.ID, quote.VariationInput{Name: "Ivory", UnitPriceOverride: decp("300")})
	require.NoError(t, err)
	_, err = AddVariation(db, p.ID, quote.VariationInput{Name: "Grey", SKU: "BO-GR"})
	require.NoError(t, err)

	got, err := GetProduct(db, p.ID)
	require.NoError(t, err)
	requireDec(t, "320", got.BaseUnitPrice)
	require.Equal(t, quote.SAR, got.Currency)
	require.Len(t, got.Variations, 2)
	require.Equal(t, "Grey", got.Variations[0].Name)
	require.False(t, got.Variations[0].UnitPriceOverride.Valid)
	require.True(t, got.Variations[1].UnitPriceOverride.Valid)
	requireDec(t, "300", got.Variations[1].UnitPriceOverride.Decimal)

	in := quote.ProductInputOf(got)
	in.Category = "Curtains"
	in.BaseUnitPrice = dec("335.50")
	got, err = UpdateProduct(db, p.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Curtains", got.Category)
	requireDec(t, "335.5", got.BaseUnitPrice)

	require.NoError(t, DeleteProduct(db, p.ID))
	xs, err := ListProducts(db)
	require.NoError(t, err)
	require.Empty(t, xs)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM product_variation`))
	require.Zero(t, n)
}

func TestSearchProducts(t *testing.T) {
	db := newTestDB(t)
	mustProduct(t, db, "Blackout", quote.UnitArea, "320")
	rod := mustProduct(t, db, "Rod", quote.UnitWidth, "45")
	_, err := UpdateProduct(db, rod.ID, quote.ProductInput{Name: "Rod", Category: "Hardware", UnitType: quote.UnitWidth,
		BaseUnitPrice: dec("45")})
	require.NoError(t, err)

	xs, err := SearchProducts(db, "hard")
	require.NoError(t, err)
	require.Len(t, xs, 1)
	require.Equal(t, "Rod", xs[0].Name)

	xs, err = SearchProducts(db, "")
	require.NoError(t, err)
	require.Len(t, xs, 2)

	p, ok, err := FindProductByName(db, "Blackout")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Blackout", p.Name)

	_, ok, err = FindProductByName(db, "Sheer")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProductLinks(t *testing.T) {
	db := newTestDB(t)
	a := mustProduct(t, db, "Blackout", quote.UnitArea, "320")
	b := mustProduct(t, db, "Rod", quote.UnitWidth, "45")

	link, err := AddLink(db, a.ID, b.ID, "accessory", "same colour")
	require.NoError(t, err)
	require.Equal(t, "Rod", link.LinkedName)

	again, err := AddLink(db, a.ID, b.ID, "other", "")
	require.NoError(t, err)
	require.Equal(t, link.ID, again.ID)
	require.Equal(t, "accessory", again.LinkType)

	_, err = AddLink(db, a.ID, a.ID, "", "")
	require.True(t, merry.Is(err, quote.ErrInvalid))

	_, err = AddLink(db, a.ID, b.ID+10, "", "")
	require.True(t, merry.Is(err, quote.ErrNotFound))

	xs, err := ListLinks(db, a.ID)
	require.NoError(t, err)
	require.Len(t, xs, 1)

	require.NoError(t, ClearLinks(db, a.ID))
	xs, err = ListLinks(db, a.ID)
	require.NoError(t, err)
	require.Empty(t, xs)
}

func TestDeleteProductInUse(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	p := mustProduct(t, db, "Blackout", quote.UnitArea, "320")
	q := mustQuotation(t, db, c.ID)
	_, err := AddItem(db, q.ID, quote.ItemInput{ProductID: p.ID, Width: decp("1"), Height: decp("1")})
	require.NoError(t, err)

	err = DeleteProduct(db, p.ID)
	require.True(t, merry.Is(err, quote.ErrInUse))

	_, err = GetProduct(db, p.ID)
	require.NoError(t, err)
}

func TestDeleteVariation(t *testing.T) {
	db := newTestDB(t)
	p := mustProduct(t, db, "Blackout", quote.UnitArea, "320")
	v, err := AddVariation(db, p.ID, quote.VariationInput{Name: "Ivory"})
	require.NoError(t, err)

	_, err = AddVariation(db, p.ID+1, quote.VariationInput{Name: "Grey"})
	require.True(t, merry.Is(err, quote.ErrNotFound))

	require.NoError(t, DeleteVariation(db, v.ID))
	require.True(t, merry.Is(DeleteVariation(db, v.ID), quote.ErrNotFound))
}
