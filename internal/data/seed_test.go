package data

import (
	"testing"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	db := newTestDB(t)

	r, err := Seed(db)
	require.NoError(t, err)
	require.Equal(t, SeedReport{Customers: 3, Products: 6, Variations: 7, Links: 2}, r)

	products, err := SearchProducts(db, "silk")
	require.NoError(t, err)
	require.Len(t, products, 1)
	silk, err := GetProduct(db, products[0].ID)
	require.NoError(t, err)
	require.Len(t, silk.Variations, 4)
	require.Len(t, silk.Links, 2)
	require.Equal(t, quote.SAR, silk.Currency)

	customers, err := SearchCustomers(db, "Al Noor", "")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.Equal(t, quote.Company, customers[0].Type)

	_, err = Seed(db)
	require.True(t, merry.Is(err, quote.ErrInUse))
}
