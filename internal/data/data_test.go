package data

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "curtains.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func setNow(t *testing.T, tm time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return tm }
	t.Cleanup(func() { nowFunc = prev })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func mustCustomer(t *testing.T, db *sqlx.DB, name, phone string) quote.Customer {
	t.Helper()
	c, err := CreateCustomer(db, quote.CustomerInput{Name: name, Phone: phone})
	require.NoError(t, err)
	return c
}

func mustProduct(t *testing.T, db *sqlx.DB, name string, unit quote.UnitType, price string) quote.Product {
	t.Helper()
	p, err := CreateProduct(db, quote.ProductInput{Name: name, UnitType: unit, BaseUnitPrice: dec(price)})
	require.NoError(t, err)
	return p
}

func mustQuotation(t *testing.T, db *sqlx.DB, customerID int64) quote.Quotation {
	t.Helper()
	q, err := CreateQuotation(db, customerID, "")
	require.NoError(t, err)
	return q
}

func tableExists(t *testing.T, db *sqlx.DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name))
	return n == 1
}
