package data

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/stretchr/testify/require"
)

const legacySchema = `
CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, email TEXT, phone TEXT, address TEXT, created_at TEXT);
CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT, category TEXT, price REAL, currency TEXT, created_at TEXT);
CREATE TABLE quotations (id INTEGER PRIMARY KEY, customer_id INTEGER, total_amount REAL, final_amount REAL, notes TEXT,
                         created_at TEXT, updated_at TEXT);
CREATE TABLE quote_items (id INTEGER PRIMARY KEY, quotation_id INTEGER, product_id INTEGER, width REAL, height REAL,
                          quantity INTEGER, unit_price REAL, line_total REAL, created_at TEXT);
CREATE TABLE company_settings (id INTEGER PRIMARY KEY, company_name TEXT, phone TEXT, tax_rate REAL);

INSERT INTO customers VALUES (7, 'Sara', 'sara@example.com', '0551234567', 'Riyadh', '2023-06-01T10:00:00');
INSERT INTO products VALUES (3, 'Blackout', 'Curtains', 320, 'SAR', '2023-05-01 09:00:00');
INSERT INTO products VALUES (4, 'Rod', 'Hardware', 45.5, 'EUR', NULL);
INSERT INTO quotations VALUES (11, 7, 1691, 1691, 'old quote', '2023-06-02T12:30:00', '2023-06-02T12:30:00');
INSERT INTO quote_items VALUES (1, 11, 3, 2.5, 2, 1, 320, 1600, '2023-06-02T12:30:00');
INSERT INTO quote_items VALUES (2, 11, 4, 0, 0, 2, 45.5, NULL, '2023-06-02T12:30:00');
INSERT INTO company_settings VALUES (1, 'Adhlal', '0110000000', 0.15);`

const legacySerialsSchema = `
CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, created_at TEXT);
CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT, price REAL);
CREATE TABLE quotations (id INTEGER PRIMARY KEY, serial_number TEXT, customer_id INTEGER, created_at TEXT);
CREATE TABLE quote_items (id INTEGER PRIMARY KEY, quotation_id INTEGER, product_id INTEGER, quantity INTEGER,
                          unit_price REAL, line_total REAL);

INSERT INTO customers VALUES (1, 'Sara', '2023-01-01');
INSERT INTO products VALUES (1, 'Blackout', 100);
INSERT INTO quotations VALUES (1, NULL, 1, '2023-02-01');
INSERT INTO quotations VALUES (2, 'Q-2023-000001', 1, '2023-03-01');
INSERT INTO quotations VALUES (3, 'bad', 1, '2023-04-01');
INSERT INTO quotations VALUES (4, 'Q-2023-000001', 1, '2023-05-01');
INSERT INTO quotations VALUES (5, 'Q-2022-000007', 1, '2022-05-01');`

func newLegacyDB(t *testing.T) string {
	t.Helper()
	return newLegacyDBWith(t, legacySchema)
}

func newLegacyDBWith(t *testing.T, schema string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "app.db")
	db, err := openSqliteDBx(filename)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return filename
}

func TestImportLegacy(t *testing.T) {
	db := newTestDB(t)
	legacy := newLegacyDB(t)

	r, err := ImportLegacy(context.Background(), db, legacy)
	require.NoError(t, err)
	require.Equal(t, LegacyReport{Customers: 1, Products: 2, Quotations: 1, Items: 2, Settings: true}, r)

	c, err := GetCustomer(db, 7)
	require.NoError(t, err)
	require.Equal(t, quote.Individual, c.Type)
	require.Equal(t, 2023, c.CreatedAt.Year())

	rod, err := GetProduct(db, 4)
	require.NoError(t, err)
	require.Equal(t, quote.SAR, rod.Currency)
	require.Equal(t, quote.UnitArea, rod.UnitType)
	requireDec(t, "45.5", rod.BaseUnitPrice)

	q, err := GetQuotation(db, 11)
	require.NoError(t, err)
	require.Equal(t, "Q-2023-000001", q.Serial)
	require.Equal(t, quote.StatusDraft, q.Status)
	require.Len(t, q.Items, 2)
	requireDec(t, "5", q.Items[0].Area)
	require.False(t, q.Items[1].Width.Valid)
	requireDec(t, "91", q.Items[1].LineTotalExVAT)
	requireDec(t, "1691", q.SubtotalExVAT)
	requireDec(t, "253.65", q.VATAmount)
	requireDec(t, "1944.65", q.GrandTotal)

	s, err := GetSettings(db)
	require.NoError(t, err)
	require.Equal(t, "Adhlal", s.CompanyName)
	require.Equal(t, quote.DefaultCopyFormat, s.CopyFormat)

	_, err = ImportLegacy(context.Background(), db, legacy)
	require.True(t, merry.Is(err, quote.ErrInUse))
}

func TestImportLegacyMissingFile(t *testing.T) {
	db := newTestDB(t)
	_, err := ImportLegacy(context.Background(), db, filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
}

func TestImportLegacySerials(t *testing.T) {
	db := newTestDB(t)
	r, err := ImportLegacy(context.Background(), db, newLegacyDBWith(t, legacySerialsSchema))
	require.NoError(t, err)
	require.Equal(t, 5, r.Quotations)

	for id, serial := range map[int64]string{
		1: "Q-2023-000002",
		2: "Q-2023-000001",
		3: "Q-2023-000003",
		4: "Q-2023-000004",
		5: "Q-2022-000007",
	} {
		q, err := GetQuotation(db, id)
		require.NoError(t, err)
		require.Equal(t, serial, q.Serial, "quotation %d", id)
	}
}
