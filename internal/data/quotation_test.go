package data

import (
	"context"
	"testing"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestQuotationSerials(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")

	setNow(t, time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC))
	require.Equal(t, "Q-2024-000001", mustQuotation(t, db, c.ID).Serial)
	require.Equal(t, "Q-2024-000002", mustQuotation(t, db, c.ID).Serial)

	setNow(t, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC))
	q := mustQuotation(t, db, c.ID)
	require.Equal(t, "Q-2025-000001", q.Serial)
	require.Equal(t, quote.StatusDraft, q.Status)
	requireDec(t, "0.15", q.TaxRate)
	require.Equal(t, "Sara", q.CustomerName)

	got, err := GetQuotationBySerial(db, "Q-2024-000002")
	require.NoError(t, err)
	require.Equal(t, 2024, got.CreatedAt.Year())

	_, err = GetQuotationBySerial(db, "Q-2024-000009")
	require.True(t, merry.Is(err, quote.ErrNotFound))
}

func TestCreateQuotationUsesSettingsTaxRate(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	s, err := GetSettings(db)
	require.NoError(t, err)
	in := quote.SettingsInputOf(s)
	in.DefaultTaxRate = dec("0.05")
	_, err = UpdateSettings(db, in)
	require.NoError(t, err)

	q := mustQuotation(t, db, c.ID)
	requireDec(t, "0.05", q.TaxRate)

	_, err = CreateQuotation(db, c.ID+1, "")
	require.True(t, merry.Is(err, quote.ErrNotFound))
}

func TestQuotationItemsAndTotals(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	blackout := mustProduct(t, db, "Blackout", quote.UnitArea, "320")
	rod := mustProduct(t, db, "Rod", quote.UnitWidth, "45")
	q := mustQuotation(t, db, c.ID)

	x1, err := AddItem(db, q.ID, quote.ItemInput{ProductID: blackout.ID, ColorText: "Grey", Width: decp("2.5"), Height: decp("2")})
	require.NoError(t, err)
	require.Equal(t, "Blackout", x1.ProductName)
	requireDec(t, "5", x1.Area)
	requireDec(t, "320", x1.UnitPrice)
	requireDec(t, "1600", x1.LineTotalExVAT)
	requireDec(t, "240", x1.VATAmount)
	requireDec(t, "1840", x1.LineTotalIncVAT)

	x2, err := AddItem(db, q.ID, quote.ItemInput{ProductID: rod.ID, Width: decp("3"), Quantity: 2,
		DiscountType: quote.DiscountFixed, DiscountValue: dec("20")})
	require.NoError(t, err)
	requireDec(t, "20", x2.DiscountAmount)
	requireDec(t, "250", x2.LineTotalExVAT)
	requireDec(t, "37.5", x2.VATAmount)

	q, err = GetQuotation(db, q.ID)
	require.NoError(t, err)
	require.Len(t, q.Items, 2)
	requireDec(t, "1850", q.SubtotalExVAT)
	requireDec(t, "20", q.ItemDiscounts)
	requireDec(t, "1850", q.DiscountedExVAT)
	requireDec(t, "277.5", q.VATAmount)
	requireDec(t, "2127.5", q.GrandTotal)

	sum := decimal.Zero
	for _, x := range q.Items {
		sum = sum.Add(x.LineTotalExVAT)
	}
	require.True(t, sum.Equal(q.SubtotalExVAT))

	tot, err := SetHeaderDiscount(db, q.ID, quote.DiscountPercent, dec("10"))
	require.NoError(t, err)
	requireDec(t, "185", tot.DiscountHeader)
	requireDec(t, "1665", tot.DiscountedExVAT)
	requireDec(t, "249.75", tot.VATAmount)
	requireDec(t, "1914.75", tot.GrandTotal)

	_, err = SetHeaderDiscount(db, q.ID, quote.DiscountPercent, dec("150"))
	require.True(t, merry.Is(err, quote.ErrInvalid))

	tot, err = SetTaxRate(db, q.ID, decimal.Zero)
	require.NoError(t, err)
	requireDec(t, "0", tot.VATAmount)
	requireDec(t, "1665", tot.GrandTotal)
	x1, err = GetItem(db, x1.ID)
	require.NoError(t, err)
	requireDec(t, "0", x1.VATAmount)
	requireDec(t, "1600", x1.LineTotalIncVAT)

	require.NoError(t, RemoveItem(db, x2.ID))
	tot, err = RecalculateTotals(db, q.ID)
	require.NoError(t, err)
	requireDec(t, "1600", tot.SubtotalExVAT)
	requireDec(t, "1440", tot.GrandTotal)

	require.True(t, merry.Is(RemoveItem(db, x2.ID), quote.ErrNotFound))
}

func TestItemPricePrecedence(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	p := mustProduct(t, db, "Blackout", quote.UnitArea, "320")
	v, err := AddVariation(db, p.ID, quote.VariationInput{Name: "Ivory", UnitPriceOverride: decp("300")})
	require.NoError(t, err)
	other := mustProduct(t, db, "Sheer", quote.UnitArea, "120")
	ov, err := AddVariation(db, other.ID, quote.VariationInput{Name: "White"})
	require.NoError(t, err)
	q := mustQuotation(t, db, c.ID)

	x, err := AddItem(db, q.ID, quote.ItemInput{ProductID: p.ID, VariationID: &v.ID, Width: decp("1"), Height: decp("1")})
	require.NoError(t, err)
	requireDec(t, "300", x.UnitPrice)
	require.Equal(t, "Ivory", x.Color())

	in := quote.ItemInputOf(x)
	in.UnitPriceOverride = decp("250")
	x, err = UpdateItem(db, x.ID, in)
	require.NoError(t, err)
	requireDec(t, "250", x.UnitPrice)
	require.True(t, x.PriceOverride.Valid)

	_, err = AddItem(db, q.ID, quote.ItemInput{ProductID: p.ID, VariationID: &ov.ID})
	require.True(t, merry.Is(err, quote.ErrInvalid))
}

func TestSearchQuotations(t *testing.T) {
	db := newTestDB(t)
	sara := mustCustomer(t, db, "Sara", "0551234567")
	omar := mustCustomer(t, db, "Omar", "0569876543")

	setNow(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	q1 := mustQuotation(t, db, sara.ID)
	setNow(t, time.Date(2024, 4, 5, 9, 0, 0, 0, time.UTC))
	q2 := mustQuotation(t, db, omar.ID)
	require.NoError(t, SetStatus(db, q2.ID, quote.StatusAccepted))

	xs, err := ListQuotations(db)
	require.NoError(t, err)
	require.Len(t, xs, 2)
	require.Equal(t, q2.ID, xs[0].ID)

	xs, err = SearchQuotations(db, QuotationFilter{Phone: "0551"})
	require.NoError(t, err)
	require.Len(t, xs, 1)
	require.Equal(t, q1.ID, xs[0].ID)

	xs, err = SearchQuotations(db, QuotationFilter{Status: quote.StatusAccepted})
	require.NoError(t, err)
	require.Len(t, xs, 1)
	require.Equal(t, q2.ID, xs[0].ID)

	xs, err = SearchQuotations(db, QuotationFilter{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, xs, 1)
	require.Equal(t, q1.ID, xs[0].ID)

	xs, err = SearchQuotations(db, QuotationFilter{Query: "Q-2024-000002"})
	require.NoError(t, err)
	require.Len(t, xs, 1)

	require.True(t, merry.Is(SetStatus(db, q1.ID, "archived"), quote.ErrInvalid))
}

func TestDeleteQuotationCascades(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	p := mustProduct(t, db, "Rod", quote.UnitPcs, "45")
	q := mustQuotation(t, db, c.ID)
	_, err := AddItem(db, q.ID, quote.ItemInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = AddPayment(db, q.ID, quote.PaymentInput{Date: time.Now(), Amount: dec("50")})
	require.NoError(t, err)
	_, err = CreateAssignment(db, quote.AssignmentInput{QuotationID: q.ID, Type: quote.Delivery,
		ScheduledDate: time.Now(), Location: "Riyadh"})
	require.NoError(t, err)

	require.NoError(t, DeleteQuotation(db, q.ID))
	for _, table := range []string{"quote_item", "payment", "assignment"} {
		var n int
		require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
		require.Zerof(t, n, "%s rows left", table)
	}
	require.NoError(t, DeleteCustomer(db, c.ID))
}

func TestItemCopyLines(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	p := mustProduct(t, db, "Blackout", quote.UnitArea, "320")
	q := mustQuotation(t, db, c.ID)
	_, err := AddItem(db, q.ID, quote.ItemInput{ProductID: p.ID, ColorText: "Grey", Width: decp("2.4"), Height: decp("2.8")})
	require.NoError(t, err)

	xs, err := ItemCopyLines(db, q.ID)
	require.NoError(t, err)
	require.Equal(t, []string{`"Blackout Grey 2.4 2.8"`}, xs)
}

func TestSetTaxRateKeepsStoredAmounts(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	p := mustProduct(t, db, "Blackout", quote.UnitArea, "100")
	q := mustQuotation(t, db, c.ID)
	x, err := AddItem(db, q.ID, quote.ItemInput{ProductID: p.ID, Width: decp("2"), Height: decp("3")})
	require.NoError(t, err)
	requireDec(t, "600", x.LineTotalExVAT)

	in := quote.ProductInputOf(p)
	in.UnitType = quote.UnitPcs
	_, err = UpdateProduct(db, p.ID, in)
	require.NoError(t, err)

	tot, err := SetTaxRate(db, q.ID, dec("0.05"))
	require.NoError(t, err)
	requireDec(t, "600", tot.SubtotalExVAT)
	requireDec(t, "30", tot.VATAmount)

	x, err = GetItem(db, x.ID)
	require.NoError(t, err)
	requireDec(t, "6", x.Area)
	requireDec(t, "100", x.UnitPrice)
	requireDec(t, "600", x.LineTotalExVAT)
	requireDec(t, "30", x.VATAmount)
	requireDec(t, "630", x.LineTotalIncVAT)
}

func TestSetTaxRateOnLegacyQuotation(t *testing.T) {
	db := newTestDB(t)
	_, err := ImportLegacy(context.Background(), db, newLegacyDB(t))
	require.NoError(t, err)

	before, err := GetQuotation(db, 11)
	require.NoError(t, err)

	for _, rate := range []string{"0.15", "0"} {
		tot, err := SetTaxRate(db, 11, dec(rate))
		require.NoError(t, err)
		requireDec(t, "1691", tot.SubtotalExVAT)

		q, err := GetQuotation(db, 11)
		require.NoError(t, err)
		require.Len(t, q.Items, len(before.Items))
		for i, x := range q.Items {
			requireDec(t, before.Items[i].LineTotalExVAT.String(), x.LineTotalExVAT)
			requireDec(t, before.Items[i].DiscountAmount.String(), x.DiscountAmount)
			requireDec(t, x.LineTotalExVAT.Mul(dec(rate)).Round(2).String(), x.VATAmount)
		}
	}
	q, err := GetQuotation(db, 11)
	require.NoError(t, err)
	requireDec(t, "91", q.Items[1].LineTotalExVAT)
	requireDec(t, "0", q.VATAmount)
	requireDec(t, "1691", q.GrandTotal)
}
