package quote

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestAreaRoundsToThreePlaces(t *testing.T) {
	requireDec(t, "2.469", Area(d("1.2345"), d("2")))
	requireDec(t, "0", Area(d("0"), d("2")))
	requireDec(t, "0", Area(d("1.5"), decimal.Zero))
	requireDec(t, "0.001", Area(d("0.0333"), d("0.0333")))
}

func TestTotalArea(t *testing.T) {
	requireDec(t, "7.407", TotalArea(d("2.469"), 3))
	requireDec(t, "0", TotalArea(d("2.469"), 0))
}

func TestBaseQtyByUnitType(t *testing.T) {
	w, h := d("2"), d("3")
	requireDec(t, "12", BaseQty(UnitArea, w, h, d("12"), 2))
	requireDec(t, "4", BaseQty(UnitWidth, w, h, d("12"), 2))
	requireDec(t, "6", BaseQty(UnitLength, w, h, d("12"), 2))
	requireDec(t, "2", BaseQty(UnitPcs, w, h, d("12"), 2))
	requireDec(t, "0", BaseQty(UnitType("bogus"), w, h, d("12"), 2))
}

func TestEffectiveUnitPrice(t *testing.T) {
	base := d("100")
	variation := decimal.NewNullDecimal(d("120"))
	override := decimal.NewNullDecimal(d("90"))

	requireDec(t, "100", EffectiveUnitPrice(base, decimal.NullDecimal{}, decimal.NullDecimal{}))
	requireDec(t, "120", EffectiveUnitPrice(base, variation, decimal.NullDecimal{}))
	requireDec(t, "90", EffectiveUnitPrice(base, variation, override))
}

func TestApplyDiscount(t *testing.T) {
	requireDec(t, "90", ApplyDiscount(d("100"), DiscountPercent, d("10")))
	requireDec(t, "75", ApplyDiscount(d("100"), DiscountFixed, d("25")))
	requireDec(t, "100", ApplyDiscount(d("100"), DiscountFixed, decimal.Zero))
	requireDec(t, "0", ApplyDiscount(d("100"), DiscountFixed, d("250")))
}

func TestLineTotalsAreaPricedWithDiscount(t *testing.T) {
	x := LineTotals(LineInput{
		Width:         d("2"),
		Height:        d("3"),
		Quantity:      2,
		UnitType:      UnitArea,
		BaseUnitPrice: d("150"),
		DiscountType:  DiscountPercent,
		DiscountValue: d("10"),
		TaxRate:       d("0.15"),
	})
	requireDec(t, "6", x.Area)
	requireDec(t, "12", x.TotalArea)
	requireDec(t, "12", x.BaseQty)
	requireDec(t, "1800", x.LineBase)
	requireDec(t, "180", x.DiscountAmount)
	requireDec(t, "1620", x.LineTotalExVAT)
	requireDec(t, "243", x.VATAmount)
	requireDec(t, "1863", x.LineTotalIncVAT)
}

func TestLineTotalsZeroQuantityCountsAsOne(t *testing.T) {
	x := LineTotals(LineInput{
		Quantity:      0,
		UnitType:      UnitPcs,
		BaseUnitPrice: d("45.50"),
		DiscountType:  DiscountFixed,
		TaxRate:       d("0.15"),
	})
	requireDec(t, "1", x.BaseQty)
	requireDec(t, "45.5", x.LineTotalExVAT)
	requireDec(t, "6.83", x.VATAmount)
	requireDec(t, "52.33", x.LineTotalIncVAT)
}

func TestQuotationTotalEqualsSumOfLines(t *testing.T) {
	var lines []Line
	sum := decimal.Zero
	for _, w := range []string{"1.1", "2.35", "0.8"} {
		x := LineTotals(LineInput{
			Width:         d(w),
			Height:        d("2.6"),
			Quantity:      1,
			UnitType:      UnitArea,
			BaseUnitPrice: d("99.99"),
			DiscountType:  DiscountFixed,
			TaxRate:       d("0.15"),
		})
		lines = append(lines, x)
		sum = sum.Add(x.LineTotalExVAT)
	}
	totals := QuotationTotals(lines, DiscountFixed, decimal.Zero, d("0.15"))
	require.True(t, totals.SubtotalExVAT.Equal(sum))
	require.True(t, totals.DiscountedExVAT.Equal(sum))
	require.True(t, totals.GrandTotal.Equal(totals.DiscountedExVAT.Add(totals.VATAmount)))
}

func TestQuotationTotalsHeaderDiscount(t *testing.T) {
	lines := []Line{
		{LineTotalExVAT: d("1000"), DiscountAmount: d("50")},
		{LineTotalExVAT: d("500")},
	}

	x := QuotationTotals(lines, DiscountPercent, d("10"), d("0.15"))
	requireDec(t, "1500", x.SubtotalExVAT)
	requireDec(t, "50", x.ItemDiscounts)
	requireDec(t, "150", x.DiscountHeader)
	requireDec(t, "1350", x.DiscountedExVAT)
	requireDec(t, "202.5", x.VATAmount)
	requireDec(t, "1552.5", x.GrandTotal)

	x = QuotationTotals(lines, DiscountFixed, d("2000"), d("0.15"))
	requireDec(t, "0", x.DiscountedExVAT)
	requireDec(t, "0", x.GrandTotal)
}

func TestQuotationTotalsEmpty(t *testing.T) {
	x := QuotationTotals(nil, DiscountFixed, decimal.Zero, DefaultTaxRate)
	assert.True(t, x.GrandTotal.IsZero())
	assert.True(t, x.SubtotalExVAT.IsZero())
}
