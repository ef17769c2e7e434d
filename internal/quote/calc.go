package quote

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Area is width*height in square metres rounded to 3 decimal places.
func Area(width, height decimal.Decimal) decimal.Decimal {
	if width.IsZero() || height.IsZero() {
		return decimal.Zero
	}
	return width.Mul(height).Round(3)
}

func TotalArea(area decimal.Decimal, qty int) decimal.Decimal {
	if area.IsZero() || qty == 0 {
		return decimal.Zero
	}
	return area.Mul(decimal.NewFromInt(int64(qty))).Round(3)
}

// BaseQty is the measure a line is priced by.
func BaseQty(unit UnitType, width, height, totalArea decimal.Decimal, qty int) decimal.Decimal {
	q := decimal.NewFromInt(int64(qty))
	switch unit {
	case UnitArea:
		return totalArea
	case UnitWidth:
		return width.Mul(q)
	case UnitLength:
		return height.Mul(q)
	case UnitPcs:
		return q
	}
	return decimal.Zero
}

// EffectiveUnitPrice picks an explicit override, then the variation price, then the base price.
func EffectiveUnitPrice(base decimal.Decimal, variation, override decimal.NullDecimal) decimal.Decimal {
	if override.Valid {
		return override.Decimal
	}
	if variation.Valid {
		return variation.Decimal
	}
	return base
}

// ApplyDiscount returns amount less the discount, never below zero.
func ApplyDiscount(amount decimal.Decimal, typ DiscountType, value decimal.Decimal) decimal.Decimal {
	if value.IsZero() {
		return amount
	}
	var r decimal.Decimal
	if typ == DiscountPercent {
		r = amount.Sub(amount.Mul(value).Div(hundred))
	} else {
		r = amount.Sub(value)
	}
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

type LineInput struct {
	Width, Height     decimal.Decimal
	Quantity          int
	UnitType          UnitType
	BaseUnitPrice     decimal.Decimal
	VariationPrice    decimal.NullDecimal
	UnitPriceOverride decimal.NullDecimal
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	TaxRate           decimal.Decimal
}

type Line struct {
	Area            decimal.Decimal
	TotalArea       decimal.Decimal
	BaseQty         decimal.Decimal
	UnitPrice       decimal.Decimal
	LineBase        decimal.Decimal
	DiscountAmount  decimal.Decimal
	LineTotalExVAT  decimal.Decimal
	VATAmount       decimal.Decimal
	LineTotalIncVAT decimal.Decimal
}

func LineTotals(in LineInput) Line {
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}
	var x Line
	x.Area = Area(in.Width, in.Height)
	x.TotalArea = TotalArea(x.Area, qty)
	x.BaseQty = BaseQty(in.UnitType, in.Width, in.Height, x.TotalArea, qty)
	x.UnitPrice = EffectiveUnitPrice(in.BaseUnitPrice, in.VariationPrice, in.UnitPriceOverride)
	x.LineBase = x.BaseQty.Mul(x.UnitPrice)

	exVAT := ApplyDiscount(x.LineBase, in.DiscountType, in.DiscountValue)
	x.DiscountAmount = x.LineBase.Sub(exVAT).Round(2)
	x.LineTotalExVAT = exVAT.Round(2)
	x.VATAmount = x.LineTotalExVAT.Mul(in.TaxRate).Round(2)
	x.LineTotalIncVAT = x.LineTotalExVAT.Add(x.VATAmount)
	return x
}

// QuotationTotals sums the lines and applies the header discount and VAT.
func QuotationTotals(lines []Line, typ DiscountType, value, taxRate decimal.Decimal) Totals {
	subtotal, itemDiscounts := decimal.Zero, decimal.Zero
	for _, x := range lines {
		subtotal = subtotal.Add(x.LineTotalExVAT)
		itemDiscounts = itemDiscounts.Add(x.DiscountAmount)
	}
	var discount decimal.Decimal
	if typ == DiscountPercent {
		discount = subtotal.Mul(value).Div(hundred)
	} else {
		discount = value
	}
	discounted := subtotal.Sub(discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	discounted = discounted.Round(2)
	vat := discounted.Mul(taxRate).Round(2)
	return Totals{
		SubtotalExVAT:   subtotal.Round(2),
		ItemDiscounts:   itemDiscounts.Round(2),
		DiscountHeader:  discount.Round(2),
		DiscountedExVAT: discounted,
		VATAmount:       vat,
		GrandTotal:      discounted.Add(vat),
	}
}

// ItemLine rebuilds the pricing line of a stored item.
func ItemLine(x Item) Line {
	return Line{
		Area:            x.Area,
		TotalArea:       x.TotalArea,
		UnitPrice:       x.UnitPrice,
		DiscountAmount:  x.DiscountAmount,
		LineTotalExVAT:  x.LineTotalExVAT,
		VATAmount:       x.VATAmount,
		LineTotalIncVAT: x.LineTotalIncVAT,
	}
}
