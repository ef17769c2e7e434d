package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

type CustomerInput struct {
	Type           CustomerType `yaml:"type" validate:"oneof=individual company"`
	Name           string       `yaml:"name" validate:"required,max=200"`
	Email          string       `yaml:"email" validate:"omitempty,email,max=100"`
	Phone          string       `yaml:"phone" validate:"max=20"`
	Address        string       `yaml:"address"`
	CompanyName    string       `yaml:"company_name" validate:"required_if=Type company,max=200"`
	CompanyVAT     string       `yaml:"company_vat" validate:"max=50"`
	CompanyAddress string       `yaml:"company_address"`
}

func (x *CustomerInput) Validate() error {
	if x.Type == "" {
		x.Type = Individual
	}
	x.Name = strings.TrimSpace(x.Name)
	return check(x)
}

func CustomerInputOf(c Customer) CustomerInput {
	return CustomerInput{
		Type:           c.Type,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		CompanyName:    c.CompanyName,
		CompanyVAT:     c.CompanyVAT,
		CompanyAddress: c.CompanyAddress,
	}
}

type ProductInput struct {
	Name          string          `yaml:"name" validate:"required,max=200"`
	Category      string          `yaml:"category" validate:"max=100"`
	UnitType      UnitType        `yaml:"unit_type" validate:"oneof=area width length pcs"`
	BaseUnitPrice decimal.Decimal `yaml:"base_unit_price"`
	Currency      Currency        `yaml:"currency" validate:"oneof=SAR USD"`
	Notes         string          `yaml:"notes"`
}

func (x *ProductInput) Validate() error {
	if x.UnitType == "" {
		x.UnitType = UnitArea
	}
	if x.Currency == "" {
		x.Currency = SAR
	}
	x.Name = strings.TrimSpace(x.Name)
	if err := check(x); err != nil {
		return err
	}
	return notNegative("base_unit_price", x.BaseUnitPrice)
}

func ProductInputOf(p Product) ProductInput {
	return ProductInput{
		Name:          p.Name,
		Category:      p.Category,
		UnitType:      p.UnitType,
		BaseUnitPrice: p.BaseUnitPrice,
		Currency:      p.Currency,
		Notes:         p.Notes,
	}
}

type VariationInput struct {
	Name              string           `yaml:"name" validate:"required,max=100"`
	UnitPriceOverride *decimal.Decimal `yaml:"unit_price_override"`
	SKU               string           `yaml:"sku" validate:"max=50"`
	ImagePath         string           `yaml:"image_path" validate:"max=500"`
}

func (x *VariationInput) Validate() error {
	x.Name = strings.TrimSpace(x.Name)
	if err := check(x); err != nil {
		return err
	}
	if x.UnitPriceOverride != nil {
		return notNegative("unit_price_override", *x.UnitPriceOverride)
	}
	return nil
}

type ItemInput struct {
	ProductID         int64            `yaml:"product_id" validate:"gt=0"`
	VariationID       *int64           `yaml:"variation_id"`
	ColorText         string           `yaml:"color" validate:"max=100"`
	Width             *decimal.Decimal `yaml:"width"`
	Height            *decimal.Decimal `yaml:"height"`
	Quantity          int              `yaml:"quantity" validate:"gte=0"`
	UnitPriceOverride *decimal.Decimal `yaml:"unit_price_override"`
	DiscountType      DiscountType     `yaml:"discount_type" validate:"oneof=percent fixed"`
	DiscountValue     decimal.Decimal  `yaml:"discount_value"`
	Notes             string           `yaml:"notes"`
}

func (x *ItemInput) Validate() error {
	if x.Quantity == 0 {
		x.Quantity = 1
	}
	if x.DiscountType == "" {
		x.DiscountType = DiscountFixed
	}
	if err := check(x); err != nil {
		return err
	}
	for name, v := range map[string]*decimal.Decimal{
		"width":               x.Width,
		"height":              x.Height,
		"unit_price_override": x.UnitPriceOverride,
	} {
		if v == nil {
			continue
		}
		if err := notNegative(name, *v); err != nil {
			return err
		}
	}
	return checkDiscount(x.DiscountType, x.DiscountValue)
}

func ItemInputOf(x Item) ItemInput {
	r := ItemInput{
		ProductID:         x.ProductID,
		ColorText:         x.ColorText,
		Width:             DecPtr(x.Width),
		Height:            DecPtr(x.Height),
		Quantity:          x.Quantity,
		UnitPriceOverride: DecPtr(x.PriceOverride),
		DiscountType:      x.DiscountType,
		DiscountValue:     x.DiscountValue,
		Notes:             x.Notes,
	}
	if x.VariationID.Valid {
		id := x.VariationID.Int64
		r.VariationID = &id
	}
	return r
}

type PaymentInput struct {
	Date      time.Time       `yaml:"date"`
	Amount    decimal.Decimal `yaml:"amount"`
	Method    PaymentMethod   `yaml:"method" validate:"oneof=cash card transfer other"`
	Reference string          `yaml:"reference" validate:"max=100"`
	Notes     string          `yaml:"notes"`
}

func (x *PaymentInput) Validate() error {
	if x.Method == "" {
		x.Method = PayCash
	}
	if err := check(x); err != nil {
		return err
	}
	if x.Date.IsZero() {
		return invalid("date: required")
	}
	if !x.Amount.IsPositive() {
		return invalid("amount: must be positive")
	}
	return nil
}

type EmployeeInput struct {
	FullName string `yaml:"full_name" validate:"required,max=200"`
	Phone    string `yaml:"phone" validate:"max=20"`
	Role     string `yaml:"role" validate:"max=100"`
}

func (x *EmployeeInput) Validate() error {
	x.FullName = strings.TrimSpace(x.FullName)
	return check(x)
}

type AssignmentInput struct {
	QuotationID   int64          `yaml:"quotation_id" validate:"gt=0"`
	Type          AssignmentType `yaml:"type" validate:"oneof=delivery installation"`
	ScheduledDate time.Time      `yaml:"scheduled_date"`
	TimeStart     string         `yaml:"time_start" validate:"omitempty,datetime=15:04"`
	TimeEnd       string         `yaml:"time_end" validate:"omitempty,datetime=15:04"`
	Location      string         `yaml:"location" validate:"required"`
	EmployeeID    *int64         `yaml:"employee_id"`
	Notes         string         `yaml:"notes"`
}

func (x *AssignmentInput) Validate() error {
	if err := check(x); err != nil {
		return err
	}
	if x.ScheduledDate.IsZero() {
		return invalid("scheduled_date: required")
	}
	if x.TimeStart != "" && x.TimeEnd != "" && x.TimeEnd < x.TimeStart {
		return invalid("time_end: before time_start")
	}
	return nil
}

type SettingsInput struct {
	CompanyName     string          `yaml:"company_name" validate:"max=200"`
	LogoPath        string          `yaml:"logo_path" validate:"max=500"`
	Address         string          `yaml:"address"`
	Phone           string          `yaml:"phone" validate:"max=20"`
	Email           string          `yaml:"email" validate:"omitempty,email,max=100"`
	Website         string          `yaml:"website" validate:"max=200"`
	DefaultCurrency Currency        `yaml:"default_currency" validate:"oneof=SAR USD"`
	DefaultTaxRate  decimal.Decimal `yaml:"default_tax_rate"`
	CopyFormat      string          `yaml:"copy_format" validate:"max=200"`
}

func (x *SettingsInput) Validate() error {
	if err := check(x); err != nil {
		return err
	}
	return CheckTaxRate(x.DefaultTaxRate)
}

func SettingsInputOf(s Settings) SettingsInput {
	return SettingsInput{
		CompanyName:     s.CompanyName,
		LogoPath:        s.LogoPath,
		Address:         s.Address,
		Phone:           s.Phone,
		Email:           s.Email,
		Website:         s.Website,
		DefaultCurrency: s.DefaultCurrency,
		DefaultTaxRate:  s.DefaultTaxRate,
		CopyFormat:      s.CopyFormat,
	}
}

// CheckTaxRate accepts fractions between 0 and 1 inclusive.
func CheckTaxRate(x decimal.Decimal) error {
	if x.IsNegative() || x.GreaterThan(decimal.NewFromInt(1)) {
		return invalid(fmt.Sprintf("tax rate %s: must be between 0 and 1", x))
	}
	return nil
}

func checkDiscount(typ DiscountType, value decimal.Decimal) error {
	if !valid(typ, DiscountTypes) {
		return invalid(fmt.Sprintf("discount type %q", typ))
	}
	if err := notNegative("discount_value", value); err != nil {
		return err
	}
	if typ == DiscountPercent && value.GreaterThan(hundred) {
		return invalid("discount_value: percent above 100")
	}
	return nil
}

// CheckDiscount validates a header or line discount.
func CheckDiscount(typ DiscountType, value decimal.Decimal) error {
	return checkDiscount(typ, value)
}

func DecPtr(x decimal.NullDecimal) *decimal.Decimal {
	if !x.Valid {
		return nil
	}
	d := x.Decimal
	return &d
}

func NullDec(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*p)
}

func notNegative(name string, x decimal.Decimal) error {
	if x.IsNegative() {
		return invalid(name + ": must not be negative")
	}
	return nil
}

func invalid(msg string) error {
	return ErrInvalid.Append(msg).WithUserMessage(msg)
}

func check(x interface{}) error {
	err := validate.Struct(x)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return merry.Wrap(err)
	}
	var xs []string
	for _, e := range verrs {
		s := strings.ToLower(e.Field()) + ": " + e.Tag()
		if e.Param() != "" {
			s += "=" + e.Param()
		}
		xs = append(xs, s)
	}
	return invalid(strings.Join(xs, "; "))
}
