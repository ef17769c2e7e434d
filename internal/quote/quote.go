package quote

import (
	"database/sql"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	Individual CustomerType = "individual"
	Company    CustomerType = "company"
)

type UnitType string

const (
	UnitArea   UnitType = "area"
	UnitWidth  UnitType = "width"
	UnitLength UnitType = "length"
	UnitPcs    UnitType = "pcs"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

type Currency string

const (
	SAR Currency = "SAR"
	USD Currency = "USD"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusLost     Status = "lost"
)

type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayCard     PaymentMethod = "card"
	PayTransfer PaymentMethod = "transfer"
	PayOther    PaymentMethod = "other"
)

type AssignmentType string

const (
	Delivery     AssignmentType = "delivery"
	Installation AssignmentType = "installation"
)

type AssignmentStatus string

const (
	Planned    AssignmentStatus = "planned"
	InProgress AssignmentStatus = "in_progress"
	Done       AssignmentStatus = "done"
	Cancelled  AssignmentStatus = "cancelled"
)

var (
	CustomerTypes      = []CustomerType{Individual, Company}
	UnitTypes          = []UnitType{UnitArea, UnitWidth, UnitLength, UnitPcs}
	DiscountTypes      = []DiscountType{DiscountPercent, DiscountFixed}
	Currencies         = []Currency{SAR, USD}
	Statuses           = []Status{StatusDraft, StatusSent, StatusAccepted, StatusLost}
	PaymentMethods     = []PaymentMethod{PayCash, PayCard, PayTransfer, PayOther}
	AssignmentTypes    = []AssignmentType{Delivery, Installation}
	AssignmentStatuses = []AssignmentStatus{Planned, InProgress, Done, Cancelled}
)

func ParseCustomerType(s string) (CustomerType, error) {
	return parseEnum(s, "customer type", CustomerTypes)
}

func ParseUnitType(s string) (UnitType, error) {
	return parseEnum(s, "unit type", UnitTypes)
}

func ParseDiscountType(s string) (DiscountType, error) {
	return parseEnum(s, "discount type", DiscountTypes)
}

func ParseCurrency(s string) (Currency, error) {
	return parseEnum(s, "currency", Currencies)
}

func ParseStatus(s string) (Status, error) {
	return parseEnum(s, "quotation status", Statuses)
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	return parseEnum(s, "payment method", PaymentMethods)
}

func ParseAssignmentType(s string) (AssignmentType, error) {
	return parseEnum(s, "assignment type", AssignmentTypes)
}

func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	return parseEnum(s, "assignment status", AssignmentStatuses)
}

func parseEnum[T ~string](s, what string, xs []T) (T, error) {
	s = strings.TrimSpace(s)
	for _, x := range xs {
		if strings.EqualFold(s, string(x)) {
			return x, nil
		}
	}
	var zero T
	return zero, ErrInvalid.Appendf("%s %q", what, s).
		WithUserMessagef("unknown %s: %q", what, s)
}

func valid[T ~string](x T, xs []T) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}

var (
	ErrNotFound = merry.New("not found")
	ErrInUse    = merry.New("record is in use")
	ErrInvalid  = merry.New("invalid input")
)

type Customer struct {
	ID             int64        `db:"customer_id"`
	Type           CustomerType `db:"type"`
	Name           string       `db:"name"`
	Email          string       `db:"email"`
	Phone          string       `db:"phone"`
	Address        string       `db:"address"`
	CompanyName    string       `db:"company_name"`
	CompanyVAT     string       `db:"company_vat"`
	CompanyAddress string       `db:"company_address"`
	CreatedAt      time.Time    `db:"created_at"`
}

// DisplayName prefers the company name for company customers.
func (c Customer) DisplayName() string {
	if c.Type == Company && c.CompanyName != "" {
		return c.CompanyName
	}
	return c.Name
}

type Product struct {
	ID            int64           `db:"product_id"`
	Name          string          `db:"name"`
	Category      string          `db:"category"`
	UnitType      UnitType        `db:"unit_type"`
	BaseUnitPrice decimal.Decimal `db:"base_unit_price"`
	Currency      Currency        `db:"currency"`
	Notes         string          `db:"notes"`
	CreatedAt     time.Time       `db:"created_at"`

	Variations []Variation   `db:"-"`
	Links      []ProductLink `db:"-"`
}

// Variation is a colour or size variant of a product.
type Variation struct {
	ID                int64               `db:"variation_id"`
	ProductID         int64               `db:"product_id"`
	Name              string              `db:"name"`
	UnitPriceOverride decimal.NullDecimal `db:"unit_price_override"`
	SKU               string              `db:"sku"`
	ImagePath         string              `db:"image_path"`
	CreatedAt         time.Time           `db:"created_at"`
}

type ProductLink struct {
	ID              int64  `db:"link_id"`
	ProductID       int64  `db:"product_id"`
	LinkedProductID int64  `db:"linked_product_id"`
	LinkType        string `db:"link_type"`
	Note            string `db:"note"`
	LinkedName      string `db:"linked_name"`
}

// Totals are the header amounts of a quotation, stored with the row.
type Totals struct {
	SubtotalExVAT   decimal.Decimal `db:"subtotal_ex_vat"`
	ItemDiscounts   decimal.Decimal `db:"item_discounts"`
	DiscountHeader  decimal.Decimal `db:"discount_header"`
	DiscountedExVAT decimal.Decimal `db:"discounted_ex_vat"`
	VATAmount       decimal.Decimal `db:"vat_amount"`
	GrandTotal      decimal.Decimal `db:"grand_total"`
}

type Quotation struct {
	ID                  int64           `db:"quotation_id"`
	Serial              string          `db:"serial_number"`
	CustomerID          int64           `db:"customer_id"`
	CustomerName        string          `db:"customer_name"`
	Status              Status          `db:"status"`
	HeaderDiscountType  DiscountType    `db:"header_discount_type"`
	HeaderDiscountValue decimal.Decimal `db:"header_discount_value"`
	TaxRate             decimal.Decimal `db:"tax_rate"`
	Totals
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Items []Item `db:"-"`
}

type Item struct {
	ID              int64               `db:"item_id"`
	QuotationID     int64               `db:"quotation_id"`
	ProductID       int64               `db:"product_id"`
	ProductName     string              `db:"product_name"`
	UnitType        UnitType            `db:"unit_type"`
	VariationID     sql.NullInt64       `db:"variation_id"`
	VariationName   string              `db:"variation_name"`
	ColorText       string              `db:"color_text"`
	Width           decimal.NullDecimal `db:"width"`
	Height          decimal.NullDecimal `db:"height"`
	Area            decimal.Decimal     `db:"area"`
	Quantity        int                 `db:"quantity"`
	TotalArea       decimal.Decimal     `db:"total_area"`
	UnitPrice       decimal.Decimal     `db:"unit_price"`
	PriceOverride   decimal.NullDecimal `db:"unit_price_override"`
	DiscountType    DiscountType        `db:"discount_type"`
	DiscountValue   decimal.Decimal     `db:"discount_value"`
	DiscountAmount  decimal.Decimal     `db:"discount_amount"`
	LineTotalExVAT  decimal.Decimal     `db:"line_total_ex_vat"`
	VATAmount       decimal.Decimal     `db:"vat_amount"`
	LineTotalIncVAT decimal.Decimal     `db:"line_total_inc_vat"`
	Notes           string              `db:"notes"`
	CreatedAt       time.Time           `db:"created_at"`
}

// Color is the variation name, or the free text colour when no variation was chosen.
func (x Item) Color() string {
	if x.VariationName != "" {
		return x.VariationName
	}
	return x.ColorText
}

type Payment struct {
	ID          int64           `db:"payment_id"`
	QuotationID int64           `db:"quotation_id"`
	Date        time.Time       `db:"date"`
	Amount      decimal.Decimal `db:"amount"`
	Method      PaymentMethod   `db:"method"`
	Reference   string          `db:"reference"`
	Notes       string          `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
}

type PaymentSummary struct {
	GrandTotal decimal.Decimal
	Paid       decimal.Decimal
	Balance    decimal.Decimal
}

type Employee struct {
	ID        int64     `db:"employee_id"`
	FullName  string    `db:"full_name"`
	Phone     string    `db:"phone"`
	Role      string    `db:"role"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// Assignment is a delivery or installation visit scheduled for a quotation.
type Assignment struct {
	ID            int64            `db:"assignment_id"`
	QuotationID   int64            `db:"quotation_id"`
	Serial        string           `db:"serial_number"`
	CustomerName  string           `db:"customer_name"`
	Type          AssignmentType   `db:"type"`
	ScheduledDate time.Time        `db:"scheduled_date"`
	TimeStart     string           `db:"time_start"`
	TimeEnd       string           `db:"time_end"`
	Location      string           `db:"location"`
	EmployeeID    sql.NullInt64    `db:"employee_id"`
	EmployeeName  string           `db:"employee_name"`
	Status        AssignmentStatus `db:"status"`
	Notes         string           `db:"notes"`
	CreatedAt     time.Time        `db:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"`
}

type Settings struct {
	CompanyName     string          `db:"company_name"`
	LogoPath        string          `db:"logo_path"`
	Address         string          `db:"address"`
	Phone           string          `db:"phone"`
	Email           string          `db:"email"`
	Website         string          `db:"website"`
	DefaultCurrency Currency        `db:"default_currency"`
	DefaultTaxRate  decimal.Decimal `db:"default_tax_rate"`
	CopyFormat      string          `db:"copy_format"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

const DefaultCopyFormat = `"{ItemName} {Color} {W} {H}"`

var DefaultTaxRate = decimal.RequireFromString("0.15")

func DefaultSettings() Settings {
	return Settings{
		CompanyName:     "Curtain Studio",
		DefaultCurrency: SAR,
		DefaultTaxRate:  DefaultTaxRate,
		CopyFormat:      DefaultCopyFormat,
	}
}
