//go:build windows

package app

import (
	"time"

	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/export"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/lxn/walk"
	. "github.com/lxn/walk/declarative"
	"github.com/shopspring/decimal"
)

type tblCol[T any] struct {
	C TableViewColumn
	F func(x T) interface{}
}

// tblVm is a table view model over rows of T described by a column table.
type tblVm[T any] struct {
	walk.TableModelBase
	xs    []T
	cols  []tblCol[T]
	tv    *walk.TableView
	load  func() ([]T, error)
	style func(x T, s *walk.CellStyle)
}

var (
	_ walk.TableModel = new(tblVm[quote.Customer])
	_ walk.CellStyler = new(tblVm[quote.Customer])
)

func newTblVm[T any](cols []tblCol[T], load func() ([]T, error)) *tblVm[T] {
	return &tblVm[T]{cols: cols, load: load}
}

func (x *tblVm[T]) Reload() error {
	xs, err := x.load()
	if err != nil {
		return err
	}
	x.xs = xs
	x.PublishRowsReset()
	return nil
}

func (x *tblVm[T]) RowCount() int {
	return len(x.xs)
}

func (x *tblVm[T]) Value(row, col int) interface{} {
	return x.cols[col].F(x.xs[row])
}

func (x *tblVm[T]) StyleCell(s *walk.CellStyle) {
	if x.style == nil || s.Row() < 0 || s.Row() >= len(x.xs) {
		return
	}
	x.style(x.xs[s.Row()], s)
}

func (x *tblVm[T]) Columns() []TableViewColumn {
	var xs []TableViewColumn
	for _, c := range x.cols {
		xs = append(xs, c.C)
	}
	return xs
}

// Current is the row selected in the table view.
func (x *tblVm[T]) Current() (T, bool) {
	var r T
	if x.tv == nil {
		return r, false
	}
	n := x.tv.CurrentIndex()
	if n < 0 || n >= len(x.xs) {
		return r, false
	}
	return x.xs[n], true
}

func (x *tblVm[T]) TableView(onActivated func()) TableView {
	return TableView{
		AssignTo:              &x.tv,
		Model:                 x,
		Columns:               x.Columns(),
		AlternatingRowBGColor: walk.RGB(245, 245, 245),
		LastColumnStretched:   true,
		OnItemActivated:       onActivated,
	}
}

func money(x decimal.Decimal) interface{} {
	return export.Money(x)
}

const dateFormat = "02.01.06"

var customerCols = []tblCol[quote.Customer]{
	{
		C: TableViewColumn{Name: "ID", Width: 50},
		F: func(c quote.Customer) interface{} { return c.ID },
	},
	{
		C: TableViewColumn{Name: "Name", Width: 200},
		F: func(c quote.Customer) interface{} { return c.Name },
	},
	{
		C: TableViewColumn{Name: "Type", Width: 80},
		F: func(c quote.Customer) interface{} { return string(c.Type) },
	},
	{
		C: TableViewColumn{Name: "Phone", Width: 110},
		F: func(c quote.Customer) interface{} { return c.Phone },
	},
	{
		C: TableViewColumn{Name: "Email", Width: 160},
		F: func(c quote.Customer) interface{} { return c.Email },
	},
	{
		C: TableViewColumn{Name: "Company", Width: 160},
		F: func(c quote.Customer) interface{} { return c.CompanyName },
	},
	{
		C: TableViewColumn{Name: "VAT No"},
		F: func(c quote.Customer) interface{} { return c.CompanyVAT },
	},
	{
		C: TableViewColumn{Name: "Created", Width: 80, Format: dateFormat},
		F: func(c quote.Customer) interface{} { return c.CreatedAt },
	},
	{
		C: TableViewColumn{Name: "Address"},
		F: func(c quote.Customer) interface{} { return c.Address },
	},
}

var productCols = []tblCol[quote.Product]{
	{
		C: TableViewColumn{Name: "ID", Width: 50},
		F: func(p quote.Product) interface{} { return p.ID },
	},
	{
		C: TableViewColumn{Name: "Name", Width: 200},
		F: func(p quote.Product) interface{} { return p.Name },
	},
	{
		C: TableViewColumn{Name: "Category", Width: 120},
		F: func(p quote.Product) interface{} { return p.Category },
	},
	{
		C: TableViewColumn{Name: "Unit", Width: 60},
		F: func(p quote.Product) interface{} { return string(p.UnitType) },
	},
	{
		C: TableViewColumn{Name: "Price", Width: 80, Alignment: AlignFar},
		F: func(p quote.Product) interface{} { return money(p.BaseUnitPrice) },
	},
	{
		C: TableViewColumn{Name: "Currency", Width: 60},
		F: func(p quote.Product) interface{} { return string(p.Currency) },
	},
	{
		C: TableViewColumn{Name: "Variations", Width: 70, Alignment: AlignFar},
		F: func(p quote.Product) interface{} { return len(p.Variations) },
	},
	{
		C: TableViewColumn{Name: "Notes"},
		F: func(p quote.Product) interface{} { return p.Notes },
	},
}

var quotationCols = []tblCol[quote.Quotation]{
	{
		C: TableViewColumn{Name: "Serial", Width: 110},
		F: func(q quote.Quotation) interface{} { return q.Serial },
	},
	{
		C: TableViewColumn{Name: "Customer", Width: 180},
		F: func(q quote.Quotation) interface{} { return q.CustomerName },
	},
	{
		C: TableViewColumn{Name: "Status", Width: 70},
		F: func(q quote.Quotation) interface{} { return string(q.Status) },
	},
	{
		C: TableViewColumn{Name: "Subtotal", Width: 90, Alignment: AlignFar},
		F: func(q quote.Quotation) interface{} { return money(q.SubtotalExVAT) },
	},
	{
		C: TableViewColumn{Name: "Discount", Width: 80, Alignment: AlignFar},
		F: func(q quote.Quotation) interface{} { return money(q.DiscountHeader) },
	},
	{
		C: TableViewColumn{Name: "VAT", Width: 80, Alignment: AlignFar},
		F: func(q quote.Quotation) interface{} { return money(q.VATAmount) },
	},
	{
		C: TableViewColumn{Name: "Total", Width: 90, Alignment: AlignFar},
		F: func(q quote.Quotation) interface{} { return money(q.GrandTotal) },
	},
	{
		C: TableViewColumn{Name: "Created", Width: 80, Format: dateFormat},
		F: func(q quote.Quotation) interface{} { return q.CreatedAt },
	},
	{
		C: TableViewColumn{Name: "Notes"},
		F: func(q quote.Quotation) interface{} { return q.Notes },
	},
}

func styleQuotation(q quote.Quotation, s *walk.CellStyle) {
	switch q.Status {
	case quote.StatusAccepted:
		s.TextColor = walk.RGB(0, 110, 0)
	case quote.StatusLost:
		s.TextColor = walk.RGB(130, 130, 130)
	}
}

var assignmentCols = []tblCol[quote.Assignment]{
	{
		C: TableViewColumn{Name: "Date", Width: 80, Format: dateFormat},
		F: func(x quote.Assignment) interface{} { return x.ScheduledDate },
	},
	{
		C: TableViewColumn{Name: "Time", Width: 90},
		F: func(x quote.Assignment) interface{} { return timeRange(x) },
	},
	{
		C: TableViewColumn{Name: "Type", Width: 90},
		F: func(x quote.Assignment) interface{} { return string(x.Type) },
	},
	{
		C: TableViewColumn{Name: "Quotation", Width: 110},
		F: func(x quote.Assignment) interface{} { return x.Serial },
	},
	{
		C: TableViewColumn{Name: "Customer", Width: 160},
		F: func(x quote.Assignment) interface{} { return x.CustomerName },
	},
	{
		C: TableViewColumn{Name: "Location", Width: 180},
		F: func(x quote.Assignment) interface{} { return x.Location },
	},
	{
		C: TableViewColumn{Name: "Employee", Width: 130},
		F: func(x quote.Assignment) interface{} { return x.EmployeeName },
	},
	{
		C: TableViewColumn{Name: "Status", Width: 80},
		F: func(x quote.Assignment) interface{} { return string(x.Status) },
	},
	{
		C: TableViewColumn{Name: "Notes"},
		F: func(x quote.Assignment) interface{} { return x.Notes },
	},
}

func timeRange(x quote.Assignment) string {
	switch {
	case x.TimeStart != "" && x.TimeEnd != "":
		return x.TimeStart + "-" + x.TimeEnd
	case x.TimeStart != "":
		return x.TimeStart
	}
	return x.TimeEnd
}

// overdue visits are planned for a day that has passed
func styleAssignment(x quote.Assignment, s *walk.CellStyle) {
	switch x.Status {
	case quote.Done, quote.Cancelled:
		s.TextColor = walk.RGB(130, 130, 130)
	case quote.Planned:
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if x.ScheduledDate.Before(today) {
			s.TextColor = walk.RGB(255, 0, 0)
			s.BackgroundColor = walk.RGB(255, 235, 235)
		}
	}
}

func newCustomersVm(query *string) *tblVm[quote.Customer] {
	return newTblVm(customerCols, func() ([]quote.Customer, error) {
		return data.SearchCustomers(db, *query, "")
	})
}

func newProductsVm() *tblVm[quote.Product] {
	return newTblVm(productCols, func() ([]quote.Product, error) {
		return data.ListProducts(db)
	})
}

func newQuotationsVm(f *data.QuotationFilter) *tblVm[quote.Quotation] {
	x := newTblVm(quotationCols, func() ([]quote.Quotation, error) {
		return data.SearchQuotations(db, *f)
	})
	x.style = styleQuotation
	return x
}

func newAssignmentsVm() *tblVm[quote.Assignment] {
	x := newTblVm(assignmentCols, func() ([]quote.Assignment, error) {
		return data.ListAssignments(db, data.AssignmentFilter{})
	})
	x.style = styleAssignment
	return x
}
