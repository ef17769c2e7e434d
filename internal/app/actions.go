//go:build windows

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/backup"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/export"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/lxn/walk"
)

func reloadAll() {
	for _, f := range []func() error{
		customersVm.Reload,
		productsVm.Reload,
		quotationsVm.Reload,
		assignmentsVm.Reload,
	} {
		if err := f(); err != nil {
			showErr("Load", err)
			return
		}
	}
}

func reloadAfter(vms ...interface{ Reload() error }) {
	for _, x := range vms {
		if err := x.Reload(); err != nil {
			showErr("Load", err)
			return
		}
	}
}

func currentCustomer() (quote.Customer, bool) {
	c, ok := customersVm.Current()
	if !ok {
		walk.MsgBox(mainWnd, "Customers", "Select a customer first", walk.MsgBoxIconInformation|walk.MsgBoxOK)
	}
	return c, ok
}

func currentQuotation() (quote.Quotation, bool) {
	q, ok := quotationsVm.Current()
	if !ok {
		walk.MsgBox(mainWnd, "Quotations", "Select a quotation first", walk.MsgBoxIconInformation|walk.MsgBoxOK)
	}
	return q, ok
}

func runNewCustomer() {
	editYaml("new-customer", quote.CustomerInput{Type: quote.Individual}, func(in quote.CustomerInput) error {
		c, err := data.CreateCustomer(db, in)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("customer %d %s added", c.ID, c.Name))
		reloadAfter(customersVm)
		return nil
	})
}

func runEditCustomer() {
	c, ok := currentCustomer()
	if !ok {
		return
	}
	editYaml(fmt.Sprintf("customer%d", c.ID), quote.CustomerInputOf(c), func(in quote.CustomerInput) error {
		if _, err := data.UpdateCustomer(db, c.ID, in); err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("customer %d saved", c.ID))
		reloadAfter(customersVm, quotationsVm)
		return nil
	})
}

func runDeleteCustomer() {
	c, ok := currentCustomer()
	if !ok || !confirm("Delete customer", fmt.Sprintf("Delete customer %s?", c.DisplayName())) {
		return
	}
	if err := data.DeleteCustomer(db, c.ID); err != nil {
		showErr("Delete customer", err)
		return
	}
	setStatusOk(fmt.Sprintf("customer %d deleted", c.ID))
	reloadAfter(customersVm)
}

func runNewProduct() {
	in := quote.ProductInput{UnitType: quote.UnitArea, Currency: quote.SAR}
	editYaml("new-product", in, func(in quote.ProductInput) error {
		p, err := data.CreateProduct(db, in)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("product %d %s added", p.ID, p.Name))
		reloadAfter(productsVm)
		return nil
	})
}

func runEditProduct() {
	p, ok := productsVm.Current()
	if !ok {
		return
	}
	editYaml(fmt.Sprintf("product%d", p.ID), quote.ProductInputOf(p), func(in quote.ProductInput) error {
		if _, err := data.UpdateProduct(db, p.ID, in); err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("product %d saved", p.ID))
		reloadAfter(productsVm)
		return nil
	})
}

func runAddVariation() {
	p, ok := productsVm.Current()
	if !ok {
		return
	}
	editYaml(fmt.Sprintf("product%d-variation", p.ID), quote.VariationInput{}, func(in quote.VariationInput) error {
		if in.ImagePath != "" && filepath.IsAbs(in.ImagePath) {
			in.ImagePath = env.Paths.RelativeMedia(in.ImagePath)
		}
		v, err := data.AddVariation(db, p.ID, in)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("variation %s added to %s", v.Name, p.Name))
		reloadAfter(productsVm)
		return nil
	})
}

func runDeleteProduct() {
	p, ok := productsVm.Current()
	if !ok || !confirm("Delete product", fmt.Sprintf("Delete product %s?", p.Name)) {
		return
	}
	if err := data.DeleteProduct(db, p.ID); err != nil {
		showErr("Delete product", err)
		return
	}
	setStatusOk(fmt.Sprintf("product %d deleted", p.ID))
	reloadAfter(productsVm)
}

func runNewQuotation() {
	c, ok := currentCustomer()
	if !ok {
		return
	}
	q, err := data.CreateQuotation(db, c.ID, "")
	if err != nil {
		showErr("New quotation", err)
		return
	}
	setStatusOk(fmt.Sprintf("quotation %s created for %s", q.Serial, c.DisplayName()))
	reloadAfter(quotationsVm)
	panicIf(tabs.SetCurrentIndex(tabQuotations))
}

func runEditQuotation() {
	x, ok := currentQuotation()
	if !ok {
		return
	}
	q, err := data.GetQuotation(db, x.ID)
	if err != nil {
		showErr("Quotation", err)
		return
	}
	editYaml(q.Serial, data.QuotationEditOf(q), func(e data.QuotationEdit) error {
		q, err := data.EditQuotation(db, q.ID, e)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("quotation %s saved, total %s", q.Serial, export.Money(q.GrandTotal)))
		reloadAfter(quotationsVm)
		return nil
	})
}

func runAddItem() {
	q, ok := currentQuotation()
	if !ok {
		return
	}
	in := quote.ItemInput{Quantity: 1, DiscountType: quote.DiscountFixed}
	if p, ok := productsVm.Current(); ok {
		in.ProductID = p.ID
	}
	editYaml(q.Serial+"-item", in, func(in quote.ItemInput) error {
		x, err := data.AddItem(db, q.ID, in)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("%s: %s x %d = %s", q.Serial, x.ProductName, x.Quantity, export.Money(x.LineTotalExVAT)))
		reloadAfter(quotationsVm)
		return nil
	})
}

func runAddPayment() {
	q, ok := currentQuotation()
	if !ok {
		return
	}
	sum, err := data.PaymentSummary(db, q.ID)
	if err != nil {
		showErr("Payment", err)
		return
	}
	in := quote.PaymentInput{Date: time.Now().UTC().Truncate(24 * time.Hour), Amount: sum.Balance, Method: quote.PayCash}
	editYaml(q.Serial+"-payment", in, func(in quote.PaymentInput) error {
		if _, err := data.AddPayment(db, q.ID, in); err != nil {
			return err
		}
		sum, err := data.PaymentSummary(db, q.ID)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("%s: paid %s, balance %s", q.Serial, export.Money(sum.Paid), export.Money(sum.Balance)))
		return nil
	})
}

func runSetStatus(status quote.Status) {
	q, ok := currentQuotation()
	if !ok {
		return
	}
	if err := data.SetStatus(db, q.ID, status); err != nil {
		showErr("Quotation status", err)
		return
	}
	setStatusOk(fmt.Sprintf("%s is %s", q.Serial, status))
	reloadAfter(quotationsVm)
}

func runDeleteQuotation() {
	q, ok := currentQuotation()
	if !ok || !confirm("Delete quotation", fmt.Sprintf("Delete quotation %s with its items, payments and visits?", q.Serial)) {
		return
	}
	if err := data.DeleteQuotation(db, q.ID); err != nil {
		showErr("Delete quotation", err)
		return
	}
	setStatusOk(fmt.Sprintf("quotation %s deleted", q.Serial))
	reloadAfter(quotationsVm, assignmentsVm)
}

func runCopyItems() {
	q, ok := currentQuotation()
	if !ok {
		return
	}
	xs, err := data.ItemCopyLines(db, q.ID)
	if err != nil {
		showErr("Copy", err)
		return
	}
	if err := walk.Clipboard().SetText(strings.Join(xs, "\r\n")); err != nil {
		showErr("Copy", merry.Wrap(err))
		return
	}
	setStatusOk(fmt.Sprintf("%s: %d items copied", q.Serial, len(xs)))
}

// saveFileDialog asks for a file name, remembering the last directory used.
func saveFileDialog(title, filter, name string) (string, bool) {
	dlg := walk.FileDialog{
		Title:          title,
		Filter:         filter,
		FilePath:       name,
		InitialDirPath: setsLastDir(),
	}
	ok, err := dlg.ShowSave(mainWnd)
	if err != nil {
		showErr(title, merry.Wrap(err))
		return "", false
	}
	if ok {
		setsPut("last_dir", filepath.Dir(dlg.FilePath))
	}
	return dlg.FilePath, ok
}

func openFileDialog(title, filter, dir string) (string, bool) {
	dlg := walk.FileDialog{Title: title, Filter: filter, InitialDirPath: dir}
	ok, err := dlg.ShowOpen(mainWnd)
	if err != nil {
		showErr(title, merry.Wrap(err))
		return "", false
	}
	return dlg.FilePath, ok
}

func runExportPDF() {
	q, ok := currentQuotation()
	if !ok {
		return
	}
	filename, ok := saveFileDialog("Export PDF", "PDF (*.pdf)|*.pdf", q.Serial+".pdf")
	if !ok {
		return
	}
	err := func() error {
		doc, err := env.LoadDocument(db, q.ID)
		if err != nil {
			return err
		}
		b, err := env.PDFGenerator().Generate(doc)
		if err != nil {
			return err
		}
		return merry.Wrap(os.WriteFile(filename, b, 0644))
	}()
	if err != nil {
		showErr("Export PDF", err)
		return
	}
	setStatusOk("saved " + filename)
}

func runExportCSV() {
	q, ok := currentQuotation()
	if !ok {
		return
	}
	filename, ok := saveFileDialog("Export CSV", "CSV (*.csv)|*.csv", q.Serial+".csv")
	if !ok {
		return
	}
	err := func() error {
		doc, err := env.LoadDocument(db, q.ID)
		if err != nil {
			return err
		}
		return writeFile(filename, func(f *os.File) error {
			return export.WriteCSV(f, doc)
		})
	}()
	if err != nil {
		showErr("Export CSV", err)
		return
	}
	setStatusOk("saved " + filename)
}

func runNewAssignment() {
	q, ok := currentQuotation()
	if !ok {
		return
	}
	c, err := data.GetCustomer(db, q.CustomerID)
	if err != nil {
		showErr("Schedule visit", err)
		return
	}
	in := quote.AssignmentInput{
		QuotationID:   q.ID,
		Type:          quote.Installation,
		ScheduledDate: time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1),
		Location:      c.Address,
	}
	editYaml(q.Serial+"-visit", in, func(in quote.AssignmentInput) error {
		in.QuotationID = q.ID
		x, err := data.CreateAssignment(db, in)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("%s %s planned on %s", q.Serial, x.Type, x.ScheduledDate.Format("2006-01-02")))
		reloadAfter(assignmentsVm)
		return nil
	})
}

func runSetAssignmentStatus(status quote.AssignmentStatus) {
	x, ok := assignmentsVm.Current()
	if !ok {
		return
	}
	if err := data.SetAssignmentStatus(db, x.ID, status); err != nil {
		showErr("Visit status", err)
		return
	}
	reloadAfter(assignmentsVm)
}

func runDeleteAssignment() {
	x, ok := assignmentsVm.Current()
	if !ok || !confirm("Delete visit", fmt.Sprintf("Delete the %s visit for %s?", x.Type, x.Serial)) {
		return
	}
	if err := data.DeleteAssignment(db, x.ID); err != nil {
		showErr("Delete visit", err)
		return
	}
	reloadAfter(assignmentsVm)
}

func runNewEmployee() {
	editYaml("new-employee", quote.EmployeeInput{}, func(in quote.EmployeeInput) error {
		x, err := data.CreateEmployee(db, in)
		if err != nil {
			return err
		}
		setStatusOk(fmt.Sprintf("employee %d %s added", x.ID, x.FullName))
		return nil
	})
}

func runBackup() {
	info, err := env.Backup(context.Background(), db)
	if err != nil {
		showErr("Backup", err)
		return
	}
	setStatusOk("saved " + info.Path)
}

// runRestore replaces the open database with a backup and reopens it.
func runRestore() {
	src, ok := openFileDialog("Restore backup", "Database (*.db)|*.db", env.BackupDir())
	if !ok || !confirm("Restore backup", fmt.Sprintf("Replace the database with %s?", filepath.Base(src))) {
		return
	}
	ctx := context.Background()
	if err := db.Close(); err != nil {
		log.PrintErr("close database", "error", err)
	}
	err := backup.Restore(ctx, src, env.DatabaseFile())
	if err != nil {
		showErr("Restore backup", err)
	}
	// the database is reopened whether the restore succeeded or not
	if db, err = env.OpenDB(ctx); err != nil {
		showErr("Open database", err)
		panicIf(err)
	}
	reloadAll()
	setStatusOk("restored from " + src)
}

func runExportCatalog() {
	filename, ok := saveFileDialog("Export catalog", "YAML (*.yaml)|*.yaml", "catalog.yaml")
	if !ok {
		return
	}
	err := func() error {
		products, err := data.ListProducts(db)
		if err != nil {
			return err
		}
		return writeFile(filename, func(f *os.File) error {
			return export.ExportCatalog(f, products)
		})
	}()
	if err != nil {
		showErr("Export catalog", err)
		return
	}
	setStatusOk("saved " + filename)
}

func runImportCatalog() {
	filename, ok := openFileDialog("Import catalog", "YAML (*.yaml;*.yml)|*.yaml;*.yml", setsLastDir())
	if !ok {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		showErr("Import catalog", merry.Wrap(err))
		return
	}
	defer log.ErrIfFail(f.Close)
	r, err := export.ImportCatalog(db, f)
	if err != nil {
		showErr("Import catalog", err)
		return
	}
	setStatusOk(fmt.Sprintf("products created: %d, updated: %d", r.Created, r.Updated))
	reloadAfter(productsVm)
}

func runStats() {
	s, err := data.DashboardStats(db, time.Now())
	if err != nil {
		showErr("Statistics", err)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Customers: %d\nProducts: %d\nQuotations: %d\nThis month: %d\nMonth revenue: %s\nUpcoming visits: %d\n",
		s.Customers, s.Products, s.Quotations, s.QuotationsThisMonth, export.Money(s.MonthRevenue), s.UpcomingAssignments)
	var statuses []string
	for st := range s.ByStatus {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	for _, st := range statuses {
		fmt.Fprintf(&b, "  %s: %d\n", st, s.ByStatus[quote.Status(st)])
	}
	walk.MsgBox(mainWnd, "Statistics", b.String(), walk.MsgBoxIconInformation|walk.MsgBoxOK)
}
