//go:build windows

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/bootstrap"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/lxn/walk"
	. "github.com/lxn/walk/declarative"
	"github.com/lxn/win"
	"github.com/powerman/structlog"
)

const (
	tabCustomers = iota
	tabProducts
	tabQuotations
	tabAssignments
)

var (
	log       = structlog.New()
	mainWnd   *walk.MainWindow
	env       *bootstrap.Env
	db        *sqlx.DB
	tmpDir    string
	tabs      *walk.TabWidget
	lblStatus *walk.LineEdit

	customerQuery   string
	quotationFilter data.QuotationFilter

	customersVm   *tblVm[quote.Customer]
	productsVm    *tblVm[quote.Product]
	quotationsVm  *tblVm[quote.Quotation]
	assignmentsVm *tblVm[quote.Assignment]
)

func Main() {
	var err error
	if env, err = bootstrap.New("", nil); err != nil {
		walk.MsgBox(nil, "Curtains", userMessage(err), walk.MsgBoxIconError|walk.MsgBoxOK)
		return
	}
	defer log.ErrIfFail(env.Close)

	tmpDir = filepath.Join(env.Paths.Root, "tmp")
	cleanTmpDir()
	if err := os.MkdirAll(tmpDir, os.ModePerm); err != nil {
		log.PrintErr(merry.Append(err, "os.MkdirAll(tmpDir)"))
	}
	defer cleanTmpDir()

	log.Debug("open database: " + env.DatabaseFile())
	if db, err = env.OpenDB(context.Background()); err != nil {
		walk.MsgBox(nil, "Curtains", userMessage(err), walk.MsgBoxIconError|walk.MsgBoxOK)
		return
	}
	defer func() {
		log.ErrIfFail(db.Close)
	}()

	customersVm = newCustomersVm(&customerQuery)
	productsVm = newProductsVm()
	quotationsVm = newQuotationsVm(&quotationFilter)
	assignmentsVm = newAssignmentsVm()

	var edCustomer, edQuotation *walk.LineEdit

	runWindowMaximized(MainWindow{
		Title:    "Curtains: " + env.Paths.Root,
		Font:     Font{Family: "Arial", PointSize: 9},
		AssignTo: &mainWnd,
		MenuItems: []MenuItem{
			Menu{
				Text: "&File",
				Items: []MenuItem{
					Action{Text: "Company settings", OnTriggered: runEditSettings},
					Action{Text: "Configuration", OnTriggered: runEditConfig},
					Separator{},
					Action{Text: "Backup now", OnTriggered: runBackup},
					Action{Text: "Restore backup...", OnTriggered: runRestore},
					Separator{},
					Action{Text: "Export catalog...", OnTriggered: runExportCatalog},
					Action{Text: "Import catalog...", OnTriggered: runImportCatalog},
					Separator{},
					Action{Text: "Exit", OnTriggered: func() { _ = mainWnd.Close() }},
				},
			},
			Menu{
				Text: "&Customer",
				Items: []MenuItem{
					Action{Text: "New", OnTriggered: runNewCustomer},
					Action{Text: "Edit", OnTriggered: runEditCustomer},
					Action{Text: "New quotation", OnTriggered: runNewQuotation},
					Separator{},
					Action{Text: "Delete", OnTriggered: runDeleteCustomer},
				},
			},
			Menu{
				Text: "&Product",
				Items: []MenuItem{
					Action{Text: "New", OnTriggered: runNewProduct},
					Action{Text: "Edit", OnTriggered: runEditProduct},
					Action{Text: "Add variation", OnTriggered: runAddVariation},
					Separator{},
					Action{Text: "Delete", OnTriggered: runDeleteProduct},
				},
			},
			Menu{
				Text: "&Quotation",
				Items: []MenuItem{
					Action{Text: "Edit", OnTriggered: runEditQuotation},
					Action{Text: "Add item", OnTriggered: runAddItem},
					Action{Text: "Add payment", OnTriggered: runAddPayment},
					Action{Text: "Schedule visit", OnTriggered: runNewAssignment},
					Menu{Text: "Status", Items: statusMenu()},
					Separator{},
					Action{Text: "Copy items", OnTriggered: runCopyItems},
					Action{Text: "Export PDF...", OnTriggered: runExportPDF},
					Action{Text: "Export CSV...", OnTriggered: runExportCSV},
					Separator{},
					Action{Text: "Delete", OnTriggered: runDeleteQuotation},
				},
			},
			Menu{
				Text: "&Schedule",
				Items: []MenuItem{
					Menu{Text: "Status", Items: assignmentStatusMenu()},
					Action{Text: "Delete visit", OnTriggered: runDeleteAssignment},
					Separator{},
					Action{Text: "New employee", OnTriggered: runNewEmployee},
				},
			},
			Action{Text: "Statistics", OnTriggered: runStats},
		},
		Layout: VBox{},
		Children: []Widget{
			TabWidget{
				AssignTo: &tabs,
				OnCurrentIndexChanged: func() {
					setsPut("tab", strconv.Itoa(tabs.CurrentIndex()))
				},
				Pages: []TabPage{
					{
						Title:  "Customers",
						Layout: VBox{},
						Children: []Widget{
							searchBox(&edCustomer, "name, email or company", func() {
								customerQuery = edCustomer.Text()
								reloadAfter(customersVm)
							}),
							customersVm.TableView(runEditCustomer),
						},
					},
					{
						Title:    "Products",
						Layout:   VBox{},
						Children: []Widget{productsVm.TableView(runEditProduct)},
					},
					{
						Title:  "Quotations",
						Layout: VBox{},
						Children: []Widget{
							Composite{
								Layout: HBox{MarginsZero: true},
								Children: []Widget{
									searchBox(&edQuotation, "serial or customer", func() {
										quotationFilter.Query = edQuotation.Text()
										reloadAfter(quotationsVm)
									}),
									ComboBoxStatus(func(s quote.Status) {
										quotationFilter.Status = s
										reloadAfter(quotationsVm)
									}),
								},
							},
							quotationsVm.TableView(runEditQuotation),
						},
					},
					{
						Title:    "Schedule",
						Layout:   VBox{},
						Children: []Widget{assignmentsVm.TableView(nil)},
					},
				},
			},
			LineEdit{Text: " ", AssignTo: &lblStatus, ReadOnly: true},
		},
	}, func() {
		reloadAll()
		if n := setsTabIndex(); n < tabs.Pages().Len() {
			panicIf(tabs.SetCurrentIndex(n))
		}
	})
}

func searchBox(ed **walk.LineEdit, cue string, onChanged func()) LineEdit {
	return LineEdit{
		AssignTo:      ed,
		CueBanner:     cue,
		OnTextChanged: onChanged,
	}
}

func statusMenu() []MenuItem {
	var xs []MenuItem
	for _, s := range quote.Statuses {
		s := s
		xs = append(xs, Action{
			Text:        string(s),
			OnTriggered: func() { runSetStatus(s) },
		})
	}
	return xs
}

func assignmentStatusMenu() []MenuItem {
	var xs []MenuItem
	for _, s := range quote.AssignmentStatuses {
		s := s
		xs = append(xs, Action{
			Text:        string(s),
			OnTriggered: func() { runSetAssignmentStatus(s) },
		})
	}
	return xs
}

func setStatus(s string, c walk.Color) {
	if lblStatus == nil {
		return
	}
	lblStatus.SetTextColor(c)
	panicIf(lblStatus.SetText(fmt.Sprintf("%s: %s", time.Now().Format("15:04:05"), s)))
}

func setStatusError(err error) {
	setStatus(userMessage(err), walk.RGB(255, 0, 0))
}

func setStatusOk(s string) {
	log.Info(s)
	setStatus(s, walk.RGB(0, 0, 0))
}

func runWindowMaximized(aw MainWindow, onCreated func()) {
	if aw.AssignTo == nil {
		var x *walk.MainWindow
		aw.AssignTo = &x
	}
	panicIf(aw.Create())
	w := *aw.AssignTo
	onCreated()
	if !win.ShowWindow(w.Handle(), win.SW_SHOWMAXIMIZED) {
		log.Debug("window was hidden before maximizing")
	}
	w.Run()
}
