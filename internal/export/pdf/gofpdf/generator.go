package gofpdf

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/export"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jung-kurt/gofpdf"
	"github.com/powerman/structlog"
)

var log = structlog.New()

// Generator prints quotations on A4. Without a TrueType font file the core Helvetica font is used,
// which covers cp1252 only.
type Generator struct {
	FontFile     string
	BoldFontFile string
}

func New(fontFile, boldFontFile string) *Generator {
	return &Generator{FontFile: fontFile, BoldFontFile: boldFontFile}
}

type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"#", 8, "C"},
	{"Item", 46, "L"},
	{"Colour", 26, "L"},
	{"W x H, m", 24, "C"},
	{"Qty", 12, "C"},
	{"Unit price", 22, "R"},
	{"Discount", 18, "R"},
	{"Total ex VAT", 24, "R"},
}

func (g *Generator) Generate(doc export.Document) ([]byte, error) {
	q := doc.Quotation
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quotation "+q.Serial, true)
	pdf.SetCreator("curtains", false)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")

	family, tr := g.setupFonts(pdf)
	if err := pdf.Error(); err != nil {
		return nil, merry.Prepend(err, "load pdf font").WithUserMessagef("can not load font %s", g.FontFile)
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(family, "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s  page %d/{nb}", q.Serial, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	s := doc.Settings
	top := pdf.GetY()
	if s.LogoPath != "" {
		if _, err := os.Stat(s.LogoPath); err == nil {
			pdf.ImageOptions(s.LogoPath, 170, top, 30, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		} else {
			log.Warn("logo not found", "path", s.LogoPath)
		}
	}
	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(150, 8, tr(s.CompanyName), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 9)
	for _, line := range []string{s.Address, joinNonEmpty("  ", s.Phone, s.Email, s.Website)} {
		if line != "" {
			pdf.CellFormat(150, 4.5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	pdf.SetFont(family, "B", 14)
	pdf.CellFormat(0, 8, tr("QUOTATION"), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.CellFormat(95, 5, tr("No: "+q.Serial), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 5, tr("Date: "+q.CreatedAt.Format("2006-01-02")), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 5, tr("Status: "+capitalize(string(q.Status))), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	c := doc.Customer
	pdf.SetFont(family, "B", 10)
	pdf.CellFormat(0, 5, tr("Customer"), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	for _, line := range []string{
		c.DisplayName(),
		companyLine(c),
		joinNonEmpty("  ", c.Phone, c.Email),
		c.Address,
	} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	pdf.SetFont(family, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, 7, tr(col.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(family, "", 9)
	for i, x := range q.Items {
		cells := []string{
			strconv.Itoa(i + 1),
			x.ProductName,
			x.Color(),
			dimensions(x),
			strconv.Itoa(x.Quantity),
			export.Money(x.UnitPrice),
			discount(x),
			export.Money(x.LineTotalExVAT),
		}
		for j, col := range columns {
			pdf.CellFormat(col.width, 6, tr(fit(pdf, tr, cells[j], col.width-2)), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	for _, t := range export.TotalLines(doc) {
		style := ""
		if strings.HasPrefix(t.Label, "Grand total") {
			style = "B"
		}
		pdf.SetFont(family, style, 10)
		pdf.CellFormat(150, 6, tr(t.Label), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, tr(t.Value), "", 1, "R", false, 0, "")
	}

	if q.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont(family, "B", 10)
		pdf.CellFormat(0, 5, tr("Notes"), "", 1, "L", false, 0, "")
		pdf.SetFont(family, "", 9)
		pdf.MultiCell(0, 4.5, tr(q.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, merry.Prepend(err, "pdf output")
	}
	return buf.Bytes(), nil
}

func (g *Generator) setupFonts(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if g.FontFile == "" {
		return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	}
	bold := g.BoldFontFile
	if bold == "" {
		bold = g.FontFile
	}
	pdf.AddUTF8Font("main", "", g.FontFile)
	pdf.AddUTF8Font("main", "B", bold)
	return "main", func(s string) string { return s }
}

func dimensions(x quote.Item) string {
	if !x.Width.Valid && !x.Height.Valid {
		return ""
	}
	w, h := "-", "-"
	if x.Width.Valid {
		w = x.Width.Decimal.String()
	}
	if x.Height.Valid {
		h = x.Height.Decimal.String()
	}
	return w + " x " + h
}

func discount(x quote.Item) string {
	if x.DiscountValue.IsZero() {
		return ""
	}
	if x.DiscountType == quote.DiscountPercent {
		return x.DiscountValue.String() + "%"
	}
	return export.Money(x.DiscountAmount)
}

func companyLine(c quote.Customer) string {
	if c.Type != quote.Company {
		return ""
	}
	var xs []string
	if c.CompanyName != "" && c.Name != "" && c.Name != c.CompanyName {
		xs = append(xs, "Attn: "+c.Name)
	}
	if c.CompanyVAT != "" {
		xs = append(xs, "VAT: "+c.CompanyVAT)
	}
	if c.CompanyAddress != "" {
		xs = append(xs, c.CompanyAddress)
	}
	return strings.Join(xs, "  ")
}

// fit shortens s until it fits into width millimetres at the current font.
func fit(pdf *gofpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if pdf.GetStringWidth(tr(s)) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 1 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinNonEmpty(sep string, xs ...string) string {
	var r []string
	for _, x := range xs {
		if x != "" {
			r = append(r, x)
		}
	}
	return strings.Join(r, sep)
}
