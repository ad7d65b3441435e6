// Package render turns a stored invoice into a printable PDF document.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"invoicer/internal/config"
	"invoicer/internal/model"
	"invoicer/internal/refdata"
	"invoicer/internal/totals"
	"invoicer/pkg/datefmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	marginX  = 20.0
	marginY  = 15.0
	logoSize = 20.0
)

var (
	colorText  = [3]int{29, 29, 31}
	colorMuted = [3]int{134, 134, 139}
	colorRule  = [3]int{229, 229, 231}
)

// Renderer draws invoices with gofpdf. It only reads the stored record:
// totals come from the persisted fields and are never recomputed.
type Renderer struct {
	fontFamily string
	pageSize   string
}

func NewRenderer(cfg config.RenderConfig) *Renderer {
	r := &Renderer{fontFamily: cfg.FontFamily, pageSize: cfg.PageSize}
	if r.fontFamily == "" {
		r.fontFamily = "Helvetica"
	}
	if r.pageSize == "" {
		r.pageSize = "A4"
	}
	return r
}

// FileName is the attachment name offered to the browser
func FileName(inv *model.Invoice) string {
	return fmt.Sprintf("invoice-%s.pdf", inv.InvoiceNumber)
}

// Render returns the PDF bytes for inv
func (r *Renderer) Render(inv *model.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", r.pageSize, "")
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)
	pdf.AddPage()

	d := &doc{
		pdf:    pdf,
		font:   r.fontFamily,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		symbol: refdata.Symbol(inv.Currency),
	}
	pageW, _ := pdf.GetPageSize()
	d.width = pageW - 2*marginX

	d.logo(inv.Company.Logo)
	d.header(inv)
	d.company(inv.Company)
	d.details(inv)
	d.items(inv.LineItems)
	d.totals(inv)
	d.notes(inv.Notes)
	d.footer(inv.FooterMessage)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

type doc struct {
	pdf    *gofpdf.Fpdf
	font   string
	tr     func(string) string
	symbol string
	width  float64
}

func (d *doc) style(weight string, size float64, color [3]int) {
	d.pdf.SetFont(d.font, weight, size)
	d.pdf.SetTextColor(color[0], color[1], color[2])
}

func (d *doc) line(txt string, h float64, align string) {
	d.pdf.CellFormat(d.width, h, d.tr(txt), "", 1, align, false, 0, "")
}

func (d *doc) rule() {
	y := d.pdf.GetY() + 2
	d.pdf.SetDrawColor(colorRule[0], colorRule[1], colorRule[2])
	d.pdf.Line(marginX, y, marginX+d.width, y)
	d.pdf.SetY(y + 4)
}

func (d *doc) money(v float64) string {
	return d.symbol + totals.Format(v)
}

// logo draws a base64 image, with or without a data URL prefix. An
// undecodable logo is skipped.
func (d *doc) logo(encoded string) {
	if encoded == "" {
		return
	}
	imgType := "PNG"
	if meta, data, ok := strings.Cut(encoded, ","); ok && strings.HasPrefix(meta, "data:") {
		encoded = data
		switch {
		case strings.Contains(meta, "jpeg"), strings.Contains(meta, "jpg"):
			imgType = "JPG"
		case strings.Contains(meta, "gif"):
			imgType = "GIF"
		}
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return
	}

	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	info := d.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(raw))
	if info == nil || d.pdf.Err() {
		d.pdf.ClearError()
		return
	}
	d.pdf.ImageOptions("logo", marginX, marginY, logoSize, 0, false, opts, 0, "")
}

func (d *doc) header(inv *model.Invoice) {
	title := inv.InvoiceTitle
	if title == "" {
		title = model.DefaultInvoiceTitle
	}
	d.style("", 26, colorText)
	d.line(title, 14, "C")
	d.pdf.Ln(4)
}

func (d *doc) company(c model.PartySnapshot) {
	name := c.Name
	if name == "" {
		name = "Your Company"
	}
	d.style("B", 14, colorText)
	d.line(name, 7, "C")

	d.style("", 9, colorMuted)
	if c.Address != "" {
		d.line(c.Address, 5, "C")
	}
	if loc := joinNonEmpty(", ", c.City, c.State, c.PostalCode); loc != "" {
		d.line(loc, 5, "C")
	}
	if c.Email != "" {
		d.line(c.Email, 5, "C")
	}
	d.rule()
}

func (d *doc) details(inv *model.Invoice) {
	half := d.width / 2
	top := d.pdf.GetY()

	d.style("", 8, colorMuted)
	d.pdf.CellFormat(half, 5, "BILL TO", "", 2, "L", false, 0, "")
	d.style("B", 12, colorText)
	name := inv.Customer.Name
	if name == "" {
		name = "Customer Name"
	}
	d.pdf.CellFormat(half, 6, d.tr(name), "", 2, "L", false, 0, "")
	d.style("", 9, colorMuted)
	for _, s := range []string{
		inv.Customer.Address,
		joinNonEmpty(", ", inv.Customer.City, inv.Customer.State, inv.Customer.PostalCode),
		inv.Customer.Email,
	} {
		if s != "" {
			d.pdf.CellFormat(half, 5, d.tr(s), "", 2, "L", false, 0, "")
		}
	}
	leftBottom := d.pdf.GetY()

	d.pdf.SetXY(marginX+half, top)
	pairs := [][2]string{
		{"INVOICE NUMBER", inv.InvoiceNumber},
		{"ISSUE DATE", datefmt.Display(inv.IssueDate)},
	}
	if inv.DueDate != "" {
		pairs = append(pairs, [2]string{"DUE DATE", datefmt.Display(inv.DueDate)})
	}
	for _, p := range pairs {
		d.pdf.SetX(marginX + half)
		d.style("", 8, colorMuted)
		d.pdf.CellFormat(half, 5, p[0], "", 2, "R", false, 0, "")
		d.style("", 10, colorText)
		d.pdf.CellFormat(half, 6, d.tr(p[1]), "", 2, "R", false, 0, "")
	}

	if y := d.pdf.GetY(); y < leftBottom {
		d.pdf.SetY(leftBottom)
	}
	d.pdf.SetX(marginX)
	d.rule()
}

func (d *doc) items(items []model.LineItem) {
	cols := []float64{d.width * 0.5, d.width * 0.15, d.width * 0.175, d.width * 0.175}

	d.style("B", 9, colorMuted)
	for i, h := range []string{"Description", "Qty", "Rate", "Amount"} {
		align := "R"
		switch i {
		case 0:
			align = "L"
		case 1:
			align = "C"
		}
		d.pdf.CellFormat(cols[i], 7, h, "B", 0, align, false, 0, "")
	}
	d.pdf.Ln(-1)

	for _, it := range items {
		d.style("", 10, colorText)
		d.pdf.CellFormat(cols[0], 8, d.tr(it.Description), "", 0, "L", false, 0, "")
		d.style("", 10, colorMuted)
		d.pdf.CellFormat(cols[1], 8, formatQuantity(it.Quantity), "", 0, "C", false, 0, "")
		d.pdf.CellFormat(cols[2], 8, d.tr(d.money(it.Rate)), "", 0, "R", false, 0, "")
		d.style("", 10, colorText)
		d.pdf.CellFormat(cols[3], 8, d.tr(d.money(it.Amount)), "", 1, "R", false, 0, "")
	}
	d.rule()
}

func (d *doc) totals(inv *model.Invoice) {
	label := d.width * 0.75
	value := d.width * 0.25

	row := func(name string, v float64) {
		d.style("", 10, colorMuted)
		d.pdf.CellFormat(label, 6, name, "", 0, "R", false, 0, "")
		d.style("", 10, colorText)
		d.pdf.CellFormat(value, 6, d.tr(d.money(v)), "", 1, "R", false, 0, "")
	}

	row("Subtotal", inv.Subtotal)
	if inv.Fees.HasSurcharge {
		row(fmt.Sprintf("Surcharge (%s%%)", trimPercent(inv.Fees.SurchargePercent)), inv.Surcharge)
	}
	if inv.Fees.HasConvenienceFee {
		row("Convenience Fee", inv.ConvenienceFee)
	}
	if !inv.Fees.IsTaxFree {
		row(fmt.Sprintf("Tax (%s%%)", trimPercent(inv.Fees.TaxRatePercent)), inv.Tax)
	}

	d.pdf.Ln(2)
	d.style("B", 13, colorText)
	d.pdf.CellFormat(label, 8, "Total", "T", 0, "R", false, 0, "")
	d.pdf.CellFormat(value, 8, d.tr(d.money(inv.Total)), "T", 1, "R", false, 0, "")
}

func (d *doc) notes(notes string) {
	if strings.TrimSpace(notes) == "" {
		return
	}
	d.pdf.Ln(8)
	d.style("", 8, colorMuted)
	d.line("NOTES", 5, "L")
	d.style("", 10, colorText)
	d.pdf.MultiCell(d.width, 5, d.tr(notes), "", "L", false)
}

func (d *doc) footer(msg string) {
	if msg == "" {
		return
	}
	d.pdf.Ln(12)
	d.style("", 9, colorMuted)
	d.line(msg, 5, "C")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func formatQuantity(q float64) string {
	return trimPercent(q)
}

// trimPercent prints v without trailing zeros: 8.25 -> "8.25", 10 -> "10"
func trimPercent(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
