package receipt

import (
	"io"
	"strconv"

	"shop-service/internal/domain"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

// column widths: qty, description, unit price, amount (A4 minus margins)
var columns = [4]float64{20, 95, 32.5, 32.5}

type Renderer struct {
	merchant Merchant
	compress bool
}

func NewRenderer(m Merchant) *Renderer {
	return &Renderer{merchant: m, compress: true}
}

// Render writes the PDF receipt for o, whose items must be loaded.
func (r *Renderer) Render(w io.Writer, o *domain.Order) error {
	rc := Build(o, r.merchant)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(o.CreatedAt)
	pdf.SetModificationDate(o.CreatedAt)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetTitle("Receipt "+rc.Number, true)
	pdf.SetAuthor(r.merchant.Name, true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	writeHeader(pdf, tr, rc)
	writeBillTo(pdf, tr, rc)
	writeLines(pdf, tr, rc)
	writeTotals(pdf, tr, rc)

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, lineHeight, tr("Thank you for your purchase!"), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

func writeHeader(pdf *fpdf.Fpdf, tr func(string) string, rc Receipt) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(110, 9, tr(rc.Merchant.Name), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, "RECEIPT", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	contact := nonEmpty(rc.Merchant.Address, rc.Merchant.Email, rc.Merchant.Phone)
	meta := []string{"Receipt No: " + rc.Number, "Date: " + rc.IssueDate}
	for i := 0; i < len(contact) || i < len(meta); i++ {
		left, right := "", ""
		if i < len(contact) {
			left = contact[i]
		}
		if i < len(meta) {
			right = meta[i]
		}
		pdf.CellFormat(110, 5, tr(left), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(right), "", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
}

func writeBillTo(pdf *fpdf.Fpdf, tr func(string) string, rc Receipt) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, lineHeight, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range rc.BillTo {
		pdf.CellFormat(0, 5, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func writeLines(pdf *fpdf.Fpdf, tr func(string) string, rc Receipt) {
	headers := [4]string{"Qty", "Description", "Unit Price", "Amount"}
	aligns := [4]string{"C", "L", "R", "R"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(columns[i], 7, h, "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range rc.Lines {
		cells := [4]string{strconv.Itoa(l.Quantity), l.Description, l.UnitPrice, l.Amount}
		for i, c := range cells {
			pdf.CellFormat(columns[i], 7, tr(c), "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func writeTotals(pdf *fpdf.Fpdf, tr func(string) string, rc Receipt) {
	labelX := pageMargin + columns[0] + columns[1]
	rows := []struct {
		label, value string
		bold         bool
	}{
		{"Subtotal", rc.Subtotal, false},
		{"Shipping", rc.Shipping, false},
		{"Total", rc.Total, true},
	}
	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.SetX(labelX)
		pdf.CellFormat(columns[2], 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(columns[3], 7, tr(row.value), "", 1, "R", false, 0, "")
	}
}
