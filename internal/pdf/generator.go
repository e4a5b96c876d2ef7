// Package pdf renders quotes as printable documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

type Generator struct{}

func New() *Generator { return &Generator{} }

// Generate lays out customer, date, status, line items, total and notes on
// a single A4 page using the built-in Helvetica font.
func (g *Generator) Generate(q quotes.Quote) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quote "+q.ID, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Quote")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Customer: %s", q.CustomerName)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", q.Date.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", q.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Reference: %s", q.ID))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(100, 7, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Amount", "B", 0, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range q.Products {
		price := decimal.NewFromFloat(p.Price)
		line := price.Mul(decimal.NewFromInt(int64(p.Quantity)))
		pdf.CellFormat(100, 6, tr(trim(p.Name, 55)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", p.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, line.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(180, 7, "Total: "+decimal.NewFromFloat(q.Total).StringFixed(2), "T", 0, "R", false, 0, "")
	pdf.Ln(10)

	if q.Notes != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, tr("Notes: "+q.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render quote pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
