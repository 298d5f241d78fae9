package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets as a PDF where every row is a block of
// "header: value" lines. Plan stages carry long free text that does not fit
// table cells.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title. The first header of
// each row is used as the block heading.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; accents in Spanish text need translating
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
	}
	if len(data.Meta) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, line := range data.Meta {
			pdf.CellFormat(0, 5, tr(line), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	heading, fields := data.Headers[0], data.Headers[1:]
	for i, row := range data.Rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(230, 240, 250)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%d. %s", i+1, row[heading])), "B", 1, "", true, 0, "")
		for _, field := range fields {
			value := strings.TrimSpace(row[field])
			if value == "" {
				continue
			}
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(0, 5, tr(field), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(0, 5, tr(value), "", "", false)
		}
		pdf.Ln(3)
	}

	if data.Footer != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, tr(data.Footer), "T", 1, "R", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
