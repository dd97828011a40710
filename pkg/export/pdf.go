package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF lays the report out as a single table on A4 portrait pages,
// with the title above and a generation timestamp in the footer.
func RenderPDF(r Report) ([]byte, error) {
	if len(r.Columns) == 0 {
		return nil, fmt.Errorf("report has no columns")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 14, 12)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		stamp := time.Now().UTC().Format("2006-01-02 15:04 UTC")
		pdf.CellFormat(0, 8, fmt.Sprintf("Generated %s  |  page %d", stamp, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if r.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, r.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	colW := 186.0 / float64(len(r.Columns))

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(220, 53, 69)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range r.Columns {
		pdf.CellFormat(colW, 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(248, 240, 240)
	for i, row := range r.Rows {
		fill := i%2 == 1
		for _, cell := range row {
			pdf.CellFormat(colW, 7, cell, "1", 0, "", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(r.Rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(186, 7, "No records", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("emit pdf: %w", err)
	}
	return buf.Bytes(), nil
}
