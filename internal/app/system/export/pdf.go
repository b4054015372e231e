// internal/app/system/export/pdf.go
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

const (
	pdfMargin   = 10.0
	pdfRowH     = 7.0
	pdfFontSize = 9.0
)

// PDFBytes renders t as a landscape A4 table. Columns share the page width
// equally; long cells are cut to fit. The header row repeats on every page.
func PDFBytes(t Table) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(t.Title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	cols := max(len(t.Headers), 1)
	colW := (pageW - 2*pdfMargin) / float64(cols)

	fit := func(s string) string {
		s = tr(s)
		for len(s) > 0 && pdf.GetStringWidth(s) > colW-2 {
			s = s[:len(s)-1]
		}
		return s
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, pdfRowH, fit(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d rows, generated %s", len(t.Rows), time.Now().UTC().Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowH > pageH-pdfMargin {
			pdf.AddPage()
			header()
		}
		for i := 0; i < cols; i++ {
			var v string
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(colW, pdfRowH, fit(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}
