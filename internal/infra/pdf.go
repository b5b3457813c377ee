package infra

// pdf.go renders a ReportDocument to an A4 landscape PDF with go-pdf/fpdf:
//   - Title and generation timestamp
//   - Summary block (label / value)
//   - One bordered table per section, header row shaded, page breaks repeat headers

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 6.0
)

// RenderPDF writes doc under dir and returns the file path.
func RenderPDF(doc ReportDocument, dir, baseName string) (string, error) {
	filePath, err := reportPath(dir, baseName, "pdf", doc.GeneratedAt)
	if err != nil {
		return "", err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	// Core fonts are cp1252; the naira sign and other runes need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Generated "+doc.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Summary ──────────────────────────────────────────────────────────────
	if len(doc.Summary) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 7, "Summary", "", 1, "L", false, 0, "")
		for _, kv := range doc.Summary {
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(contentW*0.4, pdfRowHeight, tr(kv[0]), "B", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(contentW*0.3, pdfRowHeight, tr(kv[1]), "B", 1, "R", false, 0, "")
		}
		pdf.Ln(5)
	}

	// ── Tables ───────────────────────────────────────────────────────────────
	for _, t := range doc.Tables {
		widths := columnWidths(t, contentW)

		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 7, tr(t.Title), "", 1, "L", false, 0, "")

		header := func() {
			pdf.SetFont("Helvetica", "B", 8)
			pdf.SetFillColor(68, 114, 196)
			pdf.SetTextColor(255, 255, 255)
			for i, h := range t.Headers {
				pdf.CellFormat(widths[i], pdfRowHeight, tr(h), "1", 0, "C", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "", 8)
		}
		header()

		_, pageH := pdf.GetPageSize()
		for _, row := range t.Rows {
			if pdf.GetY()+pdfRowHeight > pageH-pdfMargin {
				pdf.AddPage()
				header()
			}
			for i := range t.Headers {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(widths[i], pdfRowHeight, tr(cell), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		if len(t.Rows) == 0 {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(contentW, pdfRowHeight, "No records", "1", 1, "C", false, 0, "")
		}
		pdf.Ln(5)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func columnWidths(t ReportTable, total float64) []float64 {
	out := make([]float64, len(t.Headers))
	if len(t.Widths) != len(t.Headers) {
		for i := range out {
			out[i] = total / float64(len(out))
		}
		return out
	}
	sum := 0.0
	for _, w := range t.Widths {
		sum += w
	}
	for i, w := range t.Widths {
		out[i] = total * w / sum
	}
	return out
}
