package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ReportTable is one tabular section of a report: a PDF table or an Excel sheet.
type ReportTable struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Widths are relative column weights for the PDF layout; nil means equal.
	Widths []float64
}

// ReportDocument is the renderer-neutral form of an export.
type ReportDocument struct {
	Title       string
	GeneratedAt time.Time
	// Summary lines are label/value pairs printed before the tables.
	Summary [][2]string
	Tables  []ReportTable
}

// reportPath ensures dir exists and returns dir/<base>_<timestamp>.<ext>.
func reportPath(dir, base, ext string, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", base, at.Format("20060102_150405"), ext)
	return filepath.Join(dir, name), nil
}
