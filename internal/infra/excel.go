package infra

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// RenderExcel writes doc as an .xlsx workbook under dir: one sheet per table
// plus a Summary sheet when doc has summary lines. Returns the file path.
func RenderExcel(doc ReportDocument, dir, baseName string) (string, error) {
	filePath, err := reportPath(dir, baseName, "xlsx", doc.GeneratedAt)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("excel: header style: %w", err)
	}

	for _, t := range doc.Tables {
		name := sheetName(t.Title)
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("excel: sheet %q: %w", name, err)
		}
		if err := writeRow(f, name, 1, t.Headers); err != nil {
			return "", err
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return "", fmt.Errorf("excel: style %q: %w", name, err)
		}
		for i, row := range t.Rows {
			if err := writeRow(f, name, i+2, row); err != nil {
				return "", err
			}
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		_ = f.SetColWidth(name, "A", lastCol, 18)
	}

	if len(doc.Summary) > 0 {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return "", fmt.Errorf("excel: summary sheet: %w", err)
		}
		_ = f.SetCellValue(summarySheet, "A1", doc.Title)
		_ = f.SetCellValue(summarySheet, "A2", "Generated "+doc.GeneratedAt.Format("2006-01-02 15:04"))
		for i, kv := range doc.Summary {
			if err := writeRow(f, summarySheet, i+4, []string{kv[0], kv[1]}); err != nil {
				return "", err
			}
		}
		_ = f.SetColWidth(summarySheet, "A", "B", 32)
	}

	// excelize starts with "Sheet1"; drop it once real sheets exist.
	if len(doc.Tables) > 0 || len(doc.Summary) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return "", fmt.Errorf("excel: drop default sheet: %w", err)
		}
		f.SetActiveSheet(0)
	}

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("excel: save: %w", err)
	}
	return filePath, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("excel: %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// sheetName trims titles to Excel's 31 character limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
