// Package xlsx экспортирует отчеты сверки в Excel формат.
package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/sqlbridge/pkg/compare"
)

// WriteReports - export comparison reports to XLSX file
//
// Creates an Excel file with one row per check: status, row counts,
// mismatched columns, durations and the SQL sent to each backend.
//
// Example:
//
//	err := xlsx.WriteReports(reports, "report.xlsx", "Checks")
func WriteReports(reports []*compare.Report, filePath string, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Checks"
	}

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	failStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#CC0000"},
	})
	passStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#007700"},
	})

	headers := []string{
		"Check", "Status", "Rows A", "Rows B", "Counts Equal",
		"Content Equal", "Mismatched Columns", "Duration A (ms)",
		"Duration B (ms)", "SQL A", "SQL B", "Error",
	}
	for col, header := range headers {
		cell := columnName(col+1) + "1"
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, r := range reports {
		row := rowIdx + 2

		status := "PASS"
		style := passStyle
		if !r.Passed() {
			status = "FAIL"
			style = failStyle
		}

		mismatched := ""
		for i, col := range r.MismatchedColumns {
			if i > 0 {
				mismatched += ", "
			}
			mismatched += col
		}

		values := []any{
			r.CheckName, status, r.RowCountA, r.RowCountB,
			r.RowCountEqual, r.ContentEqual, mismatched,
			r.DurationA.Milliseconds(), r.DurationB.Milliseconds(),
			r.SQLA, r.SQLB, r.Error,
		}
		for col, v := range values {
			cell := columnName(col+1) + strconv.Itoa(row)
			f.SetCellValue(sheetName, cell, v)
		}

		statusCell := columnName(2) + strconv.Itoa(row)
		f.SetCellStyle(sheetName, statusCell, statusCell, style)
	}

	for col := range headers {
		name := columnName(col + 1)
		f.SetColWidth(sheetName, name, name, 18)
	}

	return f.SaveAs(filePath)
}

// columnName - convert column number to Excel column name (1 -> A, 27 -> AA)
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
