package export

import (
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance"

// BuildWorkbook renders the sheet rows into an xlsx workbook for owners who
// want the export directly in spreadsheet form.
func BuildWorkbook(rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for r, row := range rows {
		for c, val := range row {
			if val == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// XLSXFileName names a monthly workbook file, e.g. "attendance_2026-08.xlsx".
func XLSXFileName(month time.Time) string {
	return "attendance_" + month.Format("2006-01") + ".xlsx"
}
