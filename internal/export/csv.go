package export

import (
	"encoding/csv"
	"io"
	"time"
)

// utf8BOM makes spreadsheet apps detect the encoding correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the sheet as UTF-8 CSV with a byte-order mark. Fields
// containing commas, quotes or newlines are quoted with internal quotes
// doubled per RFC 4180.
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFileName names a monthly export file, e.g. "attendance_2026-08.csv".
func CSVFileName(month time.Time) string {
	return "attendance_" + month.Format("2006-01") + ".csv"
}
