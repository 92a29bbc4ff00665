// Package export renders monthly attendance sheets for spreadsheet use.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ayu214390/attendance-app/internal/payroll"
	"github.com/ayu214390/attendance-app/pkg/schema"
)

// BuildMonthlySheet lays out one month as rows of cells: a header naming the
// month, one column per day plus summary columns, then four rows per staff
// member (clock-in times, clock-out times, meal counts, worked hours) with
// the summary values appended only to the worked-hours row.
func BuildMonthlySheet(staff []schema.Staff, records map[string]schema.AttendanceRecord, month time.Time, mode payroll.RoundingMode) [][]string {
	start, end := payroll.MonthRange(month)
	days := end.AddDate(0, 0, -1).Day()

	header := []string{start.Format("2006-01")}
	for d := 1; d <= days; d++ {
		header = append(header, strconv.Itoa(d))
	}
	header = append(header, "Hourly Wage", "Meal Unit", "Work Days", "Total Hours", "Meals", "Pay")

	rows := [][]string{header}

	for _, st := range staff {
		inRow := []string{st.Name + " (in)"}
		outRow := []string{st.Name + " (out)"}
		mealRow := []string{st.Name + " (meals)"}
		hourRow := []string{st.Name + " (hours)"}

		for d := 1; d <= days; d++ {
			day := time.Date(start.Year(), start.Month(), d, 0, 0, 0, 0, start.Location())
			rec, ok := records[schema.RecordKey(day, st.ID)]
			if !ok {
				inRow = append(inRow, "")
				outRow = append(outRow, "")
				mealRow = append(mealRow, "")
				hourRow = append(hourRow, "")
				continue
			}
			inRow = append(inRow, formatClock(rec.ClockIn))
			outRow = append(outRow, formatClock(rec.ClockOut))
			mealRow = append(mealRow, strconv.Itoa(rec.MealCount))
			if secs, defined := rec.TotalSecondsWorked(); defined {
				hourRow = append(hourRow, formatHours(float64(payroll.RoundedMinutes(secs, mode))/60.0))
			} else {
				hourRow = append(hourRow, "")
			}
		}

		sum := payroll.Summarize(records, st, month, mode)
		hourRow = append(hourRow,
			formatOptionalInt(st.HourlyWage),
			formatOptionalInt(st.MealAllowance),
			strconv.Itoa(sum.WorkDays),
			formatHours(sum.TotalHours),
			strconv.Itoa(sum.MealCount),
			strconv.Itoa(sum.Pay),
		)

		rows = append(rows, inRow, outRow, mealRow, hourRow)
	}

	return rows
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
