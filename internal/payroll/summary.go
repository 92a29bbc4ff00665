package payroll

import (
	"math"
	"sort"
	"time"

	"github.com/ayu214390/attendance-app/pkg/schema"
)

// MonthRange returns the calendar bounds of month's month in its location:
// start of the first day, exclusive end at the first day of the next month.
func MonthRange(month time.Time) (time.Time, time.Time) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	return start, start.AddDate(0, 1, 0)
}

func inRange(day, start, end time.Time) bool {
	return !day.Before(start) && day.Before(end)
}

// MonthlyTotalHours sums each in-month record's rounded payable minutes for
// the staff member and returns the result in hours. Records without both
// clock times contribute nothing.
func MonthlyTotalHours(records map[string]schema.AttendanceRecord, staffID string, month time.Time, mode RoundingMode) float64 {
	start, end := MonthRange(month)
	totalMinutes := 0
	for _, rec := range records {
		if rec.StaffID != staffID || !inRange(rec.Date, start, end) {
			continue
		}
		secs, ok := rec.TotalSecondsWorked()
		if !ok {
			continue
		}
		totalMinutes += RoundedMinutes(secs, mode)
	}
	return float64(totalMinutes) / 60.0
}

// MonthlyMealCount sums the meals logged in the month, clamping any
// (historically possible) negative counts to zero.
func MonthlyMealCount(records map[string]schema.AttendanceRecord, staffID string, month time.Time) int {
	start, end := MonthRange(month)
	total := 0
	for _, rec := range records {
		if rec.StaffID != staffID || !inRange(rec.Date, start, end) {
			continue
		}
		if rec.MealCount > 0 {
			total += rec.MealCount
		}
	}
	return total
}

// MonthlyDailyRecords returns the staff member's in-month records sorted
// ascending by date.
func MonthlyDailyRecords(records map[string]schema.AttendanceRecord, staffID string, month time.Time) []schema.AttendanceRecord {
	start, end := MonthRange(month)
	var out []schema.AttendanceRecord
	for _, rec := range records {
		if rec.StaffID == staffID && inRange(rec.Date, start, end) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// WorkDays counts the in-month records with a defined worked total.
func WorkDays(records map[string]schema.AttendanceRecord, staffID string, month time.Time) int {
	start, end := MonthRange(month)
	days := 0
	for _, rec := range records {
		if rec.StaffID != staffID || !inRange(rec.Date, start, end) {
			continue
		}
		if _, ok := rec.TotalSecondsWorked(); ok {
			days++
		}
	}
	return days
}

// Pay computes the monthly amount: wage on rounded hours minus the per-meal
// allowance already advanced as meals. The result may be negative.
func Pay(totalHours float64, hourlyWage, mealAllowance, mealCount int) int {
	return int(math.Round(totalHours*float64(hourlyWage))) - mealAllowance*mealCount
}

// StaffSummary is one staff member's month at a glance.
type StaffSummary struct {
	Staff      schema.Staff `json:"staff"`
	TotalHours float64      `json:"total_hours"`
	MealCount  int          `json:"meal_count"`
	WorkDays   int          `json:"work_days"`
	Pay        int          `json:"pay"`
}

// Summarize builds a StaffSummary for one staff member and month. Staff
// without a wage get zero base pay but still owe their meal deductions.
func Summarize(records map[string]schema.AttendanceRecord, st schema.Staff, month time.Time, mode RoundingMode) StaffSummary {
	hours := MonthlyTotalHours(records, st.ID, month, mode)
	meals := MonthlyMealCount(records, st.ID, month)

	wage, allowance := 0, 0
	if st.HourlyWage != nil {
		wage = *st.HourlyWage
	}
	if st.MealAllowance != nil {
		allowance = *st.MealAllowance
	}

	return StaffSummary{
		Staff:      st,
		TotalHours: hours,
		MealCount:  meals,
		WorkDays:   WorkDays(records, st.ID, month),
		Pay:        Pay(hours, wage, allowance, meals),
	}
}
