package schema

import (
	"time"

	"github.com/google/uuid"
)

// DateKeyFormat is the calendar-day layout used in record keys and backup
// file names.
const DateKeyFormat = "2006-01-02"

// AttendanceRecord is one staff member's attendance for one calendar day.
// Date is normalized to start of day in the local time zone.
type AttendanceRecord struct {
	ID           string     `json:"id"`
	StaffID      string     `json:"staff_id"`
	Date         time.Time  `json:"date"`
	ClockIn      *time.Time `json:"clock_in,omitempty"`
	ClockOut     *time.Time `json:"clock_out,omitempty"`
	BreakStart   *time.Time `json:"break_start,omitempty"`
	BreakMinutes int        `json:"break_minutes"`
	MealCount    int        `json:"meal_count"`
}

// NewRecord creates an empty record for the given staff and day.
func NewRecord(staffID string, day time.Time) AttendanceRecord {
	return AttendanceRecord{
		ID:      uuid.NewString(),
		StaffID: staffID,
		Date:    StartOfDay(day),
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RecordKey derives the canonical "<yyyy-MM-dd>_<staffID>" lookup key for a
// staff-day pair. It is computable without scanning the collection.
func RecordKey(day time.Time, staffID string) string {
	return StartOfDay(day).Format(DateKeyFormat) + "_" + staffID
}

// IsOnBreak reports whether a break is currently open.
func (r AttendanceRecord) IsOnBreak() bool {
	return r.BreakStart != nil
}

// TotalSecondsWorked returns the worked seconds net of completed breaks,
// clamped to zero. ok is false when either clock time is missing.
func (r AttendanceRecord) TotalSecondsWorked() (int64, bool) {
	if r.ClockIn == nil || r.ClockOut == nil {
		return 0, false
	}
	secs := int64(r.ClockOut.Sub(*r.ClockIn)/time.Second) - int64(r.BreakMinutes)*60
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

// Snapshot pairs the full staff list and record map of one namespace at a
// point in time. It is the unit of persistence and of backup.
type Snapshot struct {
	Staff   []Staff                     `json:"staff"`
	Records map[string]AttendanceRecord `json:"records"`
}
