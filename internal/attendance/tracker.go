// Package attendance implements the clock-in/break/clock-out/meal state
// machine over the record store. Guard violations (clocking in twice, ending
// a break that never started) are silent no-ops rather than errors: a punch
// terminal has no meaningful way to surface them.
package attendance

import (
	"time"

	"github.com/ayu214390/attendance-app/internal/engine"
	"github.com/ayu214390/attendance-app/pkg/schema"
)

// Tracker runs attendance transitions against "today's" record for a staff
// member. Every transition reads, modifies and writes back through the
// store's canonical staff-day key and persists immediately.
type Tracker struct {
	store *engine.Store
	now   func() time.Time
}

// NewTracker returns a tracker using the wall clock.
func NewTracker(store *engine.Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// ClockIn starts the working day. A no-op when already clocked in today.
func (t *Tracker) ClockIn(staffID string) schema.AttendanceRecord {
	now := t.now()
	rec := t.store.RecordFor(staffID, now)
	if rec.ClockIn != nil {
		return rec
	}
	rec.ClockIn = &now
	rec.ClockOut = nil
	t.store.PutRecord(rec)
	return rec
}

// ClockOut ends the working day, first closing any open break. A no-op when
// not clocked in.
func (t *Tracker) ClockOut(staffID string) schema.AttendanceRecord {
	now := t.now()
	rec := t.store.RecordFor(staffID, now)
	if rec.ClockIn == nil {
		return rec
	}
	if rec.BreakStart != nil {
		closeBreak(&rec, now)
	}
	rec.ClockOut = &now
	t.store.PutRecord(rec)
	return rec
}

// StartBreak opens a break. Requires being clocked in and not already on one.
func (t *Tracker) StartBreak(staffID string) schema.AttendanceRecord {
	now := t.now()
	rec := t.store.RecordFor(staffID, now)
	if rec.ClockIn == nil || rec.BreakStart != nil {
		return rec
	}
	rec.BreakStart = &now
	t.store.PutRecord(rec)
	return rec
}

// EndBreak closes the open break, adding the elapsed whole minutes to the
// day's accumulated break time. A no-op when no break is open.
func (t *Tracker) EndBreak(staffID string) schema.AttendanceRecord {
	now := t.now()
	rec := t.store.RecordFor(staffID, now)
	if rec.BreakStart == nil {
		return rec
	}
	closeBreak(&rec, now)
	t.store.PutRecord(rec)
	return rec
}

// AddMeal logs one meal for today. No upper bound at this layer.
func (t *Tracker) AddMeal(staffID string) schema.AttendanceRecord {
	rec := t.store.RecordFor(staffID, t.now())
	rec.MealCount++
	t.store.PutRecord(rec)
	return rec
}

// UpdateRecord overwrites a day's fields directly (owner edit mode). Any
// in-progress break is discarded and counters are clamped to non-negative.
func (t *Tracker) UpdateRecord(staffID string, day time.Time, clockIn, clockOut *time.Time, breakMinutes, mealCount int) schema.AttendanceRecord {
	rec := t.store.RecordFor(staffID, day)
	rec.ClockIn = clockIn
	rec.ClockOut = clockOut
	rec.BreakStart = nil
	if breakMinutes < 0 {
		breakMinutes = 0
	}
	if mealCount < 0 {
		mealCount = 0
	}
	rec.BreakMinutes = breakMinutes
	rec.MealCount = mealCount
	t.store.PutRecord(rec)
	return rec
}

// closeBreak folds the elapsed break into BreakMinutes, flooring to whole
// minutes and never going negative.
func closeBreak(rec *schema.AttendanceRecord, now time.Time) {
	elapsed := int(now.Sub(*rec.BreakStart) / time.Minute)
	if elapsed > 0 {
		rec.BreakMinutes += elapsed
	}
	rec.BreakStart = nil
}
