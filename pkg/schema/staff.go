// Package schema defines the data structures shared across the attendance app.
package schema

import "github.com/google/uuid"

// Staff is one employee of the shop. ID is stable and unique within a
// namespace; Name is display-only and may repeat.
type Staff struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	HourlyWage    *int   `json:"hourly_wage,omitempty"`
	MealAllowance *int   `json:"meal_allowance,omitempty"`
}

// NewStaff creates a staff member with a fresh ID and no wage settings.
func NewStaff(name string) Staff {
	return Staff{ID: uuid.NewString(), Name: name}
}
