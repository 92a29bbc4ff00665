package engine

import "errors"

var (
	// ErrStaffNotFound is returned when a referenced staff member does not
	// exist in the current namespace.
	ErrStaffNotFound = errors.New("staff not found")
)
