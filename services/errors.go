package services

import "errors"

// Reportable, non-fatal outcomes. Handlers translate these into empty
// states or 4xx responses instead of 5xx errors.
var (
	// ErrNoActionAvailable: the catalog is empty or fully hidden for
	// this user, even after the degraded fallback path.
	ErrNoActionAvailable = errors.New("no action available")

	// ErrAssignmentNotFound: no assignment row exists for the
	// requested (user, date).
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrAlreadyEnrolled: the user has an active pass through this
	// program already.
	ErrAlreadyEnrolled = errors.New("already enrolled in program")
)
