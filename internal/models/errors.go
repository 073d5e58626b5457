package models

import "errors"

var (
	// ErrInvalidInput covers malformed dates and missing required identifiers.
	ErrInvalidInput = errors.New("invalid input")

	ErrPolicyNotFound  = errors.New("policy not found")
	ErrNoActivePolicy  = errors.New("no active policy found")
	ErrWeekLockMissing = errors.New("week lock not found")

	// ErrPartialComputation is returned by weekly auto mode with a strict
	// policy when one of the seven daily computations fails.
	ErrPartialComputation = errors.New("partial computation failure")
)
