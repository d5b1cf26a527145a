package domain

import "errors"

var (
	// Returned when a schedule fails save-time validation. Mutators never
	// silently correct invalid input; the one exception is
	// SetEffectiveStart clearing an end date the new start would pass.
	ErrInvalidSchedule = errors.New("invalid schedule state")

	// Returned when a full timing or geometry computation is requested
	// with fewer than two resolved stops.
	ErrInsufficientStops = errors.New("route requires at least 2 stops with resolved coordinates")
)
