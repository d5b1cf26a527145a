package domain

import (
	"fmt"
	"slices"
	"time"
)

// Calendar-date override layered on top of a route's weekly pattern.
type ExceptionType string

const (
	ExceptionNoService      ExceptionType = "no_service"
	ExceptionSpecialService ExceptionType = "special_service"
)

func (t ExceptionType) Valid() bool {
	return t == ExceptionNoService || t == ExceptionSpecialService
}

// ScheduleException suspends or alters service on a single calendar day.
// Dates are compared by calendar day; time-of-day is ignored.
type ScheduleException struct {
	Date   time.Time
	Type   ExceptionType
	Reason string
}

// RouteSchedule is a per-route value object: weekly operating days, an
// effective date window, and date-keyed exceptions. Mutators are pure
// functions returning a modified copy; the Exceptions list itself does not
// enforce uniqueness by date (the fleet-wide bulk applier does).
type RouteSchedule struct {
	OperatingDays  []int // weekday integers 0-6, Sunday=0, sorted ascending
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
	Exceptions     []ScheduleException
}

// Clone returns a copy sharing no slice or pointer state with the receiver.
func (s RouteSchedule) Clone() RouteSchedule {
	out := RouteSchedule{EffectiveStart: s.EffectiveStart}
	out.OperatingDays = slices.Clone(s.OperatingDays)
	out.Exceptions = slices.Clone(s.Exceptions)
	if s.EffectiveEnd != nil {
		end := *s.EffectiveEnd
		out.EffectiveEnd = &end
	}
	return out
}

// DefaultSchedule is the schedule assigned when a fleet-wide exception is
// applied to a route that has none: Monday through Friday, effective from
// the current calendar day, no end date.
func DefaultSchedule(now time.Time) RouteSchedule {
	return RouteSchedule{
		OperatingDays:  []int{1, 2, 3, 4, 5},
		EffectiveStart: StartOfDay(now),
	}
}

// ToggleOperatingDay flips membership of day (0-6) in the operating set and
// keeps the set sorted ascending.
func ToggleOperatingDay(s RouteSchedule, day int) (RouteSchedule, error) {
	if day < 0 || day > 6 {
		return s, fmt.Errorf("toggle operating day: day %d out of range 0-6: %w", day, ErrInvalidSchedule)
	}

	out := s.Clone()
	if i := slices.Index(out.OperatingDays, day); i >= 0 {
		out.OperatingDays = slices.Delete(out.OperatingDays, i, i+1)
	} else {
		out.OperatingDays = append(out.OperatingDays, day)
		slices.Sort(out.OperatingDays)
	}
	return out, nil
}

// SetEffectiveStart moves the start of the effective window. An end date the
// new start would pass is cleared rather than left inconsistent.
func SetEffectiveStart(s RouteSchedule, date time.Time) RouteSchedule {
	out := s.Clone()
	out.EffectiveStart = date
	if out.EffectiveEnd != nil && out.EffectiveEnd.Before(date) {
		out.EffectiveEnd = nil
	}
	return out
}

// SetEffectiveEnd sets the end of the effective window. A date before the
// current start is rejected and the schedule is returned unchanged.
func SetEffectiveEnd(s RouteSchedule, date time.Time) (RouteSchedule, error) {
	if date.Before(s.EffectiveStart) {
		return s, fmt.Errorf("set effective end: end date before start date: %w", ErrInvalidSchedule)
	}
	out := s.Clone()
	out.EffectiveEnd = &date
	return out, nil
}

// AddException appends an exception. Same-date duplicates are permitted at
// this layer; replace-on-date-collision is a behavior of the fleet-wide
// bulk applier, not of single-route editing.
func AddException(s RouteSchedule, e ScheduleException) RouteSchedule {
	out := s.Clone()
	out.Exceptions = append(out.Exceptions, e)
	return out
}

// RemoveException removes the exception at index.
func RemoveException(s RouteSchedule, index int) (RouteSchedule, error) {
	if index < 0 || index >= len(s.Exceptions) {
		return s, fmt.Errorf("remove exception: index %d out of range: %w", index, ErrInvalidSchedule)
	}
	out := s.Clone()
	out.Exceptions = slices.Delete(out.Exceptions, index, index+1)
	return out, nil
}

// ValidateSchedule enforces the save-time invariants: at least one operating
// day, a present start date, an end date (when set) not before the start,
// and a date on every exception. Mutators do not call this; the persistence
// path does, before any write.
func ValidateSchedule(s RouteSchedule) error {
	if len(s.OperatingDays) == 0 {
		return fmt.Errorf("validate schedule: no operating days selected: %w", ErrInvalidSchedule)
	}
	for _, d := range s.OperatingDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("validate schedule: operating day %d out of range 0-6: %w", d, ErrInvalidSchedule)
		}
	}
	if s.EffectiveStart.IsZero() {
		return fmt.Errorf("validate schedule: effective start date is required: %w", ErrInvalidSchedule)
	}
	if s.EffectiveEnd != nil && s.EffectiveEnd.Before(s.EffectiveStart) {
		return fmt.Errorf("validate schedule: end date before start date: %w", ErrInvalidSchedule)
	}
	for i, e := range s.Exceptions {
		if e.Date.IsZero() {
			return fmt.Errorf("validate schedule: exception #%d has no date: %w", i+1, ErrInvalidSchedule)
		}
	}
	return nil
}

// SameCalendarDay reports whether two instants fall on the same calendar
// day in a's location.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to 00:00:00.000 of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay advances t to 23:59:59.999999999 of its calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
