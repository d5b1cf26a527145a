package services

import (
	"time"

	"route-schedule-service/internal/domain"
)

// ExceptionBulkApplier applies or removes schedule exceptions across every
// route in a fleet, one route at a time, entirely in memory. The caller
// persists the returned routes; replace and removal are idempotent, so a
// failed batch can be retried whole.
type ExceptionBulkApplier struct {
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewExceptionBulkApplier() *ExceptionBulkApplier {
	return &ExceptionBulkApplier{Now: time.Now}
}

func (a *ExceptionBulkApplier) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// ApplyToAll layers exc onto every route. Routes without a schedule get the
// default Monday-Friday schedule first. Within each route an existing
// exception on the same calendar day is replaced in place (last write wins);
// otherwise exc is appended. Afterwards every route holds at most one
// exception for that date, even though single-route editing permits
// duplicates.
func (a *ExceptionBulkApplier) ApplyToAll(routes []*domain.Route, exc domain.ScheduleException) []*domain.Route {
	out := make([]*domain.Route, 0, len(routes))
	for _, r := range routes {
		updated := r.Clone()
		if updated.Schedule == nil {
			sched := domain.DefaultSchedule(a.now())
			updated.Schedule = &sched
		}

		replaced := false
		for i, existing := range updated.Schedule.Exceptions {
			if domain.SameCalendarDay(existing.Date, exc.Date) {
				updated.Schedule.Exceptions[i] = exc
				replaced = true
				break
			}
		}
		if !replaced {
			updated.Schedule.Exceptions = append(updated.Schedule.Exceptions, exc)
		}

		out = append(out, updated)
	}
	return out
}

// RemoveByDate drops every exception matching date by calendar day. Routes
// without a schedule are left untouched, not treated as an error.
func (a *ExceptionBulkApplier) RemoveByDate(routes []*domain.Route, date time.Time) []*domain.Route {
	return a.removeMatching(routes, func(e domain.ScheduleException) bool {
		return domain.SameCalendarDay(e.Date, date)
	})
}

// RemoveByDateRange drops every exception whose date falls within the
// inclusive range, after normalizing startDate to the beginning and endDate
// to the end of their calendar days.
func (a *ExceptionBulkApplier) RemoveByDateRange(routes []*domain.Route, startDate, endDate time.Time) []*domain.Route {
	from := domain.StartOfDay(startDate)
	to := domain.EndOfDay(endDate)
	return a.removeMatching(routes, func(e domain.ScheduleException) bool {
		return !e.Date.Before(from) && !e.Date.After(to)
	})
}

func (a *ExceptionBulkApplier) removeMatching(routes []*domain.Route, match func(domain.ScheduleException) bool) []*domain.Route {
	out := make([]*domain.Route, 0, len(routes))
	for _, r := range routes {
		updated := r.Clone()
		if updated.Schedule != nil {
			kept := updated.Schedule.Exceptions[:0]
			for _, e := range updated.Schedule.Exceptions {
				if !match(e) {
					kept = append(kept, e)
				}
			}
			updated.Schedule.Exceptions = kept
		}
		out = append(out, updated)
	}
	return out
}
