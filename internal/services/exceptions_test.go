package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-schedule-service/internal/domain"
)

func fleet() []*domain.Route {
	return []*domain.Route{
		{RouteID: "r1", SchoolID: "s1", Name: "North Loop"},
		{RouteID: "r2", SchoolID: "s1", Name: "South Loop"},
		{RouteID: "r3", SchoolID: "s1", Name: "Express"},
	}
}

func testApplier() *ExceptionBulkApplier {
	a := NewExceptionBulkApplier()
	a.Now = func() time.Time {
		return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	return a
}

func TestApplyToAllCreatesDefaultSchedules(t *testing.T) {
	applier := testApplier()

	exc := domain.ScheduleException{
		Date: time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC),
		Type: domain.ExceptionNoService,
	}

	routes := fleet()
	updated := applier.ApplyToAll(routes, exc)

	require.Len(t, updated, 3)
	for _, r := range updated {
		require.NotNil(t, r.Schedule, "route without schedule gets a default one")
		assert.Equal(t, []int{1, 2, 3, 4, 5}, r.Schedule.OperatingDays)
		assert.True(t, r.Schedule.EffectiveStart.Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
		require.Len(t, r.Schedule.Exceptions, 1)
		assert.Equal(t, domain.ExceptionNoService, r.Schedule.Exceptions[0].Type)
	}

	// Originals are untouched.
	for _, r := range routes {
		assert.Nil(t, r.Schedule)
	}
}

func TestApplyToAllReplacesSameDate(t *testing.T) {
	applier := testApplier()
	date := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)

	first := domain.ScheduleException{Date: date, Type: domain.ExceptionNoService}
	updated := applier.ApplyToAll(fleet(), first)

	// Same calendar day, different time-of-day and payload: must replace.
	second := domain.ScheduleException{
		Date:   date.Add(9 * time.Hour),
		Type:   domain.ExceptionSpecialService,
		Reason: "x",
	}
	updated = applier.ApplyToAll(updated, second)

	for _, r := range updated {
		require.Len(t, r.Schedule.Exceptions, 1, "same-date apply must replace, not duplicate")
		assert.Equal(t, domain.ExceptionSpecialService, r.Schedule.Exceptions[0].Type)
		assert.Equal(t, "x", r.Schedule.Exceptions[0].Reason)
	}
}

func TestApplyToAllIsIdempotent(t *testing.T) {
	applier := testApplier()
	exc := domain.ScheduleException{
		Date: time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC),
		Type: domain.ExceptionNoService,
	}

	once := applier.ApplyToAll(fleet(), exc)
	twice := applier.ApplyToAll(once, exc)

	for i := range twice {
		assert.Equal(t, once[i].Schedule.Exceptions, twice[i].Schedule.Exceptions)
		require.Len(t, twice[i].Schedule.Exceptions, 1)
	}
}

func TestApplyToAllPreservesOtherDates(t *testing.T) {
	applier := testApplier()

	xmas := domain.ScheduleException{Date: time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), Type: domain.ExceptionNoService}
	newYear := domain.ScheduleException{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Type: domain.ExceptionNoService}

	updated := applier.ApplyToAll(applier.ApplyToAll(fleet(), xmas), newYear)

	for _, r := range updated {
		require.Len(t, r.Schedule.Exceptions, 2)
	}
}

func TestRemoveByDateMatchesCalendarDay(t *testing.T) {
	applier := testApplier()

	sched := domain.RouteSchedule{
		OperatingDays:  []int{1, 2, 3},
		EffectiveStart: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Exceptions: []domain.ScheduleException{
			{Date: time.Date(2025, 12, 25, 8, 30, 0, 0, time.UTC), Type: domain.ExceptionNoService},
			{Date: time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC), Type: domain.ExceptionNoService},
		},
	}
	routes := []*domain.Route{
		{RouteID: "r1", Schedule: &sched},
		{RouteID: "r2"}, // no schedule: untouched, not an error
	}

	updated := applier.RemoveByDate(routes, time.Date(2025, 12, 25, 23, 0, 0, 0, time.UTC))

	require.Len(t, updated[0].Schedule.Exceptions, 1)
	assert.True(t, updated[0].Schedule.Exceptions[0].Date.Equal(time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, updated[1].Schedule)
}

func TestRemoveByDateRangeSingleDayEqualsRemoveByDate(t *testing.T) {
	day := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)

	build := func() []*domain.Route {
		sched := domain.RouteSchedule{
			OperatingDays:  []int{1},
			EffectiveStart: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			Exceptions: []domain.ScheduleException{
				{Date: day.Add(6 * time.Hour), Type: domain.ExceptionNoService},
				{Date: day.AddDate(0, 0, 1), Type: domain.ExceptionSpecialService},
				{Date: day.AddDate(0, 0, -1), Type: domain.ExceptionNoService},
			},
		}
		return []*domain.Route{{RouteID: "r1", Schedule: &sched}}
	}

	applier := testApplier()
	byDate := applier.RemoveByDate(build(), day)
	byRange := applier.RemoveByDateRange(build(), day, day)

	assert.Equal(t, byDate[0].Schedule.Exceptions, byRange[0].Schedule.Exceptions)
	require.Len(t, byRange[0].Schedule.Exceptions, 2)
}

func TestRemoveByDateRangeNormalizesBounds(t *testing.T) {
	applier := testApplier()

	sched := domain.RouteSchedule{
		OperatingDays:  []int{1},
		EffectiveStart: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Exceptions: []domain.ScheduleException{
			{Date: time.Date(2025, 12, 20, 0, 30, 0, 0, time.UTC), Type: domain.ExceptionNoService},
			{Date: time.Date(2025, 12, 22, 23, 45, 0, 0, time.UTC), Type: domain.ExceptionNoService},
			{Date: time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC), Type: domain.ExceptionNoService},
		},
	}
	routes := []*domain.Route{{RouteID: "r1", Schedule: &sched}}

	// Mid-day bounds still cover the whole calendar days.
	updated := applier.RemoveByDateRange(routes,
		time.Date(2025, 12, 20, 15, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 22, 1, 0, 0, 0, time.UTC),
	)

	require.Len(t, updated[0].Schedule.Exceptions, 1)
	assert.True(t, updated[0].Schedule.Exceptions[0].Date.Equal(time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC)))
}
