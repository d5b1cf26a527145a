package domain

// Route aggregate: an ordered stop list plus an optional weekly schedule.
// Stops and Schedule are owned by the route; timing caches and quota
// counters are process-wide engine state and never live here.
type Route struct {
	RouteID  string
	RouteKey string
	Name     string
	SchoolID string
	Stops    []StopItem
	Schedule *RouteSchedule
}

// Clone returns a deep copy of the route. Bulk schedule operations work on
// copies so callers can diff or discard results without touching the
// originals.
func (r *Route) Clone() *Route {
	out := &Route{
		RouteID:  r.RouteID,
		RouteKey: r.RouteKey,
		Name:     r.Name,
		SchoolID: r.SchoolID,
	}

	if r.Stops != nil {
		out.Stops = make([]StopItem, len(r.Stops))
		copy(out.Stops, r.Stops)
		for i := range out.Stops {
			if r.Stops[i].Location != nil {
				loc := *r.Stops[i].Location
				out.Stops[i].Location = &loc
			}
			if r.Stops[i].ETA != nil {
				eta := *r.Stops[i].ETA
				out.Stops[i].ETA = &eta
			}
		}
	}

	if r.Schedule != nil {
		sched := r.Schedule.Clone()
		out.Schedule = &sched
	}

	return out
}
