package dto

type StopResponse struct {
	StopID  string   `json:"stop_id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

type ScheduleResponse struct {
	OperatingDays []int              `json:"operating_days"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date,omitempty"`
	Exceptions    []ExceptionPayload `json:"exceptions,omitempty"`
}

type RouteResponse struct {
	RouteID  string            `json:"route_id"`
	RouteKey string            `json:"route_key"`
	Name     string            `json:"name"`
	SchoolID string            `json:"school_id"`
	Stops    []StopResponse    `json:"stops"`
	Schedule *ScheduleResponse `json:"schedule,omitempty"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

type QuotaResponse struct {
	PercentUsed map[string]float64 `json:"percent_used"`
}
