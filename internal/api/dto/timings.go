package dto

import "time"

type TimingStopRequest struct {
	StopID  string   `json:"stop_id" validate:"required"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lng     *float64 `json:"lng" validate:"omitempty,min=-180,max=180"`
}

// StartTime accepts RFC3339 or the administration UI's wall-clock format
// ("08:00 AM", anchored to the current calendar day).
type TimingRequest struct {
	Stops     []TimingStopRequest `json:"stops" validate:"required,dive"`
	StartTime string              `json:"start_time" validate:"required"`
}

type TimingStopResponse struct {
	StopID string    `json:"stop_id"`
	Name   string    `json:"name"`
	ETA    time.Time `json:"eta"`
}

type TimingResponse struct {
	Stops                []TimingStopResponse `json:"stops"`
	TotalDurationMinutes int                  `json:"total_duration_minutes"`
	CalculatedEndTime    time.Time            `json:"calculated_end_time"`
	PathEncoding         string               `json:"path_encoding,omitempty"`
	Source               string               `json:"source"`
}
