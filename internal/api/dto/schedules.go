package dto

type ExceptionPayload struct {
	Date   string `json:"date" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=no_service special_service"`
	Reason string `json:"reason"`
}

type SchedulePayload struct {
	OperatingDays []int              `json:"operating_days" validate:"required,min=1,dive,min=0,max=6"`
	StartDate     string             `json:"start_date" validate:"required"`
	EndDate       string             `json:"end_date"`
	Exceptions    []ExceptionPayload `json:"exceptions" validate:"dive"`
}

type SaveScheduleRequest struct {
	RouteID  string          `json:"route_id" validate:"required"`
	Schedule SchedulePayload `json:"schedule" validate:"required"`
}

type ApplyExceptionRequest struct {
	SchoolID  string           `json:"school_id" validate:"required"`
	Exception ExceptionPayload `json:"exception" validate:"required"`
}

// EndDate empty ⇒ remove by the single StartDate calendar day.
type RemoveExceptionRequest struct {
	SchoolID  string `json:"school_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"`
}

type BulkUpdateResponse struct {
	UpdatedRouteIDs []string `json:"updated_route_ids"`
}

// Returned when persistence fails partway through a bulk operation so the
// caller can scope a retry.
type BulkFailureResponse struct {
	Error         string   `json:"error"`
	SavedRouteIDs []string `json:"saved_route_ids"`
}
