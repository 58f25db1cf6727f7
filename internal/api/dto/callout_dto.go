package dto

import (
	"time"

	"github.com/spec-kit/sro-service/internal/domain"
)

// CreateCalloutRequest payload.
type CreateCalloutRequest struct {
	CustomerID      string                 `json:"customer_id"`
	RigNumber       string                 `json:"rig_number"`
	FieldName       string                 `json:"field_name"`
	WellID          *string                `json:"well_id"`
	HoleSection     *string                `json:"hole_section"`
	ServiceCategory domain.ServiceCategory `json:"service_category"`
	SurveyOptions   domain.SurveyOptions   `json:"survey_options"`
	StartDepth      *float64               `json:"start_depth"`
	EndDepth        *float64               `json:"end_depth"`
	Latitude        *float64               `json:"latitude"`
	Longitude       *float64               `json:"longitude"`
	Notes           string                 `json:"notes"`
}

// PatchCalloutRequest payload; absent fields stay unchanged.
type PatchCalloutRequest struct {
	CustomerID      *string                 `json:"customer_id"`
	RigNumber       *string                 `json:"rig_number"`
	FieldName       *string                 `json:"field_name"`
	WellID          *string                 `json:"well_id"`
	HoleSection     *string                 `json:"hole_section"`
	ServiceCategory *domain.ServiceCategory `json:"service_category"`
	SurveyOptions   *domain.SurveyOptions   `json:"survey_options"`
	StartDepth      *float64                `json:"start_depth"`
	EndDepth        *float64                `json:"end_depth"`
	ClearDepths     bool                    `json:"clear_depths"`
	Latitude        *float64                `json:"latitude"`
	Longitude       *float64                `json:"longitude"`
	Notes           *string                 `json:"notes"`
}

// CalloutResponse carries a callout with its read-time relationship joins.
type CalloutResponse struct {
	ID              string                 `json:"id"`
	Number          string                 `json:"number"`
	CustomerID      string                 `json:"customer_id"`
	RigNumber       string                 `json:"rig_number"`
	FieldName       string                 `json:"field_name"`
	WellID          *string                `json:"well_id"`
	HoleSection     *string                `json:"hole_section"`
	ServiceCategory domain.ServiceCategory `json:"service_category"`
	SurveyOptions   domain.SurveyOptions   `json:"survey_options"`
	StartDepth      *float64               `json:"start_depth"`
	EndDepth        *float64               `json:"end_depth"`
	SurveyInterval  *float64               `json:"survey_interval"`
	Latitude        *float64               `json:"latitude"`
	Longitude       *float64               `json:"longitude"`
	Notes           string                 `json:"notes"`
	Status          domain.CalloutStatus   `json:"status"`
	HasSRO          bool                   `json:"has_sro"`
	SRONumber       *string                `json:"sro_number"`
	ScheduleNumber  *string                `json:"schedule_number"`
	CreatedBy       string                 `json:"created_by"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CalendarResponse is the 42-cell month grid plus per-day callout buckets.
type CalendarResponse struct {
	Year    int                          `json:"year"`
	Month   int                          `json:"month"`
	Days    []string                     `json:"days"`
	Buckets map[string][]CalloutResponse `json:"buckets"`
}
