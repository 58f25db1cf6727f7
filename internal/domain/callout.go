package domain

import "time"

// CalloutStatus enumerates lifecycle states for callouts.
type CalloutStatus string

const (
	CalloutStatusDraft        CalloutStatus = "DRAFT"
	CalloutStatusLocked       CalloutStatus = "LOCKED"
	CalloutStatusSROActivated CalloutStatus = "SRO_ACTIVATED"
	CalloutStatusScheduled    CalloutStatus = "SCHEDULED"
)

// ServiceCategory enumerates the survey service lines a callout can request.
type ServiceCategory string

const (
	ServiceCategoryGyro      ServiceCategory = "GYRO"
	ServiceCategoryMWD       ServiceCategory = "MWD"
	ServiceCategorySurfaceRO ServiceCategory = "SURFACE_READOUT"
	ServiceCategoryDropTool  ServiceCategory = "DROP_TOOL"
)

// SurveyOptions is the set of boolean survey flags raised on a callout.
type SurveyOptions struct {
	Multishot    bool `json:"multishot"`
	SingleShot   bool `json:"single_shot"`
	Orientation  bool `json:"orientation"`
	Continuous   bool `json:"continuous"`
	InRunOutRun  bool `json:"in_run_out_run"`
	NorthSeeking bool `json:"north_seeking"`
}

// Callout is the initial service request raised against a rig/well.
type Callout struct {
	ID              string
	Number          string
	CustomerID      string
	RigNumber       string
	FieldName       string
	WellID          *string
	HoleSection     *string
	ServiceCategory ServiceCategory
	SurveyOptions   SurveyOptions
	StartDepth      *float64
	EndDepth        *float64
	SurveyInterval  *float64
	Latitude        *float64
	Longitude       *float64
	Notes           string
	Status          CalloutStatus
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Editable reports whether callout fields may still be written.
func (c *Callout) Editable() bool {
	return c.Status == CalloutStatusDraft
}

// CalloutDetail is a callout together with its read-time relationship joins.
// HasSRO, SRONumber and ScheduleNumber are computed from the relationship
// graph on every read and are never stored on the callout row.
type CalloutDetail struct {
	Callout
	HasSRO         bool
	SROID          *string
	SRONumber      *string
	ScheduleNumber *string
}
