package domain

import "time"

// ScheduleStatus enumerates lifecycle states for schedules.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "DRAFT"
	ScheduleStatusPlanned   ScheduleStatus = "PLANNED"
	ScheduleStatusApproved  ScheduleStatus = "APPROVED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

// RiskFlags captures the operational risk markers on a schedule.
type RiskFlags struct {
	HighTemperature bool `json:"high_temperature"`
	PressureRisk    bool `json:"pressure_risk"`
	HSERisk         bool `json:"hse_risk"`
}

// Schedule is the resourcing/prioritization record derived from exactly one
// approved SRO. SROID is immutable after creation, one-to-one with the SRO.
type Schedule struct {
	ID              string
	Number          string
	SROID           string
	FinancePriority *int
	OpsPriority     *int
	QAPriority      *int
	Risk            RiskFlags
	Difficulty      *int
	EquipmentTypeID *string
	ResourceID      *string
	Status          ScheduleStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AveragePriority derives the mean of the priorities that are set. It is a
// read-time value, never stored and never accepted as input.
func (s *Schedule) AveragePriority() *float64 {
	sum, n := 0, 0
	for _, p := range []*int{s.FinancePriority, s.OpsPriority, s.QAPriority} {
		if p != nil {
			sum += *p
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// ValidPriority reports whether a priority or difficulty value is inside the
// closed set {1,2,3,4,5}. A nil pointer means unset and is always valid.
func ValidPriority(p *int) bool {
	return p == nil || (*p >= 1 && *p <= 5)
}
