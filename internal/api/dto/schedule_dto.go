package dto

import (
	"time"

	"github.com/spec-kit/sro-service/internal/domain"
)

// PatchScheduleRequest payload; absent fields stay unchanged. The SRO
// reference is accepted only to be checked against the existing linkage.
type PatchScheduleRequest struct {
	SROID           *string                `json:"sro_id"`
	FinancePriority *int                   `json:"finance_priority"`
	OpsPriority     *int                   `json:"ops_priority"`
	QAPriority      *int                   `json:"qa_priority"`
	Risk            *domain.RiskFlags      `json:"risk"`
	Difficulty      *int                   `json:"difficulty"`
	EquipmentTypeID *string                `json:"equipment_type_id"`
	ResourceID      *string                `json:"resource_id"`
	Status          *domain.ScheduleStatus `json:"status"`
}

// ScheduleResponse carries a schedule with its derived average priority.
type ScheduleResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	SROID           string                `json:"sro_id"`
	FinancePriority *int                  `json:"finance_priority"`
	OpsPriority     *int                  `json:"ops_priority"`
	QAPriority      *int                  `json:"qa_priority"`
	AveragePriority *float64              `json:"average_priority"`
	Risk            domain.RiskFlags      `json:"risk"`
	Difficulty      *int                  `json:"difficulty"`
	EquipmentTypeID *string               `json:"equipment_type_id"`
	ResourceID      *string               `json:"resource_id"`
	Status          domain.ScheduleStatus `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}
