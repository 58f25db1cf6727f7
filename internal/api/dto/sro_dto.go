package dto

import (
	"time"

	"github.com/spec-kit/sro-service/internal/domain"
)

// SROResponse carries a service request order.
type SROResponse struct {
	ID            string           `json:"id"`
	Number        string           `json:"number"`
	CalloutID     string           `json:"callout_id"`
	CustomerID    string           `json:"customer_id"`
	Status        domain.SROStatus `json:"status"`
	DisplayStatus string           `json:"display_status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ApprovalResponse reports an approve transition outcome.
type ApprovalResponse struct {
	SRO             SROResponse       `json:"sro"`
	Schedule        *ScheduleResponse `json:"schedule,omitempty"`
	ScheduleCreated bool              `json:"schedule_created"`
}
