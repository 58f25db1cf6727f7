package domain

import "time"

// SROStatus enumerates lifecycle states for service request orders.
type SROStatus string

const (
	SROStatusCreated   SROStatus = "CREATED"
	SROStatusPending   SROStatus = "PENDING"
	SROStatusApproved  SROStatus = "APPROVED"
	SROStatusRejected  SROStatus = "REJECTED"
	SROStatusCancelled SROStatus = "CANCELLED"
)

// SRO is a work order generated from exactly one callout. CalloutID is
// immutable after creation; a callout may be the source of at most one SRO.
type SRO struct {
	ID         string
	Number     string
	CalloutID  string
	CustomerID string
	Status     SROStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Approvable reports whether the SRO may still advance to approved.
func (s *SRO) Approvable() bool {
	return s.Status == SROStatusCreated || s.Status == SROStatusPending
}

// DisplayStatus maps storage statuses to the labels list views show.
// PENDING and "submitted" are synonyms in the views.
func (s *SRO) DisplayStatus() string {
	if s.Status == SROStatusPending {
		return "SUBMITTED"
	}
	return string(s.Status)
}
