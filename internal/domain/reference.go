package domain

import "time"

// Customer is an operator company callouts are raised for.
type Customer struct {
	ID        string
	Name      string
	Country   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rig identifies a drilling rig operated by a customer.
type Rig struct {
	ID         string
	CustomerID string
	Number     string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Well is a wellbore callouts and surveys reference.
type Well struct {
	ID        string
	Name      string
	FieldName string
	Latitude  *float64
	Longitude *float64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EquipmentType is a survey tool category schedules allocate.
type EquipmentType struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
