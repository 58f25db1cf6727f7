package dto

// CreateWellRequest payload.
type CreateWellRequest struct {
	Name      string   `json:"name"`
	FieldName string   `json:"field_name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CustomerResponse dropdown entry.
type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// RigResponse dropdown entry.
type RigResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Number     string `json:"number"`
}

// WellResponse dropdown entry.
type WellResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	FieldName string   `json:"field_name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// EquipmentTypeResponse dropdown entry.
type EquipmentTypeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
