package models

import "time"

// EquipmentRequest is the primary entity of the checkout workflow:
// pending -> approved -> received -> returned, with pending -> rejected
// as the alternate terminal branch.
type EquipmentRequest struct {
	ID          string    `json:"id"`
	EquipmentID string    `json:"equipment_id"`
	EventID     *string   `json:"event_id,omitempty"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"`
	ApprovedBy  *string   `json:"approved_by,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Computed fields (from JOINs)
	EquipmentName string `json:"equipment_name,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	EventTitle    string `json:"event_title,omitempty"`
}

// Request status constants
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
	RequestReceived = "received"
	RequestReturned = "returned"
)

// Terminal reports whether the request can no longer advance.
func (r *EquipmentRequest) Terminal() bool {
	return r.Status == RequestRejected || r.Status == RequestReturned
}

type CreateEquipmentRequestRequest struct {
	EquipmentID string  `json:"equipment_id"`
	EventID     *string `json:"event_id"`
	Notes       string  `json:"notes"`
}
