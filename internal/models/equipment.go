package models

import "time"

type Equipment struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Subtype       *string   `json:"subtype,omitempty"`
	ParentID      *string   `json:"parent_id,omitempty"` // e.g. a lens mounted on a camera body
	OwnershipType string    `json:"ownership_type"`
	OwnerID       *string   `json:"owner_id,omitempty"` // required iff ownership_type=student
	Status        string    `json:"status"`
	ImageURL      *string   `json:"image_url,omitempty"`
	Details       *string   `json:"details,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Computed fields (from JOINs)
	OwnerName string `json:"owner_name,omitempty"`
}

// Equipment type constants
const (
	EquipmentTypeCamera = "camera"
	EquipmentTypeLens   = "lens"
	EquipmentTypeTripod = "tripod"
	EquipmentTypeLight  = "light"
	EquipmentTypeAudio  = "audio"
	EquipmentTypeOther  = "other"
)

// Ownership constants
const (
	OwnershipHall    = "hall"
	OwnershipStudent = "student"
)

// Equipment status constants
const (
	EquipmentAvailable   = "available"
	EquipmentInUse       = "in_use"
	EquipmentMaintenance = "maintenance"
)

// ValidEquipmentType reports whether t is one of the known equipment types.
func ValidEquipmentType(t string) bool {
	switch t {
	case EquipmentTypeCamera, EquipmentTypeLens, EquipmentTypeTripod,
		EquipmentTypeLight, EquipmentTypeAudio, EquipmentTypeOther:
		return true
	}
	return false
}

// ValidEquipmentStatus reports whether s is a known equipment status.
func ValidEquipmentStatus(s string) bool {
	switch s {
	case EquipmentAvailable, EquipmentInUse, EquipmentMaintenance:
		return true
	}
	return false
}

type CreateEquipmentRequest struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Subtype       string  `json:"subtype"`
	ParentID      *string `json:"parent_id"`
	OwnershipType string  `json:"ownership_type"`
	OwnerID       *string `json:"owner_id"`
	Details       string  `json:"details"`
}

type UpdateEquipmentRequest struct {
	Name     string  `json:"name"`
	Subtype  string  `json:"subtype"`
	ParentID *string `json:"parent_id"`
	Details  string  `json:"details"`
}

type SetEquipmentStatusRequest struct {
	Status         string `json:"status"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
}

// EquipmentDetail bundles an equipment row with its live checkout state
// for the inventory detail view.
type EquipmentDetail struct {
	Equipment       *Equipment         `json:"equipment"`
	OpenLog         *EquipmentLog      `json:"open_log,omitempty"`
	PendingRequests []EquipmentRequest `json:"pending_requests"`
	Attachments     []Equipment        `json:"attachments"` // children via parent_id
}
