package models

import "time"

// EquipmentLog records one checkout of an equipment item. A row with a
// null ReturnTime is an open checkout; at most one open row may exist per
// equipment item at any time.
type EquipmentLog struct {
	ID                 string     `json:"id"`
	EquipmentID        string     `json:"equipment_id"`
	UserID             string     `json:"user_id"`
	CheckoutTime       time.Time  `json:"checkout_time"`
	ExpectedReturnTime *time.Time `json:"expected_return_time,omitempty"`
	ReturnTime         *time.Time `json:"return_time,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`

	// Computed fields (from JOINs)
	EquipmentName string `json:"equipment_name,omitempty"`
	UserName      string `json:"user_name,omitempty"`
}

// Open reports whether the checkout is still outstanding.
func (l *EquipmentLog) Open() bool { return l.ReturnTime == nil }

// Overdue reports whether the checkout is open and past its expected
// return time as of now.
func (l *EquipmentLog) Overdue(now time.Time) bool {
	return l.Open() && l.ExpectedReturnTime != nil && now.After(*l.ExpectedReturnTime)
}
