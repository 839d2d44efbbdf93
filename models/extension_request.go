package models

import "time"

// Extension request statuses
const (
	ExtensionStatusPending  = "pending"
	ExtensionStatusApproved = "approved"
	ExtensionStatusRejected = "rejected"
)

// ExtensionRequest is an officer's request to extend a complaint's due date.
type ExtensionRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ComplaintID uint       `gorm:"not null;index" json:"complaint_id"`
	RequesterID uint       `gorm:"not null;index" json:"requester_id"`
	Requester   User       `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Reason      string     `gorm:"type:text" json:"reason"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	NewDueAt    time.Time  `gorm:"not null" json:"new_due_at"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DecidedByID *uint      `json:"decided_by_id,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}
