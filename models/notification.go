package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is one user's copy of a timeline event fan-out. Immutable
// except for the one-way ReadAt transition (nil = unread).
// TimelineEventID is a weak back-reference only; nothing cascades through it.
type Notification struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index:idx_user_created,priority:1;index:idx_user_read,priority:1;index:idx_user_complaint,priority:1" json:"user_id"`
	ComplaintID     uint           `gorm:"not null;index:idx_user_complaint,priority:2" json:"complaint_id"`
	EventType       string         `gorm:"type:varchar(40);not null" json:"event_type"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title"`
	Body            string         `gorm:"type:text" json:"body"`
	Payload         datatypes.JSON `json:"payload,omitempty"`
	ReadAt          *time.Time     `gorm:"index:idx_user_read,priority:2" json:"read_at,omitempty"`
	TimelineEventID uint           `gorm:"index" json:"timeline_event_id"`
	CreatedAt       time.Time      `gorm:"not null;index:idx_user_created,priority:2;index:idx_user_complaint,priority:3" json:"created_at"`
}

// NotificationSetting is the admin-controlled on/off switch per event type.
// A missing row means enabled: the registry fails open.
type NotificationSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventType string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"event_type"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}
