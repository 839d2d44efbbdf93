package models

import (
	"time"

	"gorm.io/datatypes"
)

// Timeline event types — the closed set of actions recorded on a complaint.
const (
	EventComplaintCreated   = "complaint_created"
	EventStatusChanged      = "status_changed"
	EventOfficerAssigned    = "officer_assigned"
	EventOfficerReassigned  = "officer_reassigned"
	EventNoteAdded          = "note_added"
	EventDocumentAdded      = "document_added"
	EventExtensionRequested = "extension_requested"
	EventExtensionApproved  = "extension_approved"
	EventExtensionRejected  = "extension_rejected"
	EventComplaintResolved  = "complaint_resolved"
	EventComplaintReopened  = "complaint_reopened"
	EventComplaintUpdated   = "complaint_updated"
	EventDocumentRemoved    = "document_removed"
)

// NotifiableEventTypes lists the event types that may fan out to user
// notifications. Everything else is audit-only.
var NotifiableEventTypes = map[string]bool{
	EventComplaintCreated:   true,
	EventStatusChanged:      true,
	EventOfficerAssigned:    true,
	EventOfficerReassigned:  true,
	EventNoteAdded:          true,
	EventDocumentAdded:      true,
	EventExtensionRequested: true,
	EventExtensionApproved:  true,
	EventExtensionRejected:  true,
	EventComplaintResolved:  true,
	EventComplaintReopened:  true,
}

// IsKnownEventType reports whether t belongs to the closed event enumeration.
func IsKnownEventType(t string) bool {
	switch t {
	case EventComplaintCreated, EventStatusChanged, EventOfficerAssigned,
		EventOfficerReassigned, EventNoteAdded, EventDocumentAdded,
		EventExtensionRequested, EventExtensionApproved, EventExtensionRejected,
		EventComplaintResolved, EventComplaintReopened, EventComplaintUpdated,
		EventDocumentRemoved:
		return true
	}
	return false
}

// TimelineEvent is an immutable audit record of one action on a complaint.
// Rows are created once and never updated or deleted. The composite unique
// index on (complaint_id, idempotency_key) only bites when a key is present:
// NULL keys never collide, so events appended without a key are exempt.
type TimelineEvent struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	EventID        string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"event_id"`
	ComplaintID    uint           `gorm:"not null;index:idx_complaint_time,priority:1;uniqueIndex:ux_complaint_idem,priority:1" json:"complaint_id"`
	EventType      string         `gorm:"type:varchar(40);not null;index:idx_type_time,priority:1" json:"event_type"`
	ActorID        *uint          `gorm:"index:idx_actor_time,priority:1" json:"actor_id,omitempty"`
	ActorRole      string         `gorm:"type:varchar(20)" json:"actor_role,omitempty"`
	Payload        datatypes.JSON `json:"payload,omitempty"`
	IdempotencyKey *string        `gorm:"type:varchar(191);uniqueIndex:ux_complaint_idem,priority:2" json:"idempotency_key,omitempty"`
	OccurredAt     time.Time      `gorm:"not null;index:idx_complaint_time,priority:2;index:idx_actor_time,priority:2;index:idx_type_time,priority:2" json:"occurred_at"`
}

// Typed payload shapes, one per event type that carries data. The store keeps
// them as opaque JSON; the resolver decodes by event type.

type ComplaintUpdatedPayload struct {
	Fields []string `json:"fields"`
}

type OfficerAssignedPayload struct {
	AssignedToUserID uint `json:"assigned_to_user_id"`
}

type OfficerReassignedPayload struct {
	PreviousOfficerUserID uint `json:"previous_officer_user_id"`
	NewOfficerUserID      uint `json:"new_officer_user_id"`
}

type StatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type NoteAddedPayload struct {
	NoteID uint `json:"note_id"`
}

type DocumentPayload struct {
	DocumentID uint   `json:"document_id"`
	FileName   string `json:"file_name"`
}

type ExtensionPayload struct {
	RequestID uint `json:"request_id"`
}
