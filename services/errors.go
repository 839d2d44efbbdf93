package services

import "errors"

var (
	// ErrEmptyEventType is returned when an append names no event type.
	ErrEmptyEventType = errors.New("event type is required")
	// ErrUnknownEventType is returned when an append names a type outside the
	// closed enumeration.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrMissingComplaint is returned when an append carries no complaint id.
	ErrMissingComplaint = errors.New("complaint id is required")
	// ErrNotificationNotFound is returned by mark-read when no notification
	// matches the (id, owner) pair. Cross-user marking lands here too.
	ErrNotificationNotFound = errors.New("notification not found")
)
