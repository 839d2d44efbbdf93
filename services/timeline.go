package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/utils"
)

// TimelineService is the append-only audit log of complaint actions.
type TimelineService struct {
	DB *gorm.DB
}

func NewTimelineService(db *gorm.DB) *TimelineService {
	return &TimelineService{DB: db}
}

// Actor identifies who performed the recorded action.
type Actor struct {
	UserID uint
	Role   string
}

// AppendEvent records one action on a complaint. When idempotencyKey is
// non-empty and an event already exists for (complaintID, idempotencyKey),
// the existing event is returned with created=false and no error: a
// duplicate append is benign and must not fail the domain operation.
func (ts *TimelineService) AppendEvent(complaintID uint, eventType string, actor *Actor, payload interface{}, idempotencyKey string) (*models.TimelineEvent, bool, error) {
	if complaintID == 0 {
		return nil, false, ErrMissingComplaint
	}
	if eventType == "" {
		return nil, false, ErrEmptyEventType
	}
	if !models.IsKnownEventType(eventType) {
		return nil, false, ErrUnknownEventType
	}

	event := models.TimelineEvent{
		EventID:     uuid.NewString(),
		ComplaintID: complaintID,
		EventType:   eventType,
		OccurredAt:  time.Now(),
	}
	if actor != nil {
		id := actor.UserID
		event.ActorID = &id
		event.ActorRole = actor.Role
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, false, err
		}
		event.Payload = raw
	}
	if idempotencyKey != "" {
		key := idempotencyKey
		event.IdempotencyKey = &key
	}

	if err := ts.DB.Create(&event).Error; err != nil {
		if event.IdempotencyKey != nil && isDuplicateKeyErr(err) {
			var existing models.TimelineEvent
			if ferr := ts.DB.Where("complaint_id = ? AND idempotency_key = ?", complaintID, idempotencyKey).
				First(&existing).Error; ferr != nil {
				return nil, false, ferr
			}
			utils.InfoLogger.Printf("Duplicate timeline append ignored: complaint=%d type=%s key=%s",
				complaintID, eventType, idempotencyKey)
			return &existing, false, nil
		}
		return nil, false, err
	}

	return &event, true, nil
}

// ListByComplaint returns the complaint's full timeline, oldest first.
func (ts *TimelineService) ListByComplaint(complaintID uint) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	err := ts.DB.Where("complaint_id = ?", complaintID).
		Order("occurred_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

// ListByActor returns events performed by one user, newest first.
func (ts *TimelineService) ListByActor(userID uint) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	err := ts.DB.Where("actor_id = ?", userID).
		Order("occurred_at DESC, id DESC").
		Find(&events).Error
	return events, err
}

// ListByType returns events of one type across complaints, newest first.
func (ts *TimelineService) ListByType(eventType string) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	err := ts.DB.Where("event_type = ?", eventType).
		Order("occurred_at DESC, id DESC").
		Find(&events).Error
	return events, err
}

// isDuplicateKeyErr is the single place that decides whether a store error is
// a uniqueness violation. Everything else treats the answer as opaque.
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for drivers the gorm error translator does not cover.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
