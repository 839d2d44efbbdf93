package services

import (
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/models"
)

// Hard page-size ceiling for notification listings.
const maxNotificationPageSize = 100

// NotificationFilter narrows a notification listing.
type NotificationFilter struct {
	ComplaintID *uint
	EventType   string
	UnreadOnly  bool
	Limit       int
	Skip        int
}

// NotificationPage is one page of a user's notifications, newest first.
type NotificationPage struct {
	Items      []models.Notification `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
}

// NotificationService is the per-user read side of the pipeline.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// List returns one page of the user's notifications plus the total count.
func (ns *NotificationService) List(userID uint, filter NotificationFilter) (*NotificationPage, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxNotificationPageSize {
		limit = maxNotificationPageSize
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := ns.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	if filter.ComplaintID != nil {
		query = query.Where("complaint_id = ?", *filter.ComplaintID)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Notification
	if err := query.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(skip).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationPage{
		Items:      items,
		Total:      total,
		Page:       skip/limit + 1,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (ns *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := ns.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead transitions one notification to read. The row must belong to
// userID; marking someone else's notification is ErrNotificationNotFound,
// not a silent no-op.
func (ns *NotificationService) MarkRead(notificationID, userID uint) error {
	result := ns.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Already read is fine; missing or foreign is not.
		var existing models.Notification
		err := ns.DB.Where("id = ? AND user_id = ?", notificationID, userID).First(&existing).Error
		if err != nil {
			return ErrNotificationNotFound
		}
	}
	return nil
}

// MarkAllRead transitions every unread notification for the user and returns
// how many rows changed. Idempotent: a second call returns 0.
func (ns *NotificationService) MarkAllRead(userID uint) (int64, error) {
	result := ns.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}
