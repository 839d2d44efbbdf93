package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/utils"
)

// SettingsService is the per-event-type notification switchboard. Reads fail
// open: a missing row or a store error both count as enabled, because
// silently losing grievance notifications is worse than an unwanted one.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// GetAll returns the enabled flag for every notifiable event type. Types
// without a stored row are reported as enabled.
func (ss *SettingsService) GetAll() (map[string]bool, error) {
	result := make(map[string]bool, len(models.NotifiableEventTypes))
	for eventType := range models.NotifiableEventTypes {
		result[eventType] = true
	}

	var rows []models.NotificationSetting
	if err := ss.DB.Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if models.NotifiableEventTypes[row.EventType] {
			result[row.EventType] = row.Enabled
		}
	}
	return result, nil
}

// SetEnabled upserts the switch for one event type.
func (ss *SettingsService) SetEnabled(eventType string, enabled bool) error {
	if eventType == "" {
		return ErrEmptyEventType
	}
	if !models.IsKnownEventType(eventType) {
		return ErrUnknownEventType
	}

	setting := models.NotificationSetting{
		EventType: eventType,
		Enabled:   enabled,
		UpdatedAt: time.Now(),
	}
	return ss.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&setting).Error
}

// IsEnabled reports whether the event type should notify. Fail-open: a
// lookup failure logs a warning and returns true.
func (ss *SettingsService) IsEnabled(eventType string) bool {
	var setting models.NotificationSetting
	err := ss.DB.Where("event_type = ?", eventType).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	if err != nil {
		utils.InfoLogger.Printf("Warning: settings lookup failed for %s, treating as enabled: %v", eventType, err)
		return true
	}
	return setting.Enabled
}
