package services

import (
	"sync"

	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/realtime"
	"github.com/aryawidjaja/grievance-portal/utils"
)

// RealtimeEmitter is the fire-and-forget side-channel that tells connected
// clients to refresh. Failures inside it are its own problem.
type RealtimeEmitter func(userIDs []uint)

// DispatcherService fans a timeline event out into per-user notifications.
// Notify never blocks the caller and never reports failure to it; every
// error inside a dispatch is terminal for that one event and is logged at
// the worker boundary.
type DispatcherService struct {
	DB       *gorm.DB
	Settings *SettingsService
	Resolver *ResolverService
	Emit     RealtimeEmitter

	queue    chan models.TimelineEvent
	stopChan chan struct{}
	wg       sync.WaitGroup
	workers  int
}

func NewDispatcherService(db *gorm.DB, settings *SettingsService, resolver *ResolverService) *DispatcherService {
	return &DispatcherService{
		DB:       db,
		Settings: settings,
		Resolver: resolver,
		Emit:     realtime.EmitNewNotificationsToUsers,
		queue:    make(chan models.TimelineEvent, 256),
		stopChan: make(chan struct{}),
		workers:  4,
	}
}

// Start launches the worker pool consuming queued dispatches.
func (d *DispatcherService) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case event := <-d.queue:
					d.dispatch(event)
				case <-d.stopChan:
					return
				}
			}
		}()
	}
}

// Stop shuts the worker pool down. Queued but unstarted dispatches are
// dropped; delivery is best-effort.
func (d *DispatcherService) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

// Notify schedules the event for dispatch without waiting on it. Events
// outside the notifiable set are filtered here. When the queue is full the
// dispatch runs on its own goroutine rather than blocking the caller.
func (d *DispatcherService) Notify(event *models.TimelineEvent) {
	if event == nil || !models.NotifiableEventTypes[event.EventType] {
		return
	}

	select {
	case d.queue <- *event:
	default:
		go d.dispatch(*event)
	}
}

// dispatch runs the full fan-out for one event. All failure paths log and
// return; nothing propagates.
func (d *DispatcherService) dispatch(event models.TimelineEvent) {
	defer func() {
		if r := recover(); r != nil {
			utils.ErrorLogger.Printf("Dispatch panic: event=%s complaint=%d type=%s: %v",
				event.EventID, event.ComplaintID, event.EventType, r)
		}
	}()

	if !d.Settings.IsEnabled(event.EventType) {
		return
	}

	resolved, err := d.Resolver.Resolve(&event)
	if err != nil {
		utils.ErrorLogger.Printf("Dispatch resolution failed: event=%s complaint=%d type=%s: %v",
			event.EventID, event.ComplaintID, event.EventType, err)
		return
	}
	if len(resolved.Recipients) == 0 {
		return
	}

	notifications := make([]models.Notification, 0, len(resolved.Recipients))
	for _, userID := range resolved.Recipients {
		notifications = append(notifications, models.Notification{
			UserID:          userID,
			ComplaintID:     event.ComplaintID,
			EventType:       event.EventType,
			Title:           resolved.Title,
			Body:            resolved.Body,
			Payload:         event.Payload,
			TimelineEventID: event.ID,
		})
	}

	if err := d.DB.Create(&notifications).Error; err != nil {
		utils.ErrorLogger.Printf("Dispatch insert failed: event=%s complaint=%d type=%s: %v",
			event.EventID, event.ComplaintID, event.EventType, err)
		return
	}

	if d.Emit != nil {
		d.Emit(resolved.Recipients)
	}
}
