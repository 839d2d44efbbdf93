package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/models"
)

func newTestDispatcher(db *gorm.DB) (*DispatcherService, *[][]uint) {
	settings := NewSettingsService(db)
	resolver := NewResolverService(NewDirectoryService(db))
	d := NewDispatcherService(db, settings, resolver)

	var emitted [][]uint
	d.Emit = func(userIDs []uint) {
		emitted = append(emitted, userIDs)
	}
	return d, &emitted
}

func seedUser(db *gorm.DB, name, role string) models.User {
	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret",
		Role:     role,
	}
	db.Create(&user)
	return user
}

func notificationCount(db *gorm.DB) int64 {
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	return count
}

func TestDispatchOfficerAssignedFanOut(t *testing.T) {
	db := setupTestDB(t)
	admin1 := seedUser(db, "admin1", models.RoleAdmin)
	admin2 := seedUser(db, "admin2", models.RoleAdmin)
	officer := seedUser(db, "officer7", models.RoleOfficer)

	d, emitted := newTestDispatcher(db)
	ts := NewTimelineService(db)

	event, _, err := ts.AppendEvent(1, models.EventOfficerAssigned, nil,
		models.OfficerAssignedPayload{AssignedToUserID: officer.ID}, "")
	assert.NoError(t, err)

	d.dispatch(*event)

	var notifications []models.Notification
	db.Order("user_id ASC").Find(&notifications)
	assert.Len(t, notifications, 3)

	recipients := []uint{}
	for _, n := range notifications {
		recipients = append(recipients, n.UserID)
		assert.Equal(t, models.EventOfficerAssigned, n.EventType)
		assert.Equal(t, uint(1), n.ComplaintID)
		assert.Equal(t, event.ID, n.TimelineEventID)
		assert.Nil(t, n.ReadAt)
	}
	assert.ElementsMatch(t, []uint{admin1.ID, admin2.ID, officer.ID}, recipients)

	assert.Len(t, *emitted, 1)
	assert.ElementsMatch(t, []uint{admin1.ID, admin2.ID, officer.ID}, (*emitted)[0])
}

func TestNotifyIgnoresNonNotifiableEvents(t *testing.T) {
	db := setupTestDB(t)
	seedUser(db, "admin1", models.RoleAdmin)

	d, emitted := newTestDispatcher(db)
	ts := NewTimelineService(db)

	event, _, err := ts.AppendEvent(1, models.EventComplaintUpdated, nil, nil, "")
	assert.NoError(t, err)

	d.Notify(event)

	assert.Equal(t, int64(0), notificationCount(db))
	assert.Empty(t, *emitted)
}

func TestDispatchRespectsDisabledSetting(t *testing.T) {
	db := setupTestDB(t)
	seedUser(db, "admin1", models.RoleAdmin)
	officer := seedUser(db, "officer1", models.RoleOfficer)

	d, emitted := newTestDispatcher(db)
	assert.NoError(t, d.Settings.SetEnabled(models.EventNoteAdded, false))

	complaint := models.Complaint{Title: "Broken streetlight", ReporterID: 99, Status: models.ComplaintStatusInProgress, AssignedOfficerID: &officer.ID}
	db.Create(&complaint)

	ts := NewTimelineService(db)
	event, _, err := ts.AppendEvent(complaint.ID, models.EventNoteAdded, nil, models.NoteAddedPayload{NoteID: 1}, "")
	assert.NoError(t, err)

	d.dispatch(*event)

	assert.Equal(t, int64(0), notificationCount(db))
	assert.Empty(t, *emitted)
}

func TestDispatchFailOpenWhenSettingMissing(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(db, "admin1", models.RoleAdmin)

	d, _ := newTestDispatcher(db)
	ts := NewTimelineService(db)

	// No settings row seeded: missing means enabled.
	event, _, err := ts.AppendEvent(1, models.EventComplaintCreated, nil, nil, "")
	assert.NoError(t, err)

	d.dispatch(*event)

	var notifications []models.Notification
	db.Find(&notifications)
	assert.Len(t, notifications, 1)
	assert.Equal(t, admin.ID, notifications[0].UserID)
}

func TestDispatchDeduplicatesOverlappingRecipients(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(db, "admin1", models.RoleAdmin)
	seedUser(db, "admin2", models.RoleAdmin)

	d, _ := newTestDispatcher(db)
	ts := NewTimelineService(db)

	// The assignment target is also an admin: one notification, not two.
	event, _, err := ts.AppendEvent(1, models.EventOfficerAssigned, nil,
		models.OfficerAssignedPayload{AssignedToUserID: admin.ID}, "")
	assert.NoError(t, err)

	d.dispatch(*event)

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", admin.ID).Count(&count)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(2), notificationCount(db))
}

func TestDispatchResolutionFailureDropsEvent(t *testing.T) {
	db := setupTestDB(t)
	seedUser(db, "admin1", models.RoleAdmin)

	d, emitted := newTestDispatcher(db)

	// officer_assigned without its payload cannot resolve.
	event := models.TimelineEvent{
		EventID:     "broken-event",
		ComplaintID: 1,
		EventType:   models.EventOfficerAssigned,
	}
	d.dispatch(event)

	assert.Equal(t, int64(0), notificationCount(db))
	assert.Empty(t, *emitted)
}

func TestDispatchEmptyRecipientsNoInsert(t *testing.T) {
	db := setupTestDB(t)
	// No admins, no assignment: nobody to tell.
	d, emitted := newTestDispatcher(db)
	ts := NewTimelineService(db)

	event, _, err := ts.AppendEvent(1, models.EventComplaintCreated, nil, nil, "")
	assert.NoError(t, err)

	d.dispatch(*event)

	assert.Equal(t, int64(0), notificationCount(db))
	assert.Empty(t, *emitted)
}

func TestDispatchExtensionDecisionTargetsRequester(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(db, "admin1", models.RoleAdmin)
	officer := seedUser(db, "officer1", models.RoleOfficer)

	request := models.ExtensionRequest{
		ComplaintID: 4,
		RequesterID: officer.ID,
		Status:      models.ExtensionStatusApproved,
	}
	db.Create(&request)

	d, _ := newTestDispatcher(db)
	ts := NewTimelineService(db)

	event, _, err := ts.AppendEvent(4, models.EventExtensionApproved, nil,
		models.ExtensionPayload{RequestID: request.ID}, "")
	assert.NoError(t, err)

	d.dispatch(*event)

	var notifications []models.Notification
	db.Find(&notifications)
	assert.Len(t, notifications, 2)

	recipients := []uint{}
	for _, n := range notifications {
		recipients = append(recipients, n.UserID)
	}
	assert.ElementsMatch(t, []uint{admin.ID, officer.ID}, recipients)
}

func TestDispatcherStartStop(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(db, "admin1", models.RoleAdmin)

	d, _ := newTestDispatcher(db)
	d.Start()

	ts := NewTimelineService(db)
	event, _, err := ts.AppendEvent(1, models.EventComplaintCreated, nil, nil, "")
	assert.NoError(t, err)

	d.Notify(event)

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.Notification{}).Where("user_id = ?", admin.ID).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	d.Stop()
}
