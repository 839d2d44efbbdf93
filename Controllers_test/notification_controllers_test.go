package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/controllers"
	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/utils"
)

var ctrlDBSeq int

func setupTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()

	ctrlDBSeq++
	dsn := fmt.Sprintf("file:ctrl_test_%s_%d?mode=memory&cache=shared", t.Name(), ctrlDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.ComplaintNote{},
		&models.ComplaintDocument{},
		&models.ExtensionRequest{},
		&models.TimelineEvent{},
		&models.Notification{},
		&models.NotificationSetting{},
	)
	if err != nil {
		panic(err)
	}
	return db
}

// asUser stands in for the auth middleware in tests.
func asUser(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupNotificationRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(asUser(userID, role))

	notifCtrl := controllers.NewNotificationController(db)
	router.GET("/notifications", notifCtrl.GetMyNotifications)
	router.GET("/notifications/unread-count", notifCtrl.GetUnreadCount)
	router.PATCH("/notifications/:notif_id/read", notifCtrl.MarkRead)
	router.POST("/notifications/read-all", notifCtrl.MarkAllRead)
	router.GET("/notification-settings", notifCtrl.GetSettings)
	router.PUT("/notification-settings", notifCtrl.UpdateSetting)
	return router
}

func seedNotifications(db *gorm.DB, userID uint, n int) []models.Notification {
	out := make([]models.Notification, 0, n)
	for i := 0; i < n; i++ {
		notif := models.Notification{
			UserID:      userID,
			ComplaintID: 1,
			EventType:   models.EventNoteAdded,
			Title:       "Note added",
			Body:        "A note was added to complaint #1.",
		}
		db.Create(&notif)
		out = append(out, notif)
	}
	return out
}

func TestNotificationReadFlow(t *testing.T) {
	db := setupTestDB(t)
	router := setupNotificationRouter(db, 1, models.RoleOfficer)

	notifs := seedNotifications(db, 1, 3)
	seedNotifications(db, 2, 1)

	// List
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Data struct {
			Items []models.Notification `json:"items"`
			Total int64                 `json:"total"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Data.Items, 3)
	assert.Equal(t, int64(3), listResp.Data.Total)

	// Unread count
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/notifications/unread-count", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread":3`)

	// Mark one read
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/notifications/"+strconv.Itoa(int(notifs[0].ID))+"/read", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/notifications/unread-count", nil)
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"unread":2`)

	// Mark all read
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/notifications/read-all", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"modified":2`)

	// Second call modifies nothing.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/notifications/read-all", nil)
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"modified":0`)
}

func TestMarkReadRejectsForeignNotification(t *testing.T) {
	db := setupTestDB(t)

	other := seedNotifications(db, 2, 1)

	// Caller is user 1; the notification belongs to user 2.
	router := setupNotificationRouter(db, 1, models.RoleCitizen)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/notifications/"+strconv.Itoa(int(other[0].ID))+"/read", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var unchanged models.Notification
	db.First(&unchanged, other[0].ID)
	assert.Nil(t, unchanged.ReadAt)
}

func TestNotificationSettingsEndpoints(t *testing.T) {
	db := setupTestDB(t)
	router := setupNotificationRouter(db, 1, models.RoleAdmin)

	// Defaults: everything enabled.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notification-settings", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"note_added":true`)

	// Disable one type.
	body, _ := json.Marshal(map[string]interface{}{
		"event_type": models.EventNoteAdded,
		"enabled":    false,
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/notification-settings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/notification-settings", nil)
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"note_added":false`)

	// Unknown type is rejected.
	body, _ = json.Marshal(map[string]interface{}{
		"event_type": "made_up_event",
		"enabled":    false,
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/notification-settings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
