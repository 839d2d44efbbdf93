package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/services"
	"github.com/aryawidjaja/grievance-portal/utils"
)

type NotificationController struct {
	Notifications *services.NotificationService
	Settings      *services.SettingsService
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{
		Notifications: services.NewNotificationService(db),
		Settings:      services.NewSettingsService(db),
	}
}

// GetMyNotifications lists the caller's notifications, newest first.
// Filters: complaint_id, event_type, unread_only; paging: limit, skip.
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID := c.GetUint("user_id")

	filter := services.NotificationFilter{
		EventType:  c.Query("event_type"),
		UnreadOnly: c.Query("unread_only") == "true",
	}
	if v := c.Query("complaint_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid complaint id"))
			return
		}
		cid := uint(id)
		filter.ComplaintID = &cid
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))

	page, err := nc.Notifications.List(userID, filter)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", page)
}

func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	userID := c.GetUint("user_id")

	count, err := nc.Notifications.UnreadCount(userID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Unread count", gin.H{"unread": count})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	notifID, err := strconv.ParseUint(c.Param("notif_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	if err := nc.Notifications.MarkRead(uint(notifID), userID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked read", gin.H{"notif_id": notifID})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	modified, err := nc.Notifications.MarkAllRead(userID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications marked read", gin.H{"modified": modified})
}

// GetSettings returns the switch for every notifiable event type (admin).
func (nc *NotificationController) GetSettings(c *gin.Context) {
	settings, err := nc.Settings.GetAll()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification settings", settings)
}

// UpdateSetting toggles one event type (admin).
func (nc *NotificationController) UpdateSetting(c *gin.Context) {
	type request struct {
		EventType string `json:"event_type" binding:"required"`
		Enabled   *bool  `json:"enabled" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := nc.Settings.SetEnabled(req.EventType, *req.Enabled); err != nil {
		if errors.Is(err, services.ErrUnknownEventType) || errors.Is(err, services.ErrEmptyEventType) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Notification setting updated: %s enabled=%v", req.EventType, *req.Enabled)
	utils.RespondJSON(c, http.StatusOK, "Setting updated", gin.H{
		"event_type": req.EventType,
		"enabled":    *req.Enabled,
	})
}
