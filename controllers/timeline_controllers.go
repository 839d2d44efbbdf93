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

type TimelineController struct {
	Timeline *services.TimelineService
}

func NewTimelineController(db *gorm.DB) *TimelineController {
	return &TimelineController{Timeline: services.NewTimelineService(db)}
}

// GetComplaintTimeline returns the full audit trail of one complaint,
// oldest first.
func (tc *TimelineController) GetComplaintTimeline(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	events, err := tc.Timeline.ListByComplaint(id)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Complaint timeline", events)
}

// GetEventsByActor is a reporting query: everything one user did (admin).
func (tc *TimelineController) GetEventsByActor(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid user id"))
		return
	}

	events, err := tc.Timeline.ListByActor(uint(userID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Events by actor", events)
}

// GetEventsByType is a reporting query: every event of one type (admin).
func (tc *TimelineController) GetEventsByType(c *gin.Context) {
	eventType := c.Query("type")
	if eventType == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("type query parameter is required"))
		return
	}

	events, err := tc.Timeline.ListByType(eventType)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Events by type", events)
}
