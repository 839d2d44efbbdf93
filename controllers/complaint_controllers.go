package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/realtime"
	"github.com/aryawidjaja/grievance-portal/services"
	"github.com/aryawidjaja/grievance-portal/utils"
)

// ComplaintController carries the domain operations that feed the timeline.
// Each operation appends its audit event inside its own transaction, then
// hands the committed event to the dispatcher without waiting on the fan-out.
type ComplaintController struct {
	DB         *gorm.DB
	Dispatcher *services.DispatcherService
}

func NewComplaintController(db *gorm.DB, dispatcher *services.DispatcherService) *ComplaintController {
	return &ComplaintController{DB: db, Dispatcher: dispatcher}
}

func (cc *ComplaintController) actor(c *gin.Context) *services.Actor {
	return &services.Actor{
		UserID: c.GetUint("user_id"),
		Role:   c.GetString("role"),
	}
}

func idempotencyKey(c *gin.Context) string {
	return c.GetHeader("X-Idempotency-Key")
}

func complaintParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("complaint_id"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid complaint id")
	}
	return uint(id), nil
}

// pendingEvent holds an event appended inside a transaction until the commit
// lands, so the dispatcher never sees uncommitted rows.
type pendingEvent struct {
	event   *models.TimelineEvent
	created bool
}

func (p *pendingEvent) append(tx *gorm.DB, complaintID uint, eventType string, actor *services.Actor, payload interface{}, key string) error {
	event, created, err := services.NewTimelineService(tx).AppendEvent(complaintID, eventType, actor, payload, key)
	if err != nil {
		return err
	}
	p.event = event
	p.created = created
	return nil
}

func (p *pendingEvent) notify(dispatcher *services.DispatcherService) {
	if p.created {
		dispatcher.Notify(p.event)
	}
}

// CreateComplaint files a new grievance.
func (cc *ComplaintController) CreateComplaint(c *gin.Context) {
	type request struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := cc.actor(c)
	complaint := models.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      models.ComplaintStatusOpen,
		ReporterID:  actor.UserID,
	}

	var pending pendingEvent
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&complaint).Error; err != nil {
			return err
		}
		return pending.append(tx, complaint.ID, models.EventComplaintCreated, actor, nil, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)

	utils.InfoLogger.Printf("Complaint %d filed by user %d", complaint.ID, actor.UserID)
	utils.RespondJSON(c, http.StatusCreated, "Complaint filed", complaint)
}

func (cc *ComplaintController) GetAllComplaints(c *gin.Context) {
	query := cc.DB.Preload("Reporter").Preload("AssignedOfficer")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if role := c.GetString("role"); role == models.RoleCitizen {
		query = query.Where("reporter_id = ?", c.GetUint("user_id"))
	}

	var complaints []models.Complaint
	if err := query.Order("created_at DESC").Find(&complaints).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Complaints", complaints)
}

func (cc *ComplaintController) GetComplaintByID(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var complaint models.Complaint
	if err := cc.DB.Preload("Reporter").Preload("AssignedOfficer").First(&complaint, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Complaint detail", complaint)
}

// UpdateComplaint edits the descriptive fields of a complaint. The appended
// event is audit-only, so nobody gets notified about wording fixes.
func (cc *ComplaintController) UpdateComplaint(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type request struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	var changed []string
	if req.Title != nil {
		updates["title"] = *req.Title
		changed = append(changed, "title")
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		changed = append(changed, "description")
	}
	if req.Category != nil {
		updates["category"] = *req.Category
		changed = append(changed, "category")
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no fields to update"))
		return
	}

	actor := cc.actor(c)
	var complaint models.Complaint
	if err := cc.DB.First(&complaint, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if actor.Role == models.RoleCitizen && complaint.ReporterID != actor.UserID {
		utils.RespondError(c, http.StatusForbidden, errors.New("not your complaint"))
		return
	}

	var pending pendingEvent
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&complaint).Updates(updates).Error; err != nil {
			return err
		}
		payload := models.ComplaintUpdatedPayload{Fields: changed}
		return pending.append(tx, id, models.EventComplaintUpdated, actor, payload, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)

	utils.RespondJSON(c, http.StatusOK, "Complaint updated", complaint)
}

// AssignOfficer assigns (or reassigns) a complaint to an officer.
func (cc *ComplaintController) AssignOfficer(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type request struct {
		OfficerID uint `json:"officer_id" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var officer models.User
	if err := cc.DB.Where("id = ? AND role = ?", req.OfficerID, models.RoleOfficer).First(&officer).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("officer not found"))
		return
	}

	actor := cc.actor(c)
	var complaint models.Complaint
	var pending pendingEvent

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, id).Error; err != nil {
			return err
		}

		previous := complaint.AssignedOfficerID
		updates := map[string]interface{}{
			"assigned_officer_id": req.OfficerID,
			"status":              models.ComplaintStatusInProgress,
		}
		if err := tx.Model(&complaint).Updates(updates).Error; err != nil {
			return err
		}

		if previous != nil && *previous != req.OfficerID {
			payload := models.OfficerReassignedPayload{
				PreviousOfficerUserID: *previous,
				NewOfficerUserID:      req.OfficerID,
			}
			return pending.append(tx, id, models.EventOfficerReassigned, actor, payload, idempotencyKey(c))
		}

		payload := models.OfficerAssignedPayload{AssignedToUserID: req.OfficerID}
		return pending.append(tx, id, models.EventOfficerAssigned, actor, payload, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)
	realtime.BroadcastComplaintUpdate(complaint)

	utils.RespondJSON(c, http.StatusOK, "Officer assigned", complaint)
}

// UpdateStatus moves a complaint through its lifecycle.
func (cc *ComplaintController) UpdateStatus(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type request struct {
		Status string `json:"status" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.Status {
	case models.ComplaintStatusOpen, models.ComplaintStatusInProgress,
		models.ComplaintStatusResolved, models.ComplaintStatusReopened,
		models.ComplaintStatusClosed:
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid status"))
		return
	}

	actor := cc.actor(c)
	var complaint models.Complaint
	var pending pendingEvent

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, id).Error; err != nil {
			return err
		}
		old := complaint.Status
		if err := tx.Model(&complaint).Update("status", req.Status).Error; err != nil {
			return err
		}

		eventType := models.EventStatusChanged
		switch req.Status {
		case models.ComplaintStatusResolved:
			eventType = models.EventComplaintResolved
		case models.ComplaintStatusReopened:
			eventType = models.EventComplaintReopened
		}

		payload := models.StatusChangedPayload{OldStatus: old, NewStatus: req.Status}
		return pending.append(tx, id, eventType, actor, payload, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)
	realtime.BroadcastComplaintUpdate(complaint)

	utils.RespondJSON(c, http.StatusOK, "Status updated", complaint)
}

// AddNote attaches a note to the complaint.
func (cc *ComplaintController) AddNote(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type request struct {
		Body     string `json:"body" binding:"required"`
		Internal bool   `json:"internal"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := cc.actor(c)
	note := models.ComplaintNote{
		ComplaintID: id,
		AuthorID:    actor.UserID,
		Body:        req.Body,
		Internal:    req.Internal,
	}

	var pending pendingEvent
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&note).Error; err != nil {
			return err
		}
		payload := models.NoteAddedPayload{NoteID: note.ID}
		return pending.append(tx, id, models.EventNoteAdded, actor, payload, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)

	utils.RespondJSON(c, http.StatusCreated, "Note added", note)
}

// AddDocument records an uploaded document's metadata. The upload itself
// happens elsewhere; this only books the reference.
func (cc *ComplaintController) AddDocument(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type request struct {
		FileName    string `json:"file_name" binding:"required"`
		ContentType string `json:"content_type"`
		SizeBytes   int64  `json:"size_bytes"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := cc.actor(c)
	doc := models.ComplaintDocument{
		ComplaintID: id,
		UploaderID:  actor.UserID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	}

	var pending pendingEvent
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		payload := models.DocumentPayload{DocumentID: doc.ID, FileName: doc.FileName}
		return pending.append(tx, id, models.EventDocumentAdded, actor, payload, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)

	utils.RespondJSON(c, http.StatusCreated, "Document recorded", doc)
}

// RemoveDocument deletes a document reference. The event is audit-only and
// never notifies.
func (cc *ComplaintController) RemoveDocument(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	docID, err := strconv.ParseUint(c.Param("doc_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid document id"))
		return
	}

	actor := cc.actor(c)
	var pending pendingEvent
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var doc models.ComplaintDocument
		if err := tx.Where("id = ? AND complaint_id = ?", docID, id).First(&doc).Error; err != nil {
			return err
		}
		if err := tx.Delete(&doc).Error; err != nil {
			return err
		}
		payload := models.DocumentPayload{DocumentID: doc.ID, FileName: doc.FileName}
		return pending.append(tx, id, models.EventDocumentRemoved, actor, payload, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)

	utils.RespondJSON(c, http.StatusOK, "Document removed", gin.H{"doc_id": docID})
}

// RequestExtension lets the assigned officer ask for more time.
func (cc *ComplaintController) RequestExtension(c *gin.Context) {
	id, err := complaintParam(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	type request struct {
		Reason   string    `json:"reason" binding:"required"`
		NewDueAt time.Time `json:"new_due_at" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := cc.actor(c)
	extension := models.ExtensionRequest{
		ComplaintID: id,
		RequesterID: actor.UserID,
		Reason:      req.Reason,
		RequestedAt: time.Now(),
		NewDueAt:    req.NewDueAt,
		Status:      models.ExtensionStatusPending,
	}

	var pending pendingEvent
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&extension).Error; err != nil {
			return err
		}
		payload := models.ExtensionPayload{RequestID: extension.ID}
		return pending.append(tx, id, models.EventExtensionRequested, actor, payload, idempotencyKey(c))
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)

	utils.RespondJSON(c, http.StatusCreated, "Extension requested", extension)
}

// DecideExtension approves or rejects a pending extension request. The
// decision event is appended under a deterministic idempotency key, so a
// retried decision never double-records.
func (cc *ComplaintController) DecideExtension(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid request id"))
		return
	}

	type request struct {
		Approve bool `json:"approve"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := cc.actor(c)
	var extension models.ExtensionRequest
	var pending pendingEvent

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&extension, requestID).Error; err != nil {
			return err
		}
		if extension.Status != models.ExtensionStatusPending {
			return errors.New("extension request already decided")
		}

		status := models.ExtensionStatusRejected
		eventType := models.EventExtensionRejected
		if req.Approve {
			status = models.ExtensionStatusApproved
			eventType = models.EventExtensionApproved
		}

		updates := map[string]interface{}{
			"status":        status,
			"decided_by_id": actor.UserID,
			"decided_at":    time.Now(),
		}
		if err := tx.Model(&extension).Updates(updates).Error; err != nil {
			return err
		}
		if req.Approve {
			if err := tx.Model(&models.Complaint{}).
				Where("id = ?", extension.ComplaintID).
				Update("due_at", extension.NewDueAt).Error; err != nil {
				return err
			}
		}

		payload := models.ExtensionPayload{RequestID: extension.ID}
		key := "extension-decision-" + strconv.FormatUint(requestID, 10)
		return pending.append(tx, extension.ComplaintID, eventType, actor, payload, key)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pending.notify(cc.Dispatcher)

	utils.RespondJSON(c, http.StatusOK, "Extension decided", extension)
}
