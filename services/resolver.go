package services

import (
	"encoding/json"
	"fmt"

	"github.com/aryawidjaja/grievance-portal/models"
)

// ResolvedNotification is the resolver's answer for one event: who to tell
// and what to say. Recipients are already de-duplicated by user id.
type ResolvedNotification struct {
	Recipients []uint
	Title      string
	Body       string
}

// resolveFunc maps one event to its targeted officer recipients plus display
// text. Admin broadcast is handled outside the table; handlers only add the
// event-specific targets.
type resolveFunc func(rs *ResolverService, event *models.TimelineEvent) (officers []uint, title, body string, err error)

// ResolverService turns a timeline event into a recipient set and display
// text. Each event type is one table entry; adding a type means adding an
// entry, not editing shared logic.
type ResolverService struct {
	Directory *DirectoryService
	handlers  map[string]resolveFunc
}

func NewResolverService(directory *DirectoryService) *ResolverService {
	rs := &ResolverService{Directory: directory}
	rs.handlers = map[string]resolveFunc{
		models.EventComplaintCreated:    resolveComplaintCreated,
		models.EventStatusChanged:       resolveStatusChanged,
		models.EventOfficerAssigned:     resolveOfficerAssigned,
		models.EventOfficerReassigned:   resolveOfficerReassigned,
		models.EventNoteAdded:           resolveNoteAdded,
		models.EventDocumentAdded:       resolveDocumentAdded,
		models.EventExtensionRequested:  resolveExtensionRequested,
		models.EventExtensionApproved:   resolveExtensionDecision("approved"),
		models.EventExtensionRejected:   resolveExtensionDecision("rejected"),
		models.EventComplaintResolved:   resolveComplaintResolved,
		models.EventComplaintReopened:   resolveComplaintReopened,
	}
	return rs
}

// Resolve produces the merged recipient set and text for one event. Admins
// always receive notifiable events (broadcast); officers are added per event
// type. An event type without a table entry still reaches admins under a
// generic title — it is never silently dropped.
func (rs *ResolverService) Resolve(event *models.TimelineEvent) (*ResolvedNotification, error) {
	admins, err := rs.Directory.GetAllAdminUserIDs()
	if err != nil {
		return nil, fmt.Errorf("admin roster lookup: %w", err)
	}

	var officers []uint
	title := "Complaint activity"
	body := fmt.Sprintf("New activity (%s) on complaint #%d.", event.EventType, event.ComplaintID)

	if handler, ok := rs.handlers[event.EventType]; ok {
		officers, title, body, err = handler(rs, event)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[uint]bool)
	recipients := make([]uint, 0, len(admins)+len(officers))
	for _, id := range admins {
		if id != 0 && !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}
	for _, id := range officers {
		if id != 0 && !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	return &ResolvedNotification{Recipients: recipients, Title: title, Body: body}, nil
}

// assignedOfficer is the shared side lookup for events that target whoever
// currently holds the complaint.
func (rs *ResolverService) assignedOfficer(complaintID uint) ([]uint, error) {
	id, err := rs.Directory.GetAssignedOfficerUserID(complaintID)
	if err != nil {
		return nil, fmt.Errorf("assignment lookup for complaint %d: %w", complaintID, err)
	}
	if id == nil {
		return nil, nil
	}
	return []uint{*id}, nil
}

func decodePayload(event *models.TimelineEvent, out interface{}) error {
	if len(event.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", event.EventID)
	}
	if err := json.Unmarshal(event.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.EventType, err)
	}
	return nil
}

func resolveComplaintCreated(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	return nil,
		"New complaint filed",
		fmt.Sprintf("Complaint #%d has been filed and awaits triage.", event.ComplaintID),
		nil
}

func resolveStatusChanged(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	var payload models.StatusChangedPayload
	if err := decodePayload(event, &payload); err != nil {
		return nil, "", "", err
	}
	officers, err := rs.assignedOfficer(event.ComplaintID)
	if err != nil {
		return nil, "", "", err
	}
	return officers,
		"Complaint status changed",
		fmt.Sprintf("Complaint #%d moved from %s to %s.", event.ComplaintID, payload.OldStatus, payload.NewStatus),
		nil
}

func resolveOfficerAssigned(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	var payload models.OfficerAssignedPayload
	if err := decodePayload(event, &payload); err != nil {
		return nil, "", "", err
	}
	return []uint{payload.AssignedToUserID},
		"Complaint assigned",
		fmt.Sprintf("Complaint #%d has been assigned to you.", event.ComplaintID),
		nil
}

func resolveOfficerReassigned(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	var payload models.OfficerReassignedPayload
	if err := decodePayload(event, &payload); err != nil {
		return nil, "", "", err
	}
	return []uint{payload.PreviousOfficerUserID, payload.NewOfficerUserID},
		"Complaint reassigned",
		fmt.Sprintf("Complaint #%d has been reassigned.", event.ComplaintID),
		nil
}

func resolveNoteAdded(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	officers, err := rs.assignedOfficer(event.ComplaintID)
	if err != nil {
		return nil, "", "", err
	}
	return officers,
		"Note added",
		fmt.Sprintf("A note was added to complaint #%d.", event.ComplaintID),
		nil
}

func resolveDocumentAdded(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	officers, err := rs.assignedOfficer(event.ComplaintID)
	if err != nil {
		return nil, "", "", err
	}
	return officers,
		"Document uploaded",
		fmt.Sprintf("A document was uploaded to complaint #%d.", event.ComplaintID),
		nil
}

func resolveExtensionRequested(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	return nil,
		"Extension requested",
		fmt.Sprintf("An extension was requested for complaint #%d.", event.ComplaintID),
		nil
}

// resolveExtensionDecision targets whoever filed the extension request,
// looked up by the request id carried in the payload.
func resolveExtensionDecision(verdict string) resolveFunc {
	return func(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
		var payload models.ExtensionPayload
		if err := decodePayload(event, &payload); err != nil {
			return nil, "", "", err
		}
		requester, err := rs.Directory.GetExtensionRequesterUserID(payload.RequestID)
		if err != nil {
			return nil, "", "", fmt.Errorf("extension requester lookup for request %d: %w", payload.RequestID, err)
		}
		var officers []uint
		if requester != nil {
			officers = []uint{*requester}
		}
		return officers,
			fmt.Sprintf("Extension %s", verdict),
			fmt.Sprintf("Your extension request for complaint #%d was %s.", event.ComplaintID, verdict),
			nil
	}
}

func resolveComplaintResolved(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	officers, err := rs.assignedOfficer(event.ComplaintID)
	if err != nil {
		return nil, "", "", err
	}
	return officers,
		"Complaint resolved",
		fmt.Sprintf("Complaint #%d has been marked resolved.", event.ComplaintID),
		nil
}

func resolveComplaintReopened(rs *ResolverService, event *models.TimelineEvent) ([]uint, string, string, error) {
	officers, err := rs.assignedOfficer(event.ComplaintID)
	if err != nil {
		return nil, "", "", err
	}
	return officers,
		"Complaint reopened",
		fmt.Sprintf("Complaint #%d has been reopened.", event.ComplaintID),
		nil
}
