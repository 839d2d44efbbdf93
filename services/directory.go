package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/aryawidjaja/grievance-portal/models"
)

// DirectoryService answers the read-only lookups the recipient resolver
// needs: who the admins are, who holds a complaint, who asked for an
// extension.
type DirectoryService struct {
	DB *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{DB: db}
}

// GetAllAdminUserIDs returns the current admin roster.
func (ds *DirectoryService) GetAllAdminUserIDs() ([]uint, error) {
	var ids []uint
	err := ds.DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Pluck("id", &ids).Error
	return ids, err
}

// GetAssignedOfficerUserID returns the officer currently holding the
// complaint, or nil when unassigned.
func (ds *DirectoryService) GetAssignedOfficerUserID(complaintID uint) (*uint, error) {
	var complaint models.Complaint
	err := ds.DB.Select("assigned_officer_id").First(&complaint, complaintID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return complaint.AssignedOfficerID, nil
}

// GetExtensionRequesterUserID returns who filed the extension request, or
// nil when the request does not exist.
func (ds *DirectoryService) GetExtensionRequesterUserID(requestID uint) (*uint, error) {
	var request models.ExtensionRequest
	err := ds.DB.Select("requester_id").First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := request.RequesterID
	return &id, nil
}
