package models

import "time"

// Complaint statuses
const (
	ComplaintStatusOpen       = "open"
	ComplaintStatusInProgress = "in_progress"
	ComplaintStatusResolved   = "resolved"
	ComplaintStatusReopened   = "reopened"
	ComplaintStatusClosed     = "closed"
)

type Complaint struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Title             string     `gorm:"type:varchar(255);not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	Category          string     `gorm:"type:varchar(100);index" json:"category"`
	Status            string     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	ReporterID        uint       `gorm:"not null;index" json:"reporter_id"`
	Reporter          User       `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	AssignedOfficerID *uint      `gorm:"index" json:"assigned_officer_id,omitempty"`
	AssignedOfficer   *User      `gorm:"foreignKey:AssignedOfficerID" json:"assigned_officer,omitempty"`
	DueAt             *time.Time `json:"due_at,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
}

type ComplaintNote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"not null;index" json:"complaint_id"`
	AuthorID    uint      `gorm:"not null" json:"author_id"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	Internal    bool      `gorm:"default:false" json:"internal"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

type ComplaintDocument struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"not null;index" json:"complaint_id"`
	UploaderID  uint      `gorm:"not null" json:"uploader_id"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType string    `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
