package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationAppointmentStatus = "appointment_status"
	NotificationLabReportUploaded = "lab_report_uploaded"
)

type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          string    `gorm:"size:50;not null" json:"type"`
	Message       string    `gorm:"type:text" json:"message"`
	AppointmentID *uint     `json:"appointment_id,omitempty"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
