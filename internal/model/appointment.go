package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AppointmentPending   = "pending"
	AppointmentApproved  = "approved"
	AppointmentRejected  = "rejected"
	AppointmentCompleted = "completed"
	AppointmentCanceled  = "canceled"
	AppointmentNoShow    = "no-show"
)

// ValidAppointmentStatus reports whether status is a known appointment state.
func ValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentPending, AppointmentApproved, AppointmentRejected,
		AppointmentCompleted, AppointmentCanceled, AppointmentNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PatientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Time        time.Time `gorm:"not null" json:"time"`
	Status      string    `gorm:"size:10;not null;default:pending" json:"status"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`

	Patient        *User           `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	Doctor         *User           `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"doctor,omitempty"`
	PreVisitReport *PreVisitReport `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"pre_visit_report,omitempty"`
}

// PreVisitReport holds a patient's answers to the department intake questions
// for one appointment. The response payload is free-form; no schema is
// enforced here.
type PreVisitReport struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	AppointmentID uint              `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Responses     datatypes.JSONMap `gorm:"not null" json:"responses"`
	CreatedAt     time.Time         `gorm:"autoCreateTime;<-:create" json:"created_at"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}
