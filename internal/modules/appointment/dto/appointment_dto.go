package dto

import (
	"time"

	"github.com/google/uuid"

	"carelink.id/clinicapi/internal/model"
)

type CreateAppointmentInput struct {
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID    uuid.UUID `json:"doctor_id" binding:"required"`
	Time        time.Time `json:"time" binding:"required"`
	Description *string   `json:"description"`
}

type UpdateAppointmentInput struct {
	Time        *time.Time `json:"time"`
	Status      *string    `json:"status"`
	Description *string    `json:"description"`
}

// AppointmentResponse carries the derived display fields alongside the raw
// booking. Every derived hop tolerates a missing profile or department.
type AppointmentResponse struct {
	ID              uint      `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	DoctorProfileID *uint     `json:"doctor_profile_id"`
	Department      string    `json:"department"`
	Time            time.Time `json:"time"`
	Status          string    `json:"status"`
	Description     *string   `json:"description"`
}

func NewAppointmentResponse(a *model.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		Time:        a.Time,
		Status:      a.Status,
		Description: a.Description,
	}

	if a.Patient != nil {
		resp.PatientName = a.Patient.DisplayName()
	}
	if a.Doctor != nil {
		resp.DoctorName = a.Doctor.DisplayName()
		if profile := a.Doctor.DoctorProfile; profile != nil {
			resp.DoctorProfileID = &profile.ID
			if profile.Department != nil {
				resp.Department = profile.Department.Name
			}
		}
	}

	return resp
}
