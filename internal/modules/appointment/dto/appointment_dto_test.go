package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"carelink.id/clinicapi/internal/model"
)

func TestNewAppointmentResponseDerivedFields(t *testing.T) {
	deptID := uint(3)
	appt := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Time:      time.Now(),
		Status:    model.AppointmentPending,
		Patient: &model.User{
			Username:  "pat",
			FirstName: "Pat",
			LastName:  "Jones",
		},
		Doctor: &model.User{
			Username:  "doc",
			FirstName: "Dana",
			LastName:  "Reyes",
			DoctorProfile: &model.DoctorProfile{
				DepartmentID: &deptID,
				Department:   &model.Department{Name: "Cardiology"},
			},
		},
	}
	appt.Doctor.DoctorProfile.ID = 42

	resp := NewAppointmentResponse(appt)

	if resp.PatientName != "Pat Jones" {
		t.Errorf("PatientName = %q", resp.PatientName)
	}
	if resp.DoctorName != "Dana Reyes" {
		t.Errorf("DoctorName = %q", resp.DoctorName)
	}
	if resp.DoctorProfileID == nil || *resp.DoctorProfileID != 42 {
		t.Errorf("DoctorProfileID = %v, want 42", resp.DoctorProfileID)
	}
	if resp.Department != "Cardiology" {
		t.Errorf("Department = %q", resp.Department)
	}
}

func TestNewAppointmentResponseToleratesMissingAssociations(t *testing.T) {
	cases := []struct {
		name string
		appt *model.Appointment
	}{
		{"no participants loaded", &model.Appointment{Status: model.AppointmentPending}},
		{"doctor without profile", &model.Appointment{
			Doctor: &model.User{Username: "doc"},
		}},
		{"profile without department", &model.Appointment{
			Doctor: &model.User{
				Username:      "doc",
				DoctorProfile: &model.DoctorProfile{},
			},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := NewAppointmentResponse(tc.appt)
			if resp.Department != "" {
				t.Errorf("Department = %q, want empty", resp.Department)
			}
			if tc.appt.Doctor == nil && resp.DoctorName != "" {
				t.Errorf("DoctorName = %q, want empty", resp.DoctorName)
			}
		})
	}
}

func TestNewAppointmentResponseDisplayNameFallsBackToUsername(t *testing.T) {
	appt := &model.Appointment{
		Patient: &model.User{Username: "pat"},
	}

	resp := NewAppointmentResponse(appt)
	if resp.PatientName != "pat" {
		t.Errorf("PatientName = %q, want username fallback", resp.PatientName)
	}
}
