// Package authz centralizes the per-resource role scoping rules. Repositories
// apply these scopes instead of branching on roles at each call site.
package authz

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/pkg/apperror"
)

// Identity is the requesting principal, as resolved from the access token.
// Claims are trusted here; the identity store is not re-queried.
type Identity struct {
	UserID    uuid.UUID
	Username  string
	Role      string
	ProfileID *uint
}

func (id Identity) IsAdmin() bool { return id.Role == model.RoleAdmin }

// ScopeUsers restricts a users query to what the identity may see:
// admins see everyone, doctors see the doctor directory, patients see
// only themselves.
func ScopeUsers(db *gorm.DB, id Identity) (*gorm.DB, error) {
	switch id.Role {
	case model.RoleAdmin:
		return db, nil
	case model.RoleDoctor:
		return db.Where("role = ?", model.RoleDoctor), nil
	case model.RolePatient:
		return db.Where("id = ?", id.UserID), nil
	}
	return nil, apperror.ErrForbidden
}

// ScopeAppointments restricts an appointments query to the identity's side of
// the booking. Admins see everything.
func ScopeAppointments(db *gorm.DB, id Identity) (*gorm.DB, error) {
	switch id.Role {
	case model.RoleAdmin:
		return db, nil
	case model.RoleDoctor:
		return db.Where("doctor_id = ?", id.UserID), nil
	case model.RolePatient:
		return db.Where("patient_id = ?", id.UserID), nil
	}
	return nil, apperror.ErrForbidden
}

// ScopePatientProfiles restricts a patient profiles query. Clinicians and
// admins see every patient record; a patient sees only their own.
func ScopePatientProfiles(db *gorm.DB, id Identity) (*gorm.DB, error) {
	switch id.Role {
	case model.RoleAdmin, model.RoleDoctor:
		return db, nil
	case model.RolePatient:
		return db.Where("user_id = ?", id.UserID), nil
	}
	return nil, apperror.ErrForbidden
}

// ScopeLabReports restricts a lab reports query. Patients see reports filed
// against their own profile; clinicians and admins see all of them.
func ScopeLabReports(db *gorm.DB, id Identity) (*gorm.DB, error) {
	switch id.Role {
	case model.RoleAdmin, model.RoleDoctor:
		return db, nil
	case model.RolePatient:
		if id.ProfileID == nil {
			return db.Where("1 = 0"), nil
		}
		return db.Where("patient_id = ?", *id.ProfileID), nil
	}
	return nil, apperror.ErrForbidden
}

// ScopePatientAppointments is the policy for the per-patient appointments
// endpoint. patientID is the raw path parameter; empty means absent.
//
// Admins must name a patient and then see that patient's appointments.
// Doctors see their own schedule regardless of the requested patient.
// Patients may only request themselves.
func ScopePatientAppointments(db *gorm.DB, id Identity, patientID string) (*gorm.DB, error) {
	switch id.Role {
	case model.RoleAdmin:
		if patientID == "" {
			return nil, apperror.New(400, "patient id is required for admin access", apperror.ErrBadRequest)
		}
		parsed, err := uuid.Parse(patientID)
		if err != nil {
			return nil, apperror.New(400, "invalid patient id", apperror.ErrBadRequest)
		}
		return db.Where("patient_id = ?", parsed), nil
	case model.RoleDoctor:
		return db.Where("doctor_id = ?", id.UserID), nil
	case model.RolePatient:
		if patientID != "" && patientID != id.UserID.String() {
			return nil, apperror.New(403, "you can only view your own appointments", apperror.ErrForbidden)
		}
		return db.Where("patient_id = ?", id.UserID), nil
	}
	return nil, apperror.ErrForbidden
}
