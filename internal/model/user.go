package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolePatient = "PATIENT"
	RoleDoctor  = "DOCTOR"
	RoleAdmin   = "ADMIN"
)

// ValidRole reports whether role is one of the three supported roles.
func ValidRole(role string) bool {
	return role == RolePatient || role == RoleDoctor || role == RoleAdmin
}

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:100" json:"first_name"`
	LastName     string     `gorm:"size:100" json:"last_name"`
	Phone        *string    `gorm:"size:20" json:"phone,omitempty"`
	DOB          *time.Time `gorm:"type:date" json:"dob,omitempty"`
	Role         string     `gorm:"size:10;not null;default:PATIENT" json:"role"`
	IsStaff      bool       `gorm:"default:false" json:"is_staff"`
	IsSuperuser  bool       `gorm:"default:false" json:"is_superuser"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`

	PatientProfile *PatientProfile `gorm:"constraint:OnDelete:CASCADE" json:"patient_profile,omitempty"`
	DoctorProfile  *DoctorProfile  `gorm:"constraint:OnDelete:CASCADE" json:"doctor_profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName is the "First Last" form used on appointment listings.
// Falls back to the username when no name fields are set.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ProfileID returns the id of the specialized profile matching the user's
// current role, or nil for admins and users whose profile does not exist yet.
func (u *User) ProfileID() *uint {
	switch u.Role {
	case RoleDoctor:
		if u.DoctorProfile != nil {
			return &u.DoctorProfile.ID
		}
	case RolePatient:
		if u.PatientProfile != nil {
			return &u.PatientProfile.ID
		}
	}
	return nil
}
