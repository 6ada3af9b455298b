// Package lifecycle keeps a user's role and their specialized profile in
// sync: PATIENT users own exactly one PatientProfile, DOCTOR users exactly one
// DoctorProfile, ADMIN users none. All methods run inside the caller's
// transaction so a failed profile transition aborts the user mutation with it.
package lifecycle

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/model"
)

// ErrInconsistentProfile signals that a profile transition could not complete
// and the surrounding user mutation must be rolled back.
var ErrInconsistentProfile = errors.New("profile transition failed")

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// EnsureProfile creates the specialized profile matching the user's role.
// Admin users get none. Called when a user row is first created.
func (m *Manager) EnsureProfile(tx *gorm.DB, user *model.User) error {
	switch user.Role {
	case model.RolePatient:
		profile := model.PatientProfile{UserID: user.ID}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
		}
		user.PatientProfile = &profile
	case model.RoleDoctor:
		profile := model.DoctorProfile{UserID: user.ID}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
		}
		user.DoctorProfile = &profile
	}
	return nil
}

// ApplyRoleChange deletes the profile matching oldRole and get-or-creates the
// one matching the user's new role. It returns the file URLs orphaned by the
// transition (a deleted doctor profile's image, a deleted patient profile's
// lab report files) so the caller can release them after commit.
func (m *Manager) ApplyRoleChange(tx *gorm.DB, user *model.User, oldRole string) ([]string, error) {
	if oldRole == user.Role {
		return nil, nil
	}

	var orphaned []string

	switch oldRole {
	case model.RolePatient:
		var profile model.PatientProfile
		err := tx.Where("user_id = ?", user.ID).First(&profile).Error
		if err == nil {
			var reports []model.LabReport
			if err := tx.Where("patient_id = ?", profile.ID).Find(&reports).Error; err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
			}
			for _, r := range reports {
				orphaned = append(orphaned, r.FileURL)
			}
			if err := tx.Where("patient_id = ?", profile.ID).Delete(&model.LabReport{}).Error; err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
			}
			if err := tx.Delete(&profile).Error; err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
			}
			user.PatientProfile = nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
		}
	case model.RoleDoctor:
		var profile model.DoctorProfile
		err := tx.Where("user_id = ?", user.ID).First(&profile).Error
		if err == nil {
			if profile.ImageURL != nil && *profile.ImageURL != "" {
				orphaned = append(orphaned, *profile.ImageURL)
			}
			if err := tx.Delete(&profile).Error; err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
			}
			user.DoctorProfile = nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
		}
	}

	switch user.Role {
	case model.RolePatient:
		var profile model.PatientProfile
		if err := tx.Where(model.PatientProfile{UserID: user.ID}).FirstOrCreate(&profile).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
		}
		user.PatientProfile = &profile
	case model.RoleDoctor:
		var profile model.DoctorProfile
		if err := tx.Where(model.DoctorProfile{UserID: user.ID}).FirstOrCreate(&profile).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInconsistentProfile, err)
		}
		user.DoctorProfile = &profile
	}

	return orphaned, nil
}
