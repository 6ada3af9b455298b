package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/profile/lifecycle"
)

type UserRepository interface {
	// Create inserts the user together with the specialized profile
	// matching their role, in one transaction.
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindAll returns the users visible to the requesting identity.
	FindAll(ctx context.Context, id authz.Identity) ([]*model.User, error)
	// FindVisibleByID returns the user only if the identity may see them.
	FindVisibleByID(ctx context.Context, id authz.Identity, userID uuid.UUID) (*model.User, error)
	// Update saves the user and, when the role changed from oldRole,
	// swaps the specialized profile in the same transaction. It returns
	// the file URLs orphaned by the swap.
	Update(ctx context.Context, user *model.User, oldRole string) ([]string, error)
	// Delete removes the user and everything they own, returning the
	// orphaned file URLs for post-commit release.
	Delete(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type userRepository struct {
	db       *gorm.DB
	profiles *lifecycle.Manager
}

func NewUserRepository(db *gorm.DB, profiles *lifecycle.Manager) UserRepository {
	return &userRepository{db: db, profiles: profiles}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("PatientProfile", "DoctorProfile").Create(user).Error; err != nil {
			return err
		}
		return r.profiles.EnsureProfile(tx, user)
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, id authz.Identity) ([]*model.User, error) {
	scoped, err := authz.ScopeUsers(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var users []*model.User
	if err := scoped.
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) FindVisibleByID(ctx context.Context, id authz.Identity, userID uuid.UUID) (*model.User, error) {
	scoped, err := authz.ScopeUsers(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := scoped.
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User, oldRole string) ([]string, error) {
	var orphaned []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("PatientProfile", "DoctorProfile").Save(user).Error; err != nil {
			return err
		}

		released, err := r.profiles.ApplyRoleChange(tx, user, oldRole)
		if err != nil {
			return err
		}
		orphaned = released
		return nil
	})
	if err != nil {
		return nil, err
	}

	return orphaned, nil
}

func (r *userRepository) Delete(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var orphaned []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var patient model.PatientProfile
		if err := tx.Where("user_id = ?", userID).First(&patient).Error; err == nil {
			var reports []model.LabReport
			if err := tx.Where("patient_id = ?", patient.ID).Find(&reports).Error; err != nil {
				return err
			}
			for _, report := range reports {
				orphaned = append(orphaned, report.FileURL)
			}
			if err := tx.Where("patient_id = ?", patient.ID).Delete(&model.LabReport{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&patient).Error; err != nil {
				return err
			}
		}

		var doctor model.DoctorProfile
		if err := tx.Where("user_id = ?", userID).First(&doctor).Error; err == nil {
			if doctor.ImageURL != nil && *doctor.ImageURL != "" {
				orphaned = append(orphaned, *doctor.ImageURL)
			}
			if err := tx.Delete(&doctor).Error; err != nil {
				return err
			}
		}

		// Appointments on either side go with the user, and their
		// pre-visit reports with them.
		var appointmentIDs []uint
		if err := tx.Model(&model.Appointment{}).
			Where("patient_id = ? OR doctor_id = ?", userID, userID).
			Pluck("id", &appointmentIDs).Error; err != nil {
			return err
		}
		if len(appointmentIDs) > 0 {
			if err := tx.Where("appointment_id IN ?", appointmentIDs).Delete(&model.PreVisitReport{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", appointmentIDs).Delete(&model.Appointment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.Notification{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.User{}, "id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}

	return orphaned, nil
}
