package repository

import (
	"context"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindAll(ctx context.Context, id authz.Identity) ([]model.Appointment, error)
	FindVisibleByID(ctx context.Context, id authz.Identity, appointmentID uint) (*model.Appointment, error)
	FindForPatient(ctx context.Context, id authz.Identity, patientID string) ([]model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, appointmentID uint) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func withParticipants(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Doctor.DoctorProfile").
		Preload("Doctor.DoctorProfile.Department")
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) FindAll(ctx context.Context, id authz.Identity) ([]model.Appointment, error) {
	scoped, err := authz.ScopeAppointments(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var appointments []model.Appointment
	err = withParticipants(scoped).Order("time").Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindVisibleByID(ctx context.Context, id authz.Identity, appointmentID uint) (*model.Appointment, error) {
	scoped, err := authz.ScopeAppointments(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var appointment model.Appointment
	if err := withParticipants(scoped).First(&appointment, appointmentID).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindForPatient(ctx context.Context, id authz.Identity, patientID string) ([]model.Appointment, error) {
	scoped, err := authz.ScopePatientAppointments(r.db.WithContext(ctx), id, patientID)
	if err != nil {
		return nil, err
	}

	var appointments []model.Appointment
	err = withParticipants(scoped).Order("time").Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

// Delete removes the booking together with its pre-visit report.
func (r *appointmentRepository) Delete(ctx context.Context, appointmentID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", appointmentID).
			Delete(&model.PreVisitReport{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Appointment{}, appointmentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
