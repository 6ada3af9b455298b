package repository

import (
	"context"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
)

type DoctorProfileRepository interface {
	FindAll(ctx context.Context) ([]model.DoctorProfile, error)
	FindByID(ctx context.Context, id uint) (*model.DoctorProfile, error)
	FindByDepartment(ctx context.Context, departmentID uint) ([]model.DoctorProfile, error)
	Save(ctx context.Context, profile *model.DoctorProfile) error
	Delete(ctx context.Context, id uint) error
}

type doctorProfileRepository struct {
	db *gorm.DB
}

func NewDoctorProfileRepository(db *gorm.DB) DoctorProfileRepository {
	return &doctorProfileRepository{db: db}
}

func (r *doctorProfileRepository) FindAll(ctx context.Context) ([]model.DoctorProfile, error) {
	var profiles []model.DoctorProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		Order("id").
		Find(&profiles).Error
	return profiles, err
}

func (r *doctorProfileRepository) FindByID(ctx context.Context, id uint) (*model.DoctorProfile, error) {
	var profile model.DoctorProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		First(&profile, id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByDepartment distinguishes an unknown department from one with no
// doctors: the former is a lookup failure, the latter an empty list.
func (r *doctorProfileRepository) FindByDepartment(ctx context.Context, departmentID uint) ([]model.DoctorProfile, error) {
	var department model.Department
	if err := r.db.WithContext(ctx).First(&department, departmentID).Error; err != nil {
		return nil, err
	}

	var profiles []model.DoctorProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		Where("department_id = ?", departmentID).
		Order("id").
		Find(&profiles).Error
	return profiles, err
}

func (r *doctorProfileRepository) Save(ctx context.Context, profile *model.DoctorProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *doctorProfileRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.DoctorProfile{}, id).Error
}

type PatientProfileRepository interface {
	FindAll(ctx context.Context, id authz.Identity) ([]model.PatientProfile, error)
	FindVisibleByID(ctx context.Context, id authz.Identity, profileID uint) (*model.PatientProfile, error)
	Save(ctx context.Context, profile *model.PatientProfile) error
}

type patientProfileRepository struct {
	db *gorm.DB
}

func NewPatientProfileRepository(db *gorm.DB) PatientProfileRepository {
	return &patientProfileRepository{db: db}
}

func (r *patientProfileRepository) FindAll(ctx context.Context, id authz.Identity) ([]model.PatientProfile, error) {
	scoped, err := authz.ScopePatientProfiles(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var profiles []model.PatientProfile
	err = scoped.Preload("User").Order("id").Find(&profiles).Error
	return profiles, err
}

func (r *patientProfileRepository) FindVisibleByID(ctx context.Context, id authz.Identity, profileID uint) (*model.PatientProfile, error) {
	scoped, err := authz.ScopePatientProfiles(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var profile model.PatientProfile
	if err := scoped.Preload("User").First(&profile, profileID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *patientProfileRepository) Save(ctx context.Context, profile *model.PatientProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
