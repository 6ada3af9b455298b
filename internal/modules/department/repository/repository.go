package repository

import (
	"context"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/model"
)

type DepartmentRepository interface {
	Create(ctx context.Context, department *model.Department) error
	FindAll(ctx context.Context) ([]model.Department, error)
	FindByID(ctx context.Context, id uint) (*model.Department, error)
	Update(ctx context.Context, department *model.Department) error
	Delete(ctx context.Context, id uint) error
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, department *model.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *departmentRepository) FindAll(ctx context.Context) ([]model.Department, error) {
	var departments []model.Department
	err := r.db.WithContext(ctx).Order("name").Find(&departments).Error
	return departments, err
}

func (r *departmentRepository) FindByID(ctx context.Context, id uint) (*model.Department, error) {
	var department model.Department
	if err := r.db.WithContext(ctx).First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) Update(ctx context.Context, department *model.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

// Delete detaches doctors and drops the department's pre-visit questions in
// one transaction. Doctor profiles survive with a null department.
func (r *departmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.DoctorProfile{}).
			Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("department_id = ?", id).
			Delete(&model.PreVisitQuestion{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Department{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
