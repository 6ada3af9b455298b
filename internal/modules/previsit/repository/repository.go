package repository

import (
	"context"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/model"
)

type PreVisitQuestionRepository interface {
	Create(ctx context.Context, question *model.PreVisitQuestion) error
	FindAll(ctx context.Context) ([]model.PreVisitQuestion, error)
	FindByID(ctx context.Context, id uint) (*model.PreVisitQuestion, error)
	FindByDepartment(ctx context.Context, departmentID uint) ([]model.PreVisitQuestion, error)
	Update(ctx context.Context, question *model.PreVisitQuestion) error
	Delete(ctx context.Context, id uint) error
}

type preVisitQuestionRepository struct {
	db *gorm.DB
}

func NewPreVisitQuestionRepository(db *gorm.DB) PreVisitQuestionRepository {
	return &preVisitQuestionRepository{db: db}
}

func (r *preVisitQuestionRepository) Create(ctx context.Context, question *model.PreVisitQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *preVisitQuestionRepository) FindAll(ctx context.Context) ([]model.PreVisitQuestion, error) {
	var questions []model.PreVisitQuestion
	err := r.db.WithContext(ctx).Order("id").Find(&questions).Error
	return questions, err
}

func (r *preVisitQuestionRepository) FindByID(ctx context.Context, id uint) (*model.PreVisitQuestion, error) {
	var question model.PreVisitQuestion
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *preVisitQuestionRepository) FindByDepartment(ctx context.Context, departmentID uint) ([]model.PreVisitQuestion, error) {
	var department model.Department
	if err := r.db.WithContext(ctx).First(&department, departmentID).Error; err != nil {
		return nil, err
	}

	var questions []model.PreVisitQuestion
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("id").
		Find(&questions).Error
	return questions, err
}

func (r *preVisitQuestionRepository) Update(ctx context.Context, question *model.PreVisitQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *preVisitQuestionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.PreVisitQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type PreVisitReportRepository interface {
	Create(ctx context.Context, report *model.PreVisitReport) error
	FindAll(ctx context.Context) ([]model.PreVisitReport, error)
	FindByAppointment(ctx context.Context, appointmentID uint) (*model.PreVisitReport, error)
	Update(ctx context.Context, report *model.PreVisitReport) error
	DeleteByAppointment(ctx context.Context, appointmentID uint) error
}

type preVisitReportRepository struct {
	db *gorm.DB
}

func NewPreVisitReportRepository(db *gorm.DB) PreVisitReportRepository {
	return &preVisitReportRepository{db: db}
}

func (r *preVisitReportRepository) Create(ctx context.Context, report *model.PreVisitReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *preVisitReportRepository) FindAll(ctx context.Context) ([]model.PreVisitReport, error) {
	var reports []model.PreVisitReport
	err := r.db.WithContext(ctx).Order("id").Find(&reports).Error
	return reports, err
}

// FindByAppointment is the item lookup; a report is addressed by its
// appointment, not by its own id.
func (r *preVisitReportRepository) FindByAppointment(ctx context.Context, appointmentID uint) (*model.PreVisitReport, error) {
	var report model.PreVisitReport
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *preVisitReportRepository) Update(ctx context.Context, report *model.PreVisitReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *preVisitReportRepository) DeleteByAppointment(ctx context.Context, appointmentID uint) error {
	result := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Delete(&model.PreVisitReport{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
