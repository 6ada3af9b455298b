package repository

import (
	"context"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
)

type ReportTypeRepository interface {
	Create(ctx context.Context, reportType *model.ReportType) error
	FindAll(ctx context.Context) ([]model.ReportType, error)
	FindByID(ctx context.Context, id uint) (*model.ReportType, error)
	Update(ctx context.Context, reportType *model.ReportType) error
	Delete(ctx context.Context, id uint) error
}

type reportTypeRepository struct {
	db *gorm.DB
}

func NewReportTypeRepository(db *gorm.DB) ReportTypeRepository {
	return &reportTypeRepository{db: db}
}

func (r *reportTypeRepository) Create(ctx context.Context, reportType *model.ReportType) error {
	return r.db.WithContext(ctx).Create(reportType).Error
}

func (r *reportTypeRepository) FindAll(ctx context.Context) ([]model.ReportType, error) {
	var types []model.ReportType
	err := r.db.WithContext(ctx).Order("name").Find(&types).Error
	return types, err
}

func (r *reportTypeRepository) FindByID(ctx context.Context, id uint) (*model.ReportType, error) {
	var reportType model.ReportType
	if err := r.db.WithContext(ctx).First(&reportType, id).Error; err != nil {
		return nil, err
	}
	return &reportType, nil
}

func (r *reportTypeRepository) Update(ctx context.Context, reportType *model.ReportType) error {
	return r.db.WithContext(ctx).Save(reportType).Error
}

// Delete detaches reports from the type before removing it. Reports survive
// with a null type.
func (r *reportTypeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LabReport{}).
			Where("report_type_id = ?", id).
			Update("report_type_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.ReportType{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

type LabReportRepository interface {
	Create(ctx context.Context, report *model.LabReport) error
	FindAll(ctx context.Context, id authz.Identity) ([]model.LabReport, error)
	FindVisibleByID(ctx context.Context, id authz.Identity, reportID uint) (*model.LabReport, error)
	FindByReportType(ctx context.Context, id authz.Identity, reportTypeID uint) ([]model.LabReport, error)
	FindByPatient(ctx context.Context, id authz.Identity, patientID uint) ([]model.LabReport, error)
	Update(ctx context.Context, report *model.LabReport) error
	Delete(ctx context.Context, reportID uint) error
}

type labReportRepository struct {
	db *gorm.DB
}

func NewLabReportRepository(db *gorm.DB) LabReportRepository {
	return &labReportRepository{db: db}
}

func (r *labReportRepository) Create(ctx context.Context, report *model.LabReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *labReportRepository) FindAll(ctx context.Context, id authz.Identity) ([]model.LabReport, error) {
	scoped, err := authz.ScopeLabReports(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var reports []model.LabReport
	err = scoped.Preload("ReportType").Order("uploaded_at desc").Find(&reports).Error
	return reports, err
}

func (r *labReportRepository) FindVisibleByID(ctx context.Context, id authz.Identity, reportID uint) (*model.LabReport, error) {
	scoped, err := authz.ScopeLabReports(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var report model.LabReport
	if err := scoped.Preload("ReportType").First(&report, reportID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// FindByReportType fails the lookup when the type itself is unknown instead
// of returning an empty list.
func (r *labReportRepository) FindByReportType(ctx context.Context, id authz.Identity, reportTypeID uint) ([]model.LabReport, error) {
	var reportType model.ReportType
	if err := r.db.WithContext(ctx).First(&reportType, reportTypeID).Error; err != nil {
		return nil, err
	}

	scoped, err := authz.ScopeLabReports(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var reports []model.LabReport
	err = scoped.Preload("ReportType").
		Where("report_type_id = ?", reportTypeID).
		Order("uploaded_at desc").
		Find(&reports).Error
	return reports, err
}

func (r *labReportRepository) FindByPatient(ctx context.Context, id authz.Identity, patientID uint) ([]model.LabReport, error) {
	scoped, err := authz.ScopeLabReports(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	var reports []model.LabReport
	err = scoped.Preload("ReportType").
		Where("patient_id = ?", patientID).
		Order("uploaded_at desc").
		Find(&reports).Error
	return reports, err
}

func (r *labReportRepository) Update(ctx context.Context, report *model.LabReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *labReportRepository) Delete(ctx context.Context, reportID uint) error {
	result := r.db.WithContext(ctx).Delete(&model.LabReport{}, reportID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
