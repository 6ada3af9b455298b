package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/labreport/dto"
	"carelink.id/clinicapi/internal/modules/labreport/repository"
	notifSvc "carelink.id/clinicapi/internal/modules/notification/service"
	profileRepo "carelink.id/clinicapi/internal/modules/profile/repository"
	"carelink.id/clinicapi/pkg/apperror"
	commonDto "carelink.id/clinicapi/pkg/dto"
	"carelink.id/clinicapi/pkg/storage"
)

const labReportFolder = "clinic/lab-reports"

type ReportTypeService interface {
	Create(ctx context.Context, input dto.CreateReportTypeInput) (*dto.ReportTypeResponse, error)
	List(ctx context.Context) ([]dto.ReportTypeResponse, error)
	Get(ctx context.Context, id uint) (*dto.ReportTypeResponse, error)
	Update(ctx context.Context, id uint, input dto.UpdateReportTypeInput) (*dto.ReportTypeResponse, error)
	Delete(ctx context.Context, id uint) error
}

type reportTypeService struct {
	repo repository.ReportTypeRepository
}

func NewReportTypeService(repo repository.ReportTypeRepository) ReportTypeService {
	return &reportTypeService{repo: repo}
}

func (s *reportTypeService) Create(ctx context.Context, input dto.CreateReportTypeInput) (*dto.ReportTypeResponse, error) {
	reportType := &model.ReportType{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := s.repo.Create(ctx, reportType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "report type name already exists", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := dto.NewReportTypeResponse(reportType)
	return &resp, nil
}

func (s *reportTypeService) List(ctx context.Context) ([]dto.ReportTypeResponse, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReportTypeResponse, 0, len(types))
	for i := range types {
		responses = append(responses, dto.NewReportTypeResponse(&types[i]))
	}
	return responses, nil
}

func (s *reportTypeService) Get(ctx context.Context, id uint) (*dto.ReportTypeResponse, error) {
	reportType, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "report type not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewReportTypeResponse(reportType)
	return &resp, nil
}

func (s *reportTypeService) Update(ctx context.Context, id uint, input dto.UpdateReportTypeInput) (*dto.ReportTypeResponse, error) {
	reportType, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "report type not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.Name != nil {
		reportType.Name = *input.Name
	}
	if input.Description != nil {
		reportType.Description = input.Description
	}

	if err := s.repo.Update(ctx, reportType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "report type name already exists", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := dto.NewReportTypeResponse(reportType)
	return &resp, nil
}

func (s *reportTypeService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "report type not found", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

type LabReportService interface {
	Upload(ctx context.Context, identity authz.Identity, patientID uint, input dto.UploadLabReportInput, file *commonDto.UploadFile) (*dto.LabReportResponse, error)
	List(ctx context.Context, identity authz.Identity) ([]dto.LabReportResponse, error)
	Get(ctx context.Context, identity authz.Identity, id uint) (*dto.LabReportResponse, error)
	ListByReportType(ctx context.Context, identity authz.Identity, reportTypeID uint) ([]dto.LabReportResponse, error)
	ListByPatient(ctx context.Context, identity authz.Identity, patientID uint) ([]dto.LabReportResponse, error)
	Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdateLabReportInput, file *commonDto.UploadFile) (*dto.LabReportResponse, error)
	Delete(ctx context.Context, identity authz.Identity, id uint) error
}

type labReportService struct {
	repo          repository.LabReportRepository
	patients      profileRepo.PatientProfileRepository
	fileStorage   storage.FileStorage
	notifications notifSvc.NotificationService
}

func NewLabReportService(repo repository.LabReportRepository, patients profileRepo.PatientProfileRepository, fileStorage storage.FileStorage, notifications notifSvc.NotificationService) LabReportService {
	return &labReportService{
		repo:          repo,
		patients:      patients,
		fileStorage:   fileStorage,
		notifications: notifications,
	}
}

// canWrite limits report mutations to clinicians, admins and the owning
// patient.
func (s *labReportService) canWrite(identity authz.Identity, patientID uint) bool {
	switch identity.Role {
	case model.RoleAdmin, model.RoleDoctor:
		return true
	case model.RolePatient:
		return identity.ProfileID != nil && *identity.ProfileID == patientID
	}
	return false
}

func (s *labReportService) Upload(ctx context.Context, identity authz.Identity, patientID uint, input dto.UploadLabReportInput, file *commonDto.UploadFile) (*dto.LabReportResponse, error) {
	if file == nil {
		return nil, apperror.New(http.StatusBadRequest, "file is required", apperror.ErrBadRequest)
	}
	if !s.canWrite(identity, patientID) {
		return nil, apperror.New(http.StatusForbidden, "you can only upload reports for your own profile", apperror.ErrForbidden)
	}

	patient, err := s.patients.FindVisibleByID(ctx, identity, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "patient profile not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	fileURL, err := s.fileStorage.Upload(ctx, file.Reader, labReportFolder, file.FileName)
	if err != nil {
		return nil, err
	}

	report := &model.LabReport{
		PatientID:    patient.ID,
		FileURL:      fileURL,
		ReportTypeID: input.ReportTypeID,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		if delErr := s.fileStorage.Delete(ctx, fileURL); delErr != nil {
			logrus.WithError(delErr).WithField("file_url", fileURL).Warn("failed to release stored file")
		}
		return nil, err
	}

	if s.notifications != nil {
		notification := &model.Notification{
			UserID:  patient.UserID,
			Type:    model.NotificationLabReportUploaded,
			Message: "A new lab report has been added to your record",
		}
		if err := s.notifications.Notify(ctx, notification); err != nil {
			logrus.WithError(err).Warn("failed to send lab report notification")
		}
	}

	created, err := s.repo.FindVisibleByID(ctx, identity, report.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewLabReportResponse(created)
	return &resp, nil
}

func (s *labReportService) List(ctx context.Context, identity authz.Identity) ([]dto.LabReportResponse, error) {
	reports, err := s.repo.FindAll(ctx, identity)
	if err != nil {
		return nil, err
	}
	return toResponses(reports), nil
}

func (s *labReportService) Get(ctx context.Context, identity authz.Identity, id uint) (*dto.LabReportResponse, error) {
	report, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "lab report not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewLabReportResponse(report)
	return &resp, nil
}

func (s *labReportService) ListByReportType(ctx context.Context, identity authz.Identity, reportTypeID uint) ([]dto.LabReportResponse, error) {
	reports, err := s.repo.FindByReportType(ctx, identity, reportTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "report type not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return toResponses(reports), nil
}

func (s *labReportService) ListByPatient(ctx context.Context, identity authz.Identity, patientID uint) ([]dto.LabReportResponse, error) {
	if identity.Role == model.RolePatient {
		if identity.ProfileID == nil || *identity.ProfileID != patientID {
			return nil, apperror.New(http.StatusForbidden, "you can only view your own lab reports", apperror.ErrForbidden)
		}
	}

	reports, err := s.repo.FindByPatient(ctx, identity, patientID)
	if err != nil {
		return nil, err
	}
	return toResponses(reports), nil
}

func (s *labReportService) Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdateLabReportInput, file *commonDto.UploadFile) (*dto.LabReportResponse, error) {
	report, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "lab report not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !s.canWrite(identity, report.PatientID) {
		return nil, apperror.New(http.StatusForbidden, "you cannot modify this lab report", apperror.ErrForbidden)
	}

	if input.ReportTypeID != nil {
		report.ReportTypeID = input.ReportTypeID
	}

	var previousFile string
	if file != nil {
		fileURL, err := s.fileStorage.Upload(ctx, file.Reader, labReportFolder, file.FileName)
		if err != nil {
			return nil, err
		}
		if report.FileURL != "" && report.FileURL != fileURL {
			previousFile = report.FileURL
		}
		report.FileURL = fileURL
	}

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	if previousFile != "" {
		if err := s.fileStorage.Delete(ctx, previousFile); err != nil {
			logrus.WithError(err).WithField("file_url", previousFile).Warn("failed to release replaced report file")
		}
	}

	updated, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewLabReportResponse(updated)
	return &resp, nil
}

func (s *labReportService) Delete(ctx context.Context, identity authz.Identity, id uint) error {
	report, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "lab report not found", apperror.ErrNotFound)
		}
		return err
	}

	if !s.canWrite(identity, report.PatientID) {
		return apperror.New(http.StatusForbidden, "you cannot delete this lab report", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.fileStorage.Delete(ctx, report.FileURL); err != nil {
		logrus.WithError(err).WithField("file_url", report.FileURL).Warn("failed to release stored file")
	}

	return nil
}

func toResponses(reports []model.LabReport) []dto.LabReportResponse {
	responses := make([]dto.LabReportResponse, 0, len(reports))
	for i := range reports {
		responses = append(responses, dto.NewLabReportResponse(&reports[i]))
	}
	return responses
}
