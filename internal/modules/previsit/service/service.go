package service

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	apptRepo "carelink.id/clinicapi/internal/modules/appointment/repository"
	"carelink.id/clinicapi/internal/modules/previsit/dto"
	"carelink.id/clinicapi/internal/modules/previsit/repository"
	"carelink.id/clinicapi/pkg/apperror"
)

type PreVisitQuestionService interface {
	Create(ctx context.Context, input dto.CreatePreVisitQuestionInput) (*dto.PreVisitQuestionResponse, error)
	List(ctx context.Context) ([]dto.PreVisitQuestionResponse, error)
	Get(ctx context.Context, id uint) (*dto.PreVisitQuestionResponse, error)
	ListByDepartment(ctx context.Context, departmentID uint) ([]dto.PreVisitQuestionResponse, error)
	Update(ctx context.Context, id uint, input dto.UpdatePreVisitQuestionInput) (*dto.PreVisitQuestionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type preVisitQuestionService struct {
	repo repository.PreVisitQuestionRepository
	db   *gorm.DB
}

func NewPreVisitQuestionService(repo repository.PreVisitQuestionRepository, db *gorm.DB) PreVisitQuestionService {
	return &preVisitQuestionService{repo: repo, db: db}
}

func (s *preVisitQuestionService) departmentExists(ctx context.Context, id uint) error {
	var department model.Department
	if err := s.db.WithContext(ctx).First(&department, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "department not found", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *preVisitQuestionService) Create(ctx context.Context, input dto.CreatePreVisitQuestionInput) (*dto.PreVisitQuestionResponse, error) {
	if err := s.departmentExists(ctx, input.DepartmentID); err != nil {
		return nil, err
	}

	question := &model.PreVisitQuestion{
		DepartmentID: input.DepartmentID,
		QuestionText: input.QuestionText,
	}

	if err := s.repo.Create(ctx, question); err != nil {
		return nil, err
	}

	resp := dto.NewPreVisitQuestionResponse(question)
	return &resp, nil
}

func (s *preVisitQuestionService) List(ctx context.Context) ([]dto.PreVisitQuestionResponse, error) {
	questions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return questionResponses(questions), nil
}

func (s *preVisitQuestionService) Get(ctx context.Context, id uint) (*dto.PreVisitQuestionResponse, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "pre-visit question not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewPreVisitQuestionResponse(question)
	return &resp, nil
}

func (s *preVisitQuestionService) ListByDepartment(ctx context.Context, departmentID uint) ([]dto.PreVisitQuestionResponse, error) {
	questions, err := s.repo.FindByDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "department not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return questionResponses(questions), nil
}

func (s *preVisitQuestionService) Update(ctx context.Context, id uint, input dto.UpdatePreVisitQuestionInput) (*dto.PreVisitQuestionResponse, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "pre-visit question not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.DepartmentID != nil {
		if err := s.departmentExists(ctx, *input.DepartmentID); err != nil {
			return nil, err
		}
		question.DepartmentID = *input.DepartmentID
	}
	if input.QuestionText != nil {
		question.QuestionText = *input.QuestionText
	}

	if err := s.repo.Update(ctx, question); err != nil {
		return nil, err
	}

	resp := dto.NewPreVisitQuestionResponse(question)
	return &resp, nil
}

func (s *preVisitQuestionService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "pre-visit question not found", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func questionResponses(questions []model.PreVisitQuestion) []dto.PreVisitQuestionResponse {
	responses := make([]dto.PreVisitQuestionResponse, 0, len(questions))
	for i := range questions {
		responses = append(responses, dto.NewPreVisitQuestionResponse(&questions[i]))
	}
	return responses
}

type PreVisitReportService interface {
	Create(ctx context.Context, identity authz.Identity, input dto.CreatePreVisitReportInput) (*dto.PreVisitReportResponse, error)
	List(ctx context.Context, identity authz.Identity) ([]dto.PreVisitReportResponse, error)
	GetByAppointment(ctx context.Context, identity authz.Identity, appointmentID uint) (*dto.PreVisitReportResponse, error)
	UpdateByAppointment(ctx context.Context, identity authz.Identity, appointmentID uint, input dto.UpdatePreVisitReportInput) (*dto.PreVisitReportResponse, error)
	DeleteByAppointment(ctx context.Context, identity authz.Identity, appointmentID uint) error
}

type preVisitReportService struct {
	repo         repository.PreVisitReportRepository
	appointments apptRepo.AppointmentRepository
}

func NewPreVisitReportService(repo repository.PreVisitReportRepository, appointments apptRepo.AppointmentRepository) PreVisitReportService {
	return &preVisitReportService{
		repo:         repo,
		appointments: appointments,
	}
}

// visibleAppointment gates report access through appointment visibility: if
// the identity cannot see the booking it cannot see its intake report.
func (s *preVisitReportService) visibleAppointment(ctx context.Context, identity authz.Identity, appointmentID uint) (*model.Appointment, error) {
	appointment, err := s.appointments.FindVisibleByID(ctx, identity, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "appointment not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return appointment, nil
}

func (s *preVisitReportService) Create(ctx context.Context, identity authz.Identity, input dto.CreatePreVisitReportInput) (*dto.PreVisitReportResponse, error) {
	if _, err := s.visibleAppointment(ctx, identity, input.AppointmentID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByAppointment(ctx, input.AppointmentID); err == nil {
		return nil, apperror.New(http.StatusConflict, "a pre-visit report already exists for this appointment", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	report := &model.PreVisitReport{
		AppointmentID: input.AppointmentID,
		Responses:     input.Responses,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	resp := dto.NewPreVisitReportResponse(report)
	return &resp, nil
}

func (s *preVisitReportService) List(ctx context.Context, identity authz.Identity) ([]dto.PreVisitReportResponse, error) {
	reports, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// Filter through appointment visibility rather than duplicating the
	// role table here.
	responses := make([]dto.PreVisitReportResponse, 0, len(reports))
	for i := range reports {
		if _, err := s.appointments.FindVisibleByID(ctx, identity, reports[i].AppointmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		responses = append(responses, dto.NewPreVisitReportResponse(&reports[i]))
	}
	return responses, nil
}

func (s *preVisitReportService) GetByAppointment(ctx context.Context, identity authz.Identity, appointmentID uint) (*dto.PreVisitReportResponse, error) {
	if _, err := s.visibleAppointment(ctx, identity, appointmentID); err != nil {
		return nil, err
	}

	report, err := s.repo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "no pre-visit report for this appointment", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewPreVisitReportResponse(report)
	return &resp, nil
}

func (s *preVisitReportService) UpdateByAppointment(ctx context.Context, identity authz.Identity, appointmentID uint, input dto.UpdatePreVisitReportInput) (*dto.PreVisitReportResponse, error) {
	if _, err := s.visibleAppointment(ctx, identity, appointmentID); err != nil {
		return nil, err
	}

	report, err := s.repo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "no pre-visit report for this appointment", apperror.ErrNotFound)
		}
		return nil, err
	}

	report.Responses = input.Responses
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	resp := dto.NewPreVisitReportResponse(report)
	return &resp, nil
}

func (s *preVisitReportService) DeleteByAppointment(ctx context.Context, identity authz.Identity, appointmentID uint) error {
	if _, err := s.visibleAppointment(ctx, identity, appointmentID); err != nil {
		return err
	}

	if err := s.repo.DeleteByAppointment(ctx, appointmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "no pre-visit report for this appointment", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}
