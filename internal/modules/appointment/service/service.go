package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/appointment/dto"
	"carelink.id/clinicapi/internal/modules/appointment/repository"
	notifSvc "carelink.id/clinicapi/internal/modules/notification/service"
	userRepo "carelink.id/clinicapi/internal/modules/user/repository"
	"carelink.id/clinicapi/pkg/apperror"
)

type AppointmentService interface {
	Create(ctx context.Context, identity authz.Identity, input dto.CreateAppointmentInput) (*dto.AppointmentResponse, error)
	List(ctx context.Context, identity authz.Identity) ([]dto.AppointmentResponse, error)
	Get(ctx context.Context, identity authz.Identity, id uint) (*dto.AppointmentResponse, error)
	ListForPatient(ctx context.Context, identity authz.Identity, patientID string) ([]dto.AppointmentResponse, error)
	Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdateAppointmentInput) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, identity authz.Identity, id uint) error
}

type appointmentService struct {
	repo          repository.AppointmentRepository
	users         userRepo.UserRepository
	notifications notifSvc.NotificationService
}

func NewAppointmentService(repo repository.AppointmentRepository, users userRepo.UserRepository, notifications notifSvc.NotificationService) AppointmentService {
	return &appointmentService{
		repo:          repo,
		users:         users,
		notifications: notifications,
	}
}

func (s *appointmentService) Create(ctx context.Context, identity authz.Identity, input dto.CreateAppointmentInput) (*dto.AppointmentResponse, error) {
	if identity.Role == model.RolePatient && input.PatientID != identity.UserID {
		return nil, apperror.New(http.StatusForbidden, "you can only book appointments for yourself", apperror.ErrForbidden)
	}

	patient, err := s.users.FindByID(ctx, input.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "patient not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if patient.Role != model.RolePatient {
		return nil, apperror.New(http.StatusBadRequest, "patient_id does not reference a patient", apperror.ErrBadRequest)
	}

	doctor, err := s.users.FindByID(ctx, input.DoctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "doctor not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if doctor.Role != model.RoleDoctor {
		return nil, apperror.New(http.StatusBadRequest, "doctor_id does not reference a doctor", apperror.ErrBadRequest)
	}

	appointment := &model.Appointment{
		PatientID:   input.PatientID,
		DoctorID:    input.DoctorID,
		Time:        input.Time,
		Status:      model.AppointmentPending,
		Description: input.Description,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.notify(ctx, &model.Notification{
		UserID:        doctor.ID,
		Type:          model.NotificationAppointmentStatus,
		Message:       fmt.Sprintf("New appointment request from %s", patient.DisplayName()),
		AppointmentID: &appointment.ID,
	})

	created, err := s.repo.FindVisibleByID(ctx, identity, appointment.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewAppointmentResponse(created)
	return &resp, nil
}

func (s *appointmentService) List(ctx context.Context, identity authz.Identity) ([]dto.AppointmentResponse, error) {
	appointments, err := s.repo.FindAll(ctx, identity)
	if err != nil {
		return nil, err
	}
	return toResponses(appointments), nil
}

func (s *appointmentService) Get(ctx context.Context, identity authz.Identity, id uint) (*dto.AppointmentResponse, error) {
	appointment, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "appointment not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewAppointmentResponse(appointment)
	return &resp, nil
}

func (s *appointmentService) ListForPatient(ctx context.Context, identity authz.Identity, patientID string) ([]dto.AppointmentResponse, error) {
	appointments, err := s.repo.FindForPatient(ctx, identity, patientID)
	if err != nil {
		return nil, err
	}
	return toResponses(appointments), nil
}

func (s *appointmentService) Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdateAppointmentInput) (*dto.AppointmentResponse, error) {
	// Scoping already limits visibility to the identity's own bookings, so
	// anything found here may be modified by the caller.
	appointment, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "appointment not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	previousStatus := appointment.Status

	if input.Time != nil {
		appointment.Time = *input.Time
	}
	if input.Status != nil {
		if !model.ValidAppointmentStatus(*input.Status) {
			return nil, apperror.New(http.StatusBadRequest, "invalid appointment status", apperror.ErrBadRequest)
		}
		appointment.Status = *input.Status
	}
	if input.Description != nil {
		appointment.Description = input.Description
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}

	if appointment.Status != previousStatus {
		s.notify(ctx, &model.Notification{
			UserID:        appointment.PatientID,
			Type:          model.NotificationAppointmentStatus,
			Message:       fmt.Sprintf("Your appointment is now %s", appointment.Status),
			AppointmentID: &appointment.ID,
		})
	}

	resp := dto.NewAppointmentResponse(appointment)
	return &resp, nil
}

func (s *appointmentService) Delete(ctx context.Context, identity authz.Identity, id uint) error {
	if _, err := s.repo.FindVisibleByID(ctx, identity, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "appointment not found", apperror.ErrNotFound)
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *appointmentService) notify(ctx context.Context, notification *model.Notification) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Notify(ctx, notification); err != nil {
		logrus.WithError(err).Warn("failed to send appointment notification")
	}
}

func toResponses(appointments []model.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, dto.NewAppointmentResponse(&appointments[i]))
	}
	return responses
}
