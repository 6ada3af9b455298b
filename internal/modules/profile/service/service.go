package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/modules/profile/dto"
	"carelink.id/clinicapi/internal/modules/profile/repository"
	searchSvc "carelink.id/clinicapi/internal/modules/search/service"
	"carelink.id/clinicapi/pkg/apperror"
	commonDto "carelink.id/clinicapi/pkg/dto"
	"carelink.id/clinicapi/pkg/storage"
)

const doctorImageFolder = "clinic/doctors"

type DoctorProfileService interface {
	List(ctx context.Context) ([]dto.DoctorProfileResponse, error)
	Get(ctx context.Context, id uint) (*dto.DoctorProfileResponse, error)
	ListByDepartment(ctx context.Context, departmentID uint) ([]dto.DoctorProfileResponse, error)
	Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdateDoctorProfileInput, image *commonDto.UploadFile) (*dto.DoctorProfileResponse, error)
	Delete(ctx context.Context, identity authz.Identity, id uint) error
	Search(ctx context.Context, query string) ([]searchSvc.DoctorDoc, error)
}

type doctorProfileService struct {
	repo        repository.DoctorProfileRepository
	fileStorage storage.FileStorage
	search      searchSvc.DoctorSearchService
}

func NewDoctorProfileService(repo repository.DoctorProfileRepository, fileStorage storage.FileStorage, search searchSvc.DoctorSearchService) DoctorProfileService {
	return &doctorProfileService{
		repo:        repo,
		fileStorage: fileStorage,
		search:      search,
	}
}

func (s *doctorProfileService) List(ctx context.Context) ([]dto.DoctorProfileResponse, error) {
	profiles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DoctorProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, dto.NewDoctorProfileResponse(&profiles[i]))
	}
	return responses, nil
}

func (s *doctorProfileService) Get(ctx context.Context, id uint) (*dto.DoctorProfileResponse, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "doctor profile not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewDoctorProfileResponse(profile)
	return &resp, nil
}

func (s *doctorProfileService) ListByDepartment(ctx context.Context, departmentID uint) ([]dto.DoctorProfileResponse, error) {
	profiles, err := s.repo.FindByDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "department not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	responses := make([]dto.DoctorProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, dto.NewDoctorProfileResponse(&profiles[i]))
	}
	return responses, nil
}

func (s *doctorProfileService) Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdateDoctorProfileInput, image *commonDto.UploadFile) (*dto.DoctorProfileResponse, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "doctor profile not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !identity.IsAdmin() && profile.UserID != identity.UserID {
		return nil, apperror.New(http.StatusForbidden, "you can only update your own profile", apperror.ErrForbidden)
	}

	if input.Location != nil {
		profile.Location = input.Location
	}
	if input.Title != nil {
		profile.Title = input.Title
	}
	if input.Bio != nil {
		profile.Bio = input.Bio
	}
	if input.DepartmentID != nil {
		profile.DepartmentID = input.DepartmentID
	}

	var previousImage string
	if image != nil {
		imageURL, err := s.fileStorage.Upload(ctx, image.Reader, doctorImageFolder, image.FileName)
		if err != nil {
			return nil, err
		}
		if profile.ImageURL != nil && *profile.ImageURL != imageURL {
			previousImage = *profile.ImageURL
		}
		profile.ImageURL = &imageURL
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, err
	}

	if previousImage != "" {
		if err := s.fileStorage.Delete(ctx, previousImage); err != nil {
			logrus.WithError(err).WithField("file_url", previousImage).Warn("failed to release replaced profile image")
		}
	}

	// Department may have changed; re-read so the response and the search
	// document see the new association.
	profile, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexDoctor(profile); err != nil {
			logrus.WithError(err).Warn("failed to index doctor profile")
		}
	}

	resp := dto.NewDoctorProfileResponse(profile)
	return &resp, nil
}

func (s *doctorProfileService) Delete(ctx context.Context, identity authz.Identity, id uint) error {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "doctor profile not found", apperror.ErrNotFound)
		}
		return err
	}

	if !identity.IsAdmin() && profile.UserID != identity.UserID {
		return apperror.New(http.StatusForbidden, "you can only delete your own profile", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if profile.ImageURL != nil {
		if err := s.fileStorage.Delete(ctx, *profile.ImageURL); err != nil {
			logrus.WithError(err).WithField("file_url", *profile.ImageURL).Warn("failed to release profile image")
		}
	}
	if s.search != nil {
		if err := s.search.RemoveDoctor(id); err != nil {
			logrus.WithError(err).Warn("failed to remove doctor from search index")
		}
	}

	return nil
}

func (s *doctorProfileService) Search(ctx context.Context, query string) ([]searchSvc.DoctorDoc, error) {
	if s.search == nil {
		return []searchSvc.DoctorDoc{}, nil
	}
	return s.search.Search(query)
}

type PatientProfileService interface {
	List(ctx context.Context, identity authz.Identity) ([]dto.PatientProfileResponse, error)
	Get(ctx context.Context, identity authz.Identity, id uint) (*dto.PatientProfileResponse, error)
	Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdatePatientProfileInput) (*dto.PatientProfileResponse, error)
}

type patientProfileService struct {
	repo repository.PatientProfileRepository
}

func NewPatientProfileService(repo repository.PatientProfileRepository) PatientProfileService {
	return &patientProfileService{repo: repo}
}

func (s *patientProfileService) List(ctx context.Context, identity authz.Identity) ([]dto.PatientProfileResponse, error) {
	profiles, err := s.repo.FindAll(ctx, identity)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PatientProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, dto.NewPatientProfileResponse(&profiles[i]))
	}
	return responses, nil
}

func (s *patientProfileService) Get(ctx context.Context, identity authz.Identity, id uint) (*dto.PatientProfileResponse, error) {
	profile, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "patient profile not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewPatientProfileResponse(profile)
	return &resp, nil
}

func (s *patientProfileService) Update(ctx context.Context, identity authz.Identity, id uint, input dto.UpdatePatientProfileInput) (*dto.PatientProfileResponse, error) {
	profile, err := s.repo.FindVisibleByID(ctx, identity, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "patient profile not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !identity.IsAdmin() && profile.UserID != identity.UserID {
		return nil, apperror.New(http.StatusForbidden, "you can only update your own profile", apperror.ErrForbidden)
	}

	if input.Height != nil {
		profile.Height = *input.Height
	}
	if input.Weight != nil {
		profile.Weight = *input.Weight
	}

	// BMI is recomputed by the model's save hook.
	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, err
	}

	resp := dto.NewPatientProfileResponse(profile)
	return &resp, nil
}
