package service

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/department/dto"
	"carelink.id/clinicapi/internal/modules/department/repository"
	"carelink.id/clinicapi/pkg/apperror"
)

type DepartmentService interface {
	Create(ctx context.Context, input dto.CreateDepartmentInput) (*dto.DepartmentResponse, error)
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
	Get(ctx context.Context, id uint) (*dto.DepartmentResponse, error)
	Update(ctx context.Context, id uint, input dto.UpdateDepartmentInput) (*dto.DepartmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type departmentService struct {
	repo repository.DepartmentRepository
}

func NewDepartmentService(repo repository.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) Create(ctx context.Context, input dto.CreateDepartmentInput) (*dto.DepartmentResponse, error) {
	department := &model.Department{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := s.repo.Create(ctx, department); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "department name already exists", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := dto.NewDepartmentResponse(department)
	return &resp, nil
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	departments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		responses = append(responses, dto.NewDepartmentResponse(&departments[i]))
	}
	return responses, nil
}

func (s *departmentService) Get(ctx context.Context, id uint) (*dto.DepartmentResponse, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "department not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewDepartmentResponse(department)
	return &resp, nil
}

func (s *departmentService) Update(ctx context.Context, id uint, input dto.UpdateDepartmentInput) (*dto.DepartmentResponse, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "department not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.Name != nil {
		department.Name = *input.Name
	}
	if input.Description != nil {
		department.Description = input.Description
	}

	if err := s.repo.Update(ctx, department); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "department name already exists", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := dto.NewDepartmentResponse(department)
	return &resp, nil
}

func (s *departmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "department not found", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}
