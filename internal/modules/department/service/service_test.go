package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/department/dto"
	"carelink.id/clinicapi/internal/modules/department/repository"
	"carelink.id/clinicapi/pkg/apperror"
)

func newTestService(t *testing.T) DepartmentService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Department{}, &model.DoctorProfile{}, &model.PreVisitQuestion{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return NewDepartmentService(repository.NewDepartmentRepository(db))
}

func TestCreateDuplicateNameAnswersConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, dto.CreateDepartmentInput{Name: "Oncology"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, dto.CreateDepartmentInput{Name: "Oncology"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := apperror.MapErrorToStatus(err); got != http.StatusConflict {
		t.Errorf("status = %d, want 409", got)
	}
}

func TestUpdateToExistingNameAnswersConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, dto.CreateDepartmentInput{Name: "Oncology"}); err != nil {
		t.Fatalf("create oncology: %v", err)
	}
	second, err := svc.Create(ctx, dto.CreateDepartmentInput{Name: "Radiology"})
	if err != nil {
		t.Fatalf("create radiology: %v", err)
	}

	taken := "Oncology"
	_, err = svc.Update(ctx, second.ID, dto.UpdateDepartmentInput{Name: &taken})
	if got := apperror.MapErrorToStatus(err); got != http.StatusConflict {
		t.Errorf("status = %d, want 409 (err = %v)", got, err)
	}
}

func TestGetMissingDepartment(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
