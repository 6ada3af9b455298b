package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/labreport/dto"
	"carelink.id/clinicapi/internal/modules/labreport/repository"
	profileRepo "carelink.id/clinicapi/internal/modules/profile/repository"
	"carelink.id/clinicapi/pkg/apperror"
	commonDto "carelink.id/clinicapi/pkg/dto"
)

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	return "https://files.example/" + folder + "/" + fileName, nil
}

func (f *fakeStorage) Delete(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.PatientProfile{}, &model.ReportType{}, &model.LabReport{},
		&model.Notification{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

type fixture struct {
	db      *gorm.DB
	storage *fakeStorage
	svc     LabReportService

	adminID   authz.Identity
	patient   model.PatientProfile
	patientID authz.Identity
	other     model.PatientProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	seedPatient := func(username string) (model.User, model.PatientProfile) {
		user := model.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: "x",
			Role:         model.RolePatient,
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("create user %s: %v", username, err)
		}
		profile := model.PatientProfile{UserID: user.ID}
		if err := db.Create(&profile).Error; err != nil {
			t.Fatalf("create profile for %s: %v", username, err)
		}
		return user, profile
	}

	patientUser, patient := seedPatient("pat")
	_, other := seedPatient("other")

	files := &fakeStorage{}
	svc := NewLabReportService(
		repository.NewLabReportRepository(db),
		profileRepo.NewPatientProfileRepository(db),
		files,
		nil,
	)

	return &fixture{
		db:      db,
		storage: files,
		svc:     svc,
		adminID: authz.Identity{UserID: uuid.New(), Role: model.RoleAdmin},
		patient: patient,
		patientID: authz.Identity{
			UserID:    patientUser.ID,
			Role:      model.RolePatient,
			ProfileID: &patient.ID,
		},
		other: other,
	}
}

func pdfUpload(name string) *commonDto.UploadFile {
	return &commonDto.UploadFile{
		Reader:   strings.NewReader("%PDF-1.4 test"),
		FileName: name,
	}
}

func TestUploadStoresFileForOwnProfile(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.Upload(context.Background(), f.patientID, f.patient.ID,
		dto.UploadLabReportInput{}, pdfUpload("cbc.pdf"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if report.PatientID != f.patient.ID {
		t.Errorf("PatientID = %d, want %d", report.PatientID, f.patient.ID)
	}
	if report.FileURL == "" {
		t.Error("no file URL recorded")
	}
}

func TestUploadForAnotherPatientIsForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), f.patientID, f.other.ID,
		dto.UploadLabReportInput{}, pdfUpload("sneaky.pdf"))
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestUploadWithoutFileIsBadRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), f.adminID, f.patient.ID,
		dto.UploadLabReportInput{}, nil)
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestPatientSeesOnlyOwnReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Upload(ctx, f.adminID, f.patient.ID, dto.UploadLabReportInput{}, pdfUpload("mine.pdf")); err != nil {
		t.Fatalf("upload for patient: %v", err)
	}
	if _, err := f.svc.Upload(ctx, f.adminID, f.other.ID, dto.UploadLabReportInput{}, pdfUpload("theirs.pdf")); err != nil {
		t.Fatalf("upload for other: %v", err)
	}

	mine, err := f.svc.List(ctx, f.patientID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].PatientID != f.patient.ID {
		t.Errorf("patient sees %d reports, want only their own", len(mine))
	}

	all, err := f.svc.List(ctx, f.adminID)
	if err != nil {
		t.Fatalf("admin List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d reports, want 2", len(all))
	}
}

func TestListByPatientRejectsOtherPatients(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByPatient(context.Background(), f.patientID, f.other.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestReportTypeDuplicateNameAnswersConflict(t *testing.T) {
	db := openTestDB(t)
	svc := NewReportTypeService(repository.NewReportTypeRepository(db))
	ctx := context.Background()

	if _, err := svc.Create(ctx, dto.CreateReportTypeInput{Name: "Blood Panel"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, dto.CreateReportTypeInput{Name: "Blood Panel"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := apperror.MapErrorToStatus(err); got != http.StatusConflict {
		t.Errorf("status = %d, want 409", got)
	}

	second, err := svc.Create(ctx, dto.CreateReportTypeInput{Name: "Urinalysis"})
	if err != nil {
		t.Fatalf("create urinalysis: %v", err)
	}
	taken := "Blood Panel"
	_, err = svc.Update(ctx, second.ID, dto.UpdateReportTypeInput{Name: &taken})
	if got := apperror.MapErrorToStatus(err); got != http.StatusConflict {
		t.Errorf("update status = %d, want 409 (err = %v)", got, err)
	}
}

func TestListByReportTypeUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByReportType(context.Background(), f.adminID, 404)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteReleasesStoredFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.Upload(ctx, f.adminID, f.patient.ID, dto.UploadLabReportInput{}, pdfUpload("gone.pdf"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := f.svc.Delete(ctx, f.adminID, report.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(f.storage.deleted) != 1 || f.storage.deleted[0] != report.FileURL {
		t.Errorf("released = %v, want %q", f.storage.deleted, report.FileURL)
	}

	var count int64
	f.db.Model(&model.LabReport{}).Count(&count)
	if count != 0 {
		t.Errorf("report row still present")
	}
}

func TestUpdateReplacingFileReleasesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.svc.Upload(ctx, f.adminID, f.patient.ID, dto.UploadLabReportInput{}, pdfUpload("v1.pdf"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	previous := report.FileURL

	updated, err := f.svc.Update(ctx, f.adminID, report.ID, dto.UpdateLabReportInput{}, pdfUpload("v2.pdf"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.FileURL == previous {
		t.Error("file URL unchanged after replacement")
	}
	if len(f.storage.deleted) != 1 || f.storage.deleted[0] != previous {
		t.Errorf("released = %v, want %q", f.storage.deleted, previous)
	}
}
