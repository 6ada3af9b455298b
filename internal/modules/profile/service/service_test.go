package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/profile/dto"
	"carelink.id/clinicapi/internal/modules/profile/repository"
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
		&model.User{}, &model.Department{}, &model.DoctorProfile{}, &model.PatientProfile{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func seedDoctor(t *testing.T, db *gorm.DB, username string, imageURL *string) (model.User, model.DoctorProfile) {
	t.Helper()

	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleDoctor,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	profile := model.DoctorProfile{UserID: user.ID, ImageURL: imageURL}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile for %s: %v", username, err)
	}
	return user, profile
}

func TestDeleteReleasesStoredImage(t *testing.T) {
	db := openTestDB(t)
	files := &fakeStorage{}
	svc := NewDoctorProfileService(repository.NewDoctorProfileRepository(db), files, nil)

	image := "https://files.example/clinic/doctors/headshot.jpg"
	_, profile := seedDoctor(t, db, "doc", &image)

	admin := authz.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	if err := svc.Delete(context.Background(), admin, profile.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(files.deleted) != 1 || files.deleted[0] != image {
		t.Errorf("released = %v, want %q", files.deleted, image)
	}
}

func TestDeleteWithoutImageTouchesNoStorage(t *testing.T) {
	db := openTestDB(t)
	files := &fakeStorage{}
	svc := NewDoctorProfileService(repository.NewDoctorProfileRepository(db), files, nil)

	_, profile := seedDoctor(t, db, "doc", nil)

	admin := authz.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	if err := svc.Delete(context.Background(), admin, profile.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(files.deleted) != 0 {
		t.Errorf("storage touched for imageless profile: %v", files.deleted)
	}
}

func TestUpdateByNonOwnerIsForbidden(t *testing.T) {
	db := openTestDB(t)
	svc := NewDoctorProfileService(repository.NewDoctorProfileRepository(db), &fakeStorage{}, nil)

	_, profile := seedDoctor(t, db, "doc", nil)
	intruder, _ := seedDoctor(t, db, "other", nil)

	identity := authz.Identity{UserID: intruder.ID, Role: model.RoleDoctor}
	_, err := svc.Update(context.Background(), identity, profile.ID, dto.UpdateDoctorProfileInput{}, nil)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateReplacingImageReleasesPrevious(t *testing.T) {
	db := openTestDB(t)
	files := &fakeStorage{}
	svc := NewDoctorProfileService(repository.NewDoctorProfileRepository(db), files, nil)

	previous := "https://files.example/clinic/doctors/old.jpg"
	owner, profile := seedDoctor(t, db, "doc", &previous)

	identity := authz.Identity{UserID: owner.ID, Role: model.RoleDoctor}
	image := &commonDto.UploadFile{
		Reader:   strings.NewReader("jpeg bytes"),
		FileName: "new.jpg",
	}
	updated, err := svc.Update(context.Background(), identity, profile.ID,
		dto.UpdateDoctorProfileInput{}, image)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.ImageURL == nil || *updated.ImageURL == previous {
		t.Error("image URL not replaced")
	}
	if len(files.deleted) != 1 || files.deleted[0] != previous {
		t.Errorf("released = %v, want %q", files.deleted, previous)
	}
}

func TestListByDepartmentUnknown(t *testing.T) {
	db := openTestDB(t)
	svc := NewDoctorProfileService(repository.NewDoctorProfileRepository(db), &fakeStorage{}, nil)

	_, err := svc.ListByDepartment(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
