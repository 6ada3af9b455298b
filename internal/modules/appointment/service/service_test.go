package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/modules/appointment/dto"
	"carelink.id/clinicapi/internal/modules/appointment/repository"
	"carelink.id/clinicapi/internal/modules/profile/lifecycle"
	userRepo "carelink.id/clinicapi/internal/modules/user/repository"
	"carelink.id/clinicapi/pkg/apperror"
)

// fakeNotifier records every notification instead of hitting DB and Redis.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *n)
	return nil
}

func (f *fakeNotifier) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkAsRead(ctx context.Context, id uint, userID uuid.UUID) error {
	return nil
}

func (f *fakeNotifier) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error { return nil }

func (f *fakeNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeNotifier) forUser(userID uuid.UUID) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	notifier *fakeNotifier
	svc      AppointmentService

	patient model.User
	doctor  model.User
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
		&model.User{}, &model.Department{}, &model.PatientProfile{}, &model.DoctorProfile{},
		&model.Appointment{}, &model.PreVisitReport{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	seed := func(username, role string) model.User {
		user := model.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: "x",
			Role:         role,
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("create %s: %v", username, err)
		}
		switch role {
		case model.RolePatient:
			if err := db.Create(&model.PatientProfile{UserID: user.ID}).Error; err != nil {
				t.Fatalf("patient profile for %s: %v", username, err)
			}
		case model.RoleDoctor:
			if err := db.Create(&model.DoctorProfile{UserID: user.ID}).Error; err != nil {
				t.Fatalf("doctor profile for %s: %v", username, err)
			}
		}
		return user
	}

	notifier := &fakeNotifier{}
	svc := NewAppointmentService(
		repository.NewAppointmentRepository(db),
		userRepo.NewUserRepository(db, lifecycle.NewManager()),
		notifier,
	)

	return &fixture{
		db:       db,
		notifier: notifier,
		svc:      svc,
		patient:  seed("pat", model.RolePatient),
		doctor:   seed("doc", model.RoleDoctor),
	}
}

func (f *fixture) patientIdentity() authz.Identity {
	return authz.Identity{UserID: f.patient.ID, Role: model.RolePatient}
}

func (f *fixture) adminIdentity() authz.Identity {
	return authz.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
}

func (f *fixture) book(t *testing.T) *dto.AppointmentResponse {
	t.Helper()
	appt, err := f.svc.Create(context.Background(), f.patientIdentity(), dto.CreateAppointmentInput{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Time:      time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return appt
}

func TestCreateNotifiesDoctor(t *testing.T) {
	f := newFixture(t)

	appt := f.book(t)

	if appt.Status != model.AppointmentPending {
		t.Errorf("status = %q, want pending", appt.Status)
	}

	sent := f.notifier.forUser(f.doctor.ID)
	if len(sent) != 1 {
		t.Fatalf("doctor notifications = %d, want 1", len(sent))
	}
	if sent[0].Type != model.NotificationAppointmentStatus {
		t.Errorf("notification type = %q", sent[0].Type)
	}
}

func TestPatientCannotBookForOthers(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.patientIdentity(), dto.CreateAppointmentInput{
		PatientID: uuid.New(),
		DoctorID:  f.doctor.ID,
		Time:      time.Now().Add(time.Hour),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestCreateRejectsRoleMismatch(t *testing.T) {
	f := newFixture(t)

	// Doctor in the patient slot.
	_, err := f.svc.Create(context.Background(), f.adminIdentity(), dto.CreateAppointmentInput{
		PatientID: f.doctor.ID,
		DoctorID:  f.doctor.ID,
		Time:      time.Now().Add(time.Hour),
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestStatusChangeNotifiesPatient(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)

	approved := model.AppointmentApproved
	updated, err := f.svc.Update(context.Background(), f.adminIdentity(), appt.ID,
		dto.UpdateAppointmentInput{Status: &approved})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != model.AppointmentApproved {
		t.Errorf("status = %q, want approved", updated.Status)
	}

	sent := f.notifier.forUser(f.patient.ID)
	if len(sent) != 1 {
		t.Fatalf("patient notifications = %d, want 1", len(sent))
	}
	if sent[0].AppointmentID == nil || *sent[0].AppointmentID != appt.ID {
		t.Errorf("notification appointment id = %v, want %d", sent[0].AppointmentID, appt.ID)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)

	bogus := "teleported"
	_, err := f.svc.Update(context.Background(), f.adminIdentity(), appt.ID,
		dto.UpdateAppointmentInput{Status: &bogus})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestPatientSeesOnlyOwnAppointments(t *testing.T) {
	f := newFixture(t)
	f.book(t)

	// Another patient with a separate booking.
	stranger := model.User{
		ID:           uuid.New(),
		Username:     "stranger",
		Email:        "stranger@example.com",
		PasswordHash: "x",
		Role:         model.RolePatient,
	}
	if err := f.db.Create(&stranger).Error; err != nil {
		t.Fatalf("create stranger: %v", err)
	}
	if err := f.db.Create(&model.Appointment{
		PatientID: stranger.ID,
		DoctorID:  f.doctor.ID,
		Time:      time.Now().Add(72 * time.Hour),
		Status:    model.AppointmentPending,
	}).Error; err != nil {
		t.Fatalf("create stranger appointment: %v", err)
	}

	mine, err := f.svc.List(context.Background(), f.patientIdentity())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].PatientID != f.patient.ID {
		t.Errorf("patient sees %d appointments, want only their own", len(mine))
	}
}

func TestDeleteRemovesPreVisitReport(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)

	report := model.PreVisitReport{
		AppointmentID: appt.ID,
		Responses:     datatypes.JSONMap{"symptoms": "fatigue"},
	}
	if err := f.db.Create(&report).Error; err != nil {
		t.Fatalf("create pre-visit report: %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.adminIdentity(), appt.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var reports int64
	f.db.Model(&model.PreVisitReport{}).Count(&reports)
	if reports != 0 {
		t.Errorf("pre-visit reports left behind: %d", reports)
	}
}
