package lifecycle

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carelink.id/clinicapi/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Department{}, &model.PatientProfile{}, &model.DoctorProfile{}, &model.LabReport{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     "u-" + role,
		Email:        role + "@example.com",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestEnsureProfileCreatesRoleMatchingProfile(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	patient := seedUser(t, db, model.RolePatient)
	if err := m.EnsureProfile(db, patient); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if patient.PatientProfile == nil || patient.PatientProfile.ID == 0 {
		t.Error("patient profile not created")
	}

	doctor := seedUser(t, db, model.RoleDoctor)
	if err := m.EnsureProfile(db, doctor); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if doctor.DoctorProfile == nil || doctor.DoctorProfile.ID == 0 {
		t.Error("doctor profile not created")
	}
}

func TestEnsureProfileAdminGetsNone(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	admin := seedUser(t, db, model.RoleAdmin)
	if err := m.EnsureProfile(db, admin); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}

	var patientCount, doctorCount int64
	db.Model(&model.PatientProfile{}).Count(&patientCount)
	db.Model(&model.DoctorProfile{}).Count(&doctorCount)
	if patientCount != 0 || doctorCount != 0 {
		t.Errorf("admin got a profile: patients=%d doctors=%d", patientCount, doctorCount)
	}
}

func TestApplyRoleChangePatientToDoctor(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	user := seedUser(t, db, model.RolePatient)
	if err := m.EnsureProfile(db, user); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}

	reports := []model.LabReport{
		{PatientID: user.PatientProfile.ID, FileURL: "https://files.example/r1.pdf"},
		{PatientID: user.PatientProfile.ID, FileURL: "https://files.example/r2.pdf"},
	}
	if err := db.Create(&reports).Error; err != nil {
		t.Fatalf("failed to seed reports: %v", err)
	}

	user.Role = model.RoleDoctor
	orphaned, err := m.ApplyRoleChange(db, user, model.RolePatient)
	if err != nil {
		t.Fatalf("ApplyRoleChange: %v", err)
	}

	if len(orphaned) != 2 {
		t.Errorf("orphaned files = %d, want 2", len(orphaned))
	}

	var patientCount, reportCount, doctorCount int64
	db.Model(&model.PatientProfile{}).Where("user_id = ?", user.ID).Count(&patientCount)
	db.Model(&model.LabReport{}).Count(&reportCount)
	db.Model(&model.DoctorProfile{}).Where("user_id = ?", user.ID).Count(&doctorCount)

	if patientCount != 0 {
		t.Error("patient profile survived the role change")
	}
	if reportCount != 0 {
		t.Error("lab reports survived the role change")
	}
	if doctorCount != 1 {
		t.Error("doctor profile was not created")
	}
	if user.DoctorProfile == nil {
		t.Error("user struct not updated with new profile")
	}
	if user.PatientProfile != nil {
		t.Error("user struct still references the deleted profile")
	}
}

func TestApplyRoleChangeDoctorToPatient(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	user := seedUser(t, db, model.RoleDoctor)
	if err := m.EnsureProfile(db, user); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}

	imageURL := "https://files.example/portrait.webp"
	user.DoctorProfile.ImageURL = &imageURL
	if err := db.Save(user.DoctorProfile).Error; err != nil {
		t.Fatalf("failed to save image url: %v", err)
	}

	user.Role = model.RolePatient
	orphaned, err := m.ApplyRoleChange(db, user, model.RoleDoctor)
	if err != nil {
		t.Fatalf("ApplyRoleChange: %v", err)
	}

	if len(orphaned) != 1 || orphaned[0] != imageURL {
		t.Errorf("orphaned = %v, want the profile image", orphaned)
	}

	var doctorCount, patientCount int64
	db.Model(&model.DoctorProfile{}).Where("user_id = ?", user.ID).Count(&doctorCount)
	db.Model(&model.PatientProfile{}).Where("user_id = ?", user.ID).Count(&patientCount)
	if doctorCount != 0 {
		t.Error("doctor profile survived the role change")
	}
	if patientCount != 1 {
		t.Error("patient profile was not created")
	}
}

func TestApplyRoleChangeNoOpWhenRoleUnchanged(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	user := seedUser(t, db, model.RolePatient)
	if err := m.EnsureProfile(db, user); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	originalID := user.PatientProfile.ID

	orphaned, err := m.ApplyRoleChange(db, user, model.RolePatient)
	if err != nil {
		t.Fatalf("ApplyRoleChange: %v", err)
	}
	if orphaned != nil {
		t.Errorf("orphaned = %v, want none", orphaned)
	}

	var profile model.PatientProfile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("profile lookup: %v", err)
	}
	if profile.ID != originalID {
		t.Error("profile was recreated on a no-op role change")
	}
}

func TestApplyRoleChangeToAdminDropsProfile(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	user := seedUser(t, db, model.RolePatient)
	if err := m.EnsureProfile(db, user); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}

	user.Role = model.RoleAdmin
	if _, err := m.ApplyRoleChange(db, user, model.RolePatient); err != nil {
		t.Fatalf("ApplyRoleChange: %v", err)
	}

	var patientCount, doctorCount int64
	db.Model(&model.PatientProfile{}).Where("user_id = ?", user.ID).Count(&patientCount)
	db.Model(&model.DoctorProfile{}).Where("user_id = ?", user.ID).Count(&doctorCount)
	if patientCount != 0 || doctorCount != 0 {
		t.Error("admin user kept a specialized profile")
	}
}

func TestRoleChangeIsTransactional(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	user := seedUser(t, db, model.RolePatient)
	if err := m.EnsureProfile(db, user); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}

	// Force the swap to fail midway and verify the rollback restores the
	// original profile.
	sentinel := errors.New("forced failure")
	err := db.Transaction(func(tx *gorm.DB) error {
		user.Role = model.RoleDoctor
		if _, err := m.ApplyRoleChange(tx, user, model.RolePatient); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("transaction err = %v, want sentinel", err)
	}

	var patientCount, doctorCount int64
	db.Model(&model.PatientProfile{}).Where("user_id = ?", user.ID).Count(&patientCount)
	db.Model(&model.DoctorProfile{}).Where("user_id = ?", user.ID).Count(&doctorCount)
	if patientCount != 1 {
		t.Error("rollback did not restore the patient profile")
	}
	if doctorCount != 0 {
		t.Error("rollback left a doctor profile behind")
	}
}
