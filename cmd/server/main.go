package main

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/config"
	"carelink.id/clinicapi/internal/model"
	"carelink.id/clinicapi/internal/server"
	"carelink.id/clinicapi/pkg/database"
)

func main() {
	cfg := config.Load()

	db := database.Connect()
	if err := migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			logrus.WithError(err).Fatal("failed to seed admin user")
		}
	}

	redisClient := database.ConnectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)

	logrus.WithField("port", cfg.Port).Info("starting clinic api")
	if err := srv.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Department{},
		&model.PatientProfile{},
		&model.DoctorProfile{},
		&model.ReportType{},
		&model.LabReport{},
		&model.Appointment{},
		&model.PreVisitQuestion{},
		&model.PreVisitReport{},
		&model.Notification{},
	)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("role = ?", model.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     "admin",
		Email:        "admin@clinic.local",
		PasswordHash: string(hashedPassword),
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         model.RoleAdmin,
		IsStaff:      true,
		IsSuperuser:  true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logrus.WithField("username", admin.Username).Info("seeded development admin user")
	return nil
}
