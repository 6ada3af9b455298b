package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Height    float64   `gorm:"default:0" json:"height"`
	Weight    float64   `gorm:"default:0" json:"weight"`
	BMI       *float64  `json:"bmi,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	LabReports []LabReport `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"lab_reports,omitempty"`
}

// BeforeSave recomputes the BMI whenever both height and weight are present.
// Height is stored in centimeters, weight in kilograms.
func (p *PatientProfile) BeforeSave(tx *gorm.DB) error {
	if p.Height > 0 && p.Weight > 0 {
		bmi := math.Round(p.Weight/math.Pow(p.Height/100, 2)*100) / 100
		p.BMI = &bmi
	} else {
		p.BMI = nil
	}
	return nil
}

type DoctorProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ImageURL     *string   `gorm:"type:text" json:"image_url,omitempty"`
	Location     *string   `gorm:"size:255" json:"location,omitempty"`
	Title        *string   `gorm:"size:255" json:"title,omitempty"`
	Bio          *string   `gorm:"type:text" json:"bio,omitempty"`
	DepartmentID *uint     `json:"department_id,omitempty"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Department *Department `gorm:"constraint:OnDelete:SET NULL" json:"department,omitempty"`
}
