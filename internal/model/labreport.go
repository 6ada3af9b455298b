package model

import "time"

type ReportType struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
}

// LabReport is a stored report file owned by exactly one patient profile.
// Deleting the type keeps the report; deleting the patient does not.
type LabReport struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PatientID    uint      `gorm:"not null;index" json:"patient_id"`
	FileURL      string    `gorm:"type:text;not null" json:"file_url"`
	ReportTypeID *uint     `json:"report_type_id,omitempty"`
	UploadedAt   time.Time `gorm:"autoCreateTime;<-:create" json:"uploaded_at"`

	Patient    *PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	ReportType *ReportType     `gorm:"constraint:OnDelete:SET NULL" json:"report_type,omitempty"`
}
