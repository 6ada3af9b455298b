package dto

import (
	"time"

	"carelink.id/clinicapi/internal/model"
)

type CreateReportTypeInput struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description *string `json:"description"`
}

type UpdateReportTypeInput struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description"`
}

type ReportTypeResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func NewReportTypeResponse(t *model.ReportType) ReportTypeResponse {
	return ReportTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
	}
}

// UploadLabReportInput binds from the multipart form; the file itself is
// handled separately by the handler.
type UploadLabReportInput struct {
	ReportTypeID *uint `form:"report_type_id"`
}

type UpdateLabReportInput struct {
	ReportTypeID *uint `form:"report_type_id"`
}

type LabReportResponse struct {
	ID           uint                `json:"id"`
	PatientID    uint                `json:"patient_id"`
	FileURL      string              `json:"file_url"`
	ReportTypeID *uint               `json:"report_type_id"`
	ReportType   *ReportTypeResponse `json:"report_type"`
	UploadedAt   time.Time           `json:"uploaded_at"`
}

func NewLabReportResponse(r *model.LabReport) LabReportResponse {
	resp := LabReportResponse{
		ID:           r.ID,
		PatientID:    r.PatientID,
		FileURL:      r.FileURL,
		ReportTypeID: r.ReportTypeID,
		UploadedAt:   r.UploadedAt,
	}
	if r.ReportType != nil {
		t := NewReportTypeResponse(r.ReportType)
		resp.ReportType = &t
	}
	return resp
}
