package dto

import (
	"time"

	"gorm.io/datatypes"

	"carelink.id/clinicapi/internal/model"
)

type CreatePreVisitQuestionInput struct {
	DepartmentID uint   `json:"department_id" binding:"required"`
	QuestionText string `json:"question_text" binding:"required,min=3"`
}

type UpdatePreVisitQuestionInput struct {
	DepartmentID *uint   `json:"department_id"`
	QuestionText *string `json:"question_text" binding:"omitempty,min=3"`
}

type PreVisitQuestionResponse struct {
	ID           uint   `json:"id"`
	DepartmentID uint   `json:"department_id"`
	QuestionText string `json:"question_text"`
}

func NewPreVisitQuestionResponse(q *model.PreVisitQuestion) PreVisitQuestionResponse {
	return PreVisitQuestionResponse{
		ID:           q.ID,
		DepartmentID: q.DepartmentID,
		QuestionText: q.QuestionText,
	}
}

type CreatePreVisitReportInput struct {
	AppointmentID uint              `json:"appointment_id" binding:"required"`
	Responses     datatypes.JSONMap `json:"responses" binding:"required"`
}

type UpdatePreVisitReportInput struct {
	Responses datatypes.JSONMap `json:"responses" binding:"required"`
}

type PreVisitReportResponse struct {
	ID            uint              `json:"id"`
	AppointmentID uint              `json:"appointment_id"`
	Responses     datatypes.JSONMap `json:"responses"`
	CreatedAt     time.Time         `json:"created_at"`
}

func NewPreVisitReportResponse(r *model.PreVisitReport) PreVisitReportResponse {
	return PreVisitReportResponse{
		ID:            r.ID,
		AppointmentID: r.AppointmentID,
		Responses:     r.Responses,
		CreatedAt:     r.CreatedAt,
	}
}
