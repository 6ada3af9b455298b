package dto

import (
	"time"

	"github.com/google/uuid"

	"carelink.id/clinicapi/internal/model"
)

type DepartmentRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type DoctorProfileResponse struct {
	ID         uint           `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Name       string         `json:"name"`
	ImageURL   *string        `json:"image_url"`
	Location   *string        `json:"location"`
	Title      *string        `json:"title"`
	Bio        *string        `json:"bio"`
	Department *DepartmentRef `json:"department"`
}

func NewDoctorProfileResponse(p *model.DoctorProfile) DoctorProfileResponse {
	resp := DoctorProfileResponse{
		ID:       p.ID,
		UserID:   p.UserID,
		ImageURL: p.ImageURL,
		Location: p.Location,
		Title:    p.Title,
		Bio:      p.Bio,
	}
	if p.User != nil {
		resp.Name = p.User.DisplayName()
	}
	if p.Department != nil {
		resp.Department = &DepartmentRef{ID: p.Department.ID, Name: p.Department.Name}
	}
	return resp
}

// UpdateDoctorProfileInput binds from a multipart form so the image can ride
// along in the same request.
type UpdateDoctorProfileInput struct {
	Location     *string `form:"location"`
	Title        *string `form:"title"`
	Bio          *string `form:"bio"`
	DepartmentID *uint   `form:"department_id"`
}

type PatientProfileResponse struct {
	ID        uint      `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Height    float64   `json:"height"`
	Weight    float64   `json:"weight"`
	BMI       *float64  `json:"bmi"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPatientProfileResponse(p *model.PatientProfile) PatientProfileResponse {
	resp := PatientProfileResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Height:    p.Height,
		Weight:    p.Weight,
		BMI:       p.BMI,
		CreatedAt: p.CreatedAt,
	}
	if p.User != nil {
		resp.Name = p.User.DisplayName()
	}
	return resp
}

type UpdatePatientProfileInput struct {
	Height *float64 `json:"height" binding:"omitempty,gt=0"`
	Weight *float64 `json:"weight" binding:"omitempty,gt=0"`
}
