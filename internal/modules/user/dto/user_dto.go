package dto

import (
	"time"

	"github.com/google/uuid"

	"carelink.id/clinicapi/internal/auth"
	"carelink.id/clinicapi/internal/model"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	// Role is accepted in the payload but ignored: registration always
	// starts accounts as PATIENT. Admins assign other roles afterwards.
	Role      string `json:"role" binding:"omitempty,oneof=PATIENT DOCTOR ADMIN"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

type LoginUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

type LoginResponse struct {
	User   LoginUser      `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

type CreateUserInput struct {
	Username  string     `json:"username" binding:"required,min=3,max=50"`
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=8"`
	Role      string     `json:"role" binding:"required,oneof=PATIENT DOCTOR ADMIN"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     *string    `json:"phone"`
	DOB       *time.Time `json:"dob"`
}

type UpdateUserInput struct {
	Email       *string    `json:"email" binding:"omitempty,email"`
	Password    *string    `json:"password" binding:"omitempty,min=8"`
	Role        *string    `json:"role" binding:"omitempty,oneof=PATIENT DOCTOR ADMIN"`
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	Phone       *string    `json:"phone"`
	DOB         *time.Time `json:"dob"`
	IsStaff     *bool      `json:"is_staff"`
	IsSuperuser *bool      `json:"is_superuser"`
}

// UserResponse is the user shape returned by the users endpoints. ProfileID
// is the id of the specialized profile matching the role, null for admins.
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     *string    `json:"phone,omitempty"`
	DOB       *time.Time `json:"dob,omitempty"`
	Role      string     `json:"role"`
	ProfileID *uint      `json:"profile_id"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		DOB:       u.DOB,
		Role:      u.Role,
		ProfileID: u.ProfileID(),
		CreatedAt: u.CreatedAt,
	}
}
