package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/api/validation"
	"github.com/hugh/kanmind/internal/database/models"
)

type RegisterRequest struct {
	Fullname         string `json:"fullname"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if validation.IsBlank(r.Fullname) {
		errors["fullname"] = "This field is required."
	}
	if r.Email == "" {
		errors["email"] = "This field is required."
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Enter a valid email address."
	}
	if r.Password == "" {
		errors["password"] = "This field is required."
	}
	if r.RepeatedPassword == "" {
		errors["repeated_password"] = "This field is required."
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "This field is required."
	}
	if r.Password == "" {
		errors["password"] = "This field is required."
	}

	return errors
}

type AuthResponse struct {
	Token    string    `json:"token"`
	Fullname string    `json:"fullname"`
	Email    string    `json:"email"`
	UserID   uuid.UUID `json:"user_id"`
}

func NewAuthResponse(token string, u *models.User) AuthResponse {
	return AuthResponse{Token: token, Fullname: u.Fullname, Email: u.Email, UserID: u.ID}
}

// UserSummary is the compact user shape nested in boards and tasks
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Fullname string    `json:"fullname"`
}

func NewUserSummary(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Fullname: u.Fullname}
}

// NewUserSummaryPtr maps a nil user to a JSON null.
func NewUserSummaryPtr(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	s := NewUserSummary(u)
	return &s
}

func NewUserSummaries(users []models.User) []UserSummary {
	out := make([]UserSummary, len(users))
	for i := range users {
		out[i] = NewUserSummary(&users[i])
	}
	return out
}

type MeResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMeResponse(u *models.User) MeResponse {
	return MeResponse{
		ID:        u.ID,
		Email:     u.Email,
		Fullname:  u.Fullname,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
