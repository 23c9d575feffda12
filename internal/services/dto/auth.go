package dto

import (
	"time"

	"jobportal_backend/internal/models"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=120"`
	Email    string          `json:"email" validate:"required,email,max=255"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Phone    string          `json:"phone" validate:"omitempty,max=40"`
	Role     models.UserRole `json:"role" validate:"required,oneof=applicant employer"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest - запрос обновления токена
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest - запрос выхода
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ClientInfo - откуда пришел запрос (для журнала нарушений)
type ClientInfo struct {
	IP        string
	UserAgent string
	Path      string
}

// AuthResponse - ответ с токенами
type AuthResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int64         `json:"expiresIn"`
	User         *UserResponse `json:"user"`
}

// UserResponse - публичное представление пользователя
type UserResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Role           models.UserRole   `json:"role"`
	Status         models.UserStatus `json:"status"`
	Headline       string            `json:"headline,omitempty"`
	ResumeURL      string            `json:"resumeUrl,omitempty"`
	AvatarURL      string            `json:"avatarUrl,omitempty"`
	AvatarThumbURL string            `json:"avatarThumbUrl,omitempty"`
	LastLoginAt    *time.Time        `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		Status:         u.Status,
		Headline:       u.Headline,
		ResumeURL:      u.ResumeURL,
		AvatarURL:      u.AvatarURL,
		AvatarThumbURL: u.AvatarThumb,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}
