package dto

import "jobportal_backend/internal/models"

type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=40"`
	Headline *string `json:"headline" validate:"omitempty,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// UserListQuery - фильтры админского списка пользователей
type UserListQuery struct {
	ListQuery
	Role   models.UserRole   `form:"role" validate:"omitempty,is-user-role"`
	Status models.UserStatus `form:"status" validate:"omitempty,is-user-status"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,is-user-status"`
}
