package auth

import "errors"

// Роли пользователей
const (
	RoleApplicant = "applicant"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// Permissions список разрешений по ролям
var Permissions = map[string][]string{
	RoleAdmin: {
		"users:manage",
		"lookups:write",
		"jobs:write",
		"jobs:manage",
		"applications:review",
		"subscribers:manage",
		"activity:read",
		"offices:write",
	},
	RoleEmployer: {
		"jobs:write",
		"applications:review",
	},
	RoleApplicant: {
		"applications:submit",
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// CanManage - владелец ресурса или администратор
func CanManage(role, userID, ownerID string) bool {
	return IsAdmin(role) || (userID != "" && userID == ownerID)
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleApplicant, RoleEmployer:
		return nil
	default:
		return errors.New("invalid role")
	}
}

// ValidateSelfRegistrationRole - через регистрацию нельзя стать админом
func ValidateSelfRegistrationRole(role string) error {
	switch role {
	case RoleApplicant, RoleEmployer:
		return nil
	default:
		return errors.New("role must be applicant or employer")
	}
}
