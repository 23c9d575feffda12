package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"jobportal_backend/internal/models"
)

// registerCustomRules регистрирует кастомные правила на основе statuses.go.
// Пустые значения пропускаются: для них есть 'required'.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", enumRule(func(s string) bool { return models.UserRole(s).Valid() }))
	mustRegister("is-user-status", enumRule(func(s string) bool { return models.UserStatus(s).Valid() }))
	mustRegister("is-job-status", enumRule(func(s string) bool { return models.JobStatus(s).Valid() }))
	mustRegister("is-employment-type", enumRule(func(s string) bool { return models.EmploymentType(s).Valid() }))
	mustRegister("is-application-status", enumRule(func(s string) bool { return models.ApplicationStatus(s).Valid() }))
	mustRegister("is-presence-status", enumRule(func(s string) bool { return models.PresenceStatus(s).Valid() }))
	mustRegister("is-violation-type", enumRule(func(s string) bool { return models.ViolationType(s).Valid() }))
}

func enumRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return valid(value)
	}
}
