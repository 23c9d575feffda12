package dto

import (
	"mime/multipart"

	"jobportal_backend/internal/models"
)

// ApplyRequest - multipart-форма отклика
type ApplyRequest struct {
	CoverLetter    string                `form:"coverLetter" validate:"max=5000"`
	ExpectedSalary *float64              `form:"expectedSalary" validate:"omitempty,gte=0"`
	Resume         *multipart.FileHeader `form:"resume" validate:"-"`
}

type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,is-application-status"`
	Notes  string                   `json:"notes" validate:"max=2000"`
}

type ApplicationListQuery struct {
	ListQuery
	Status models.ApplicationStatus `form:"status" validate:"omitempty,is-application-status"`
}
