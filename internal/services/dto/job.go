package dto

import (
	"time"

	"jobportal_backend/internal/models"
)

// CreateJobRequest - создание вакансии. Справочники передаются id.
type CreateJobRequest struct {
	Title            string                `json:"title" validate:"required,min=3,max=200"`
	Description      string                `json:"description" validate:"required,min=10"`
	Requirements     string                `json:"requirements"`
	Responsibilities string                `json:"responsibilities"`
	CompanyName      string                `json:"companyName" validate:"required,max=200"`
	EmploymentType   models.EmploymentType `json:"employmentType" validate:"required,is-employment-type"`
	SalaryMin        *float64              `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax        *float64              `json:"salaryMax" validate:"omitempty,gte=0"`
	Currency         string                `json:"currency" validate:"omitempty,len=3"`
	Vacancies        int                   `json:"vacancies" validate:"omitempty,gte=1"`
	Deadline         *time.Time            `json:"deadline"`
	Skills           []string              `json:"skills" validate:"omitempty,max=50,dive,min=1,max=60"`
	Status           models.JobStatus      `json:"status" validate:"omitempty,is-job-status"`
	Featured         bool                  `json:"featured"`

	SectorID         *string `json:"sectorId" validate:"omitempty,uuid"`
	CountryID        *string `json:"countryId" validate:"omitempty,uuid"`
	ProvinceID       *string `json:"provinceId" validate:"omitempty,uuid"`
	CityID           *string `json:"cityId" validate:"omitempty,uuid"`
	QualificationID  *string `json:"qualificationId" validate:"omitempty,uuid"`
	WorkModeID       *string `json:"workModeId" validate:"omitempty,uuid"`
	WorkExperienceID *string `json:"workExperienceId" validate:"omitempty,uuid"`
}

// UpdateJobRequest - частичное обновление; nil означает "не менять"
type UpdateJobRequest struct {
	Title            *string                `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string                `json:"description" validate:"omitempty,min=10"`
	Requirements     *string                `json:"requirements"`
	Responsibilities *string                `json:"responsibilities"`
	CompanyName      *string                `json:"companyName" validate:"omitempty,max=200"`
	EmploymentType   *models.EmploymentType `json:"employmentType" validate:"omitempty,is-employment-type"`
	SalaryMin        *float64               `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax        *float64               `json:"salaryMax" validate:"omitempty,gte=0"`
	Currency         *string                `json:"currency" validate:"omitempty,len=3"`
	Vacancies        *int                   `json:"vacancies" validate:"omitempty,gte=1"`
	Deadline         *time.Time             `json:"deadline"`
	Skills           []string               `json:"skills" validate:"omitempty,max=50,dive,min=1,max=60"`
	Featured         *bool                  `json:"featured"`

	SectorID         *string `json:"sectorId" validate:"omitempty,uuid"`
	CountryID        *string `json:"countryId" validate:"omitempty,uuid"`
	ProvinceID       *string `json:"provinceId" validate:"omitempty,uuid"`
	CityID           *string `json:"cityId" validate:"omitempty,uuid"`
	QualificationID  *string `json:"qualificationId" validate:"omitempty,uuid"`
	WorkModeID       *string `json:"workModeId" validate:"omitempty,uuid"`
	WorkExperienceID *string `json:"workExperienceId" validate:"omitempty,uuid"`
}

type UpdateJobStatusRequest struct {
	Status models.JobStatus `json:"status" validate:"required,is-job-status"`
}

// JobListQuery - фильтры публичного каталога
type JobListQuery struct {
	ListQuery
	Sector         string                `form:"sector"`
	Country        string                `form:"country"`
	Province       string                `form:"province"`
	City           string                `form:"city"`
	Qualification  string                `form:"qualification"`
	WorkMode       string                `form:"workMode"`
	WorkExperience string                `form:"workExperience"`
	EmploymentType models.EmploymentType `form:"employmentType" validate:"omitempty,is-employment-type"`
	SalaryMin      *float64              `form:"salaryMin" validate:"omitempty,gte=0"`
	Featured       *bool                 `form:"featured"`
	Sort           string                `form:"sort" validate:"omitempty,oneof=latest oldest salary"`
}

// MyJobsQuery - список вакансий работодателя (все статусы)
type MyJobsQuery struct {
	ListQuery
	Status models.JobStatus `form:"status" validate:"omitempty,is-job-status"`
}
