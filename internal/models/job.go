package models

import (
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	BaseModel
	Title            string         `gorm:"size:200;not null" json:"title"`
	Slug             string         `gorm:"size:240;not null;uniqueIndex" json:"slug"`
	Description      string         `gorm:"type:text;not null" json:"description"`
	Requirements     string         `gorm:"type:text" json:"requirements,omitempty"`
	Responsibilities string         `gorm:"type:text" json:"responsibilities,omitempty"`
	CompanyName      string         `gorm:"size:200;index" json:"companyName"`
	EmploymentType   EmploymentType `gorm:"type:varchar(20);not null;index" json:"employmentType"`
	SalaryMin        *float64       `json:"salaryMin,omitempty"`
	SalaryMax        *float64       `json:"salaryMax,omitempty"`
	Currency         string         `gorm:"size:3" json:"currency,omitempty"`
	Vacancies        int            `gorm:"not null" json:"vacancies"`
	Deadline         *time.Time     `gorm:"index" json:"deadline,omitempty"`
	Skills           datatypes.JSON `json:"skills,omitempty"`
	Status           JobStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	IsFeatured       bool           `gorm:"index" json:"featured"`
	Views            int            `gorm:"not null" json:"views"`
	AttachmentURL    string         `json:"attachmentUrl,omitempty"`
	PublishedAt      *time.Time     `gorm:"index" json:"publishedAt,omitempty"`

	SectorID         *string `gorm:"type:varchar(36);index" json:"sectorId,omitempty"`
	CountryID        *string `gorm:"type:varchar(36);index" json:"countryId,omitempty"`
	ProvinceID       *string `gorm:"type:varchar(36);index" json:"provinceId,omitempty"`
	CityID           *string `gorm:"type:varchar(36);index" json:"cityId,omitempty"`
	QualificationID  *string `gorm:"type:varchar(36);index" json:"qualificationId,omitempty"`
	WorkModeID       *string `gorm:"type:varchar(36);index" json:"workModeId,omitempty"`
	WorkExperienceID *string `gorm:"type:varchar(36);index" json:"workExperienceId,omitempty"`
	PostedByID       string  `gorm:"type:varchar(36);not null;index" json:"postedById"`

	Sector         *Sector         `gorm:"constraint:OnDelete:SET NULL" json:"sector,omitempty"`
	Country        *Country        `gorm:"constraint:OnDelete:SET NULL" json:"country,omitempty"`
	Province       *Province       `gorm:"constraint:OnDelete:SET NULL" json:"province,omitempty"`
	City           *City           `gorm:"constraint:OnDelete:SET NULL" json:"city,omitempty"`
	Qualification  *Qualification  `gorm:"constraint:OnDelete:SET NULL" json:"qualification,omitempty"`
	WorkMode       *WorkMode       `gorm:"constraint:OnDelete:SET NULL" json:"workMode,omitempty"`
	WorkExperience *WorkExperience `gorm:"constraint:OnDelete:SET NULL" json:"workExperience,omitempty"`
	PostedBy       *User           `gorm:"constraint:OnDelete:CASCADE" json:"postedBy,omitempty"`
}

func (j *Job) IsOpen(now time.Time) bool {
	if j.Status != JobStatusActive {
		return false
	}
	return j.Deadline == nil || now.Before(*j.Deadline)
}

// JobApplication - отклик соискателя на вакансию (ApplicantJobApplication)
type JobApplication struct {
	BaseModel
	JobID          string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_applicant" json:"jobId"`
	ApplicantID    string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_applicant;index" json:"applicantId"`
	CoverLetter    string            `gorm:"type:text" json:"coverLetter,omitempty"`
	ExpectedSalary *float64          `json:"expectedSalary,omitempty"`
	ResumeURL      string            `gorm:"not null" json:"resumeUrl"`
	Status         ApplicationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	EmployerNotes  string            `gorm:"type:text" json:"employerNotes,omitempty"`
	ReviewedAt     *time.Time        `json:"reviewedAt,omitempty"`

	Job       *Job  `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	Applicant *User `gorm:"constraint:OnDelete:CASCADE" json:"applicant,omitempty"`
}

func (JobApplication) TableName() string {
	return "applicant_job_applications"
}
