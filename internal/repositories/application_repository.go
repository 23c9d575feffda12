package repositories

import (
	"errors"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("application already exists")
)

type ApplicationFilter struct {
	JobID       string
	ApplicantID string
	Status      models.ApplicationStatus
	Pagination  Pagination
}

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.JobApplication) error
	FindByID(db *gorm.DB, id string) (*models.JobApplication, error)
	Exists(db *gorm.DB, jobID, applicantID string) (bool, error)
	List(db *gorm.DB, filter ApplicationFilter) ([]models.JobApplication, int64, error)
	Update(db *gorm.DB, app *models.JobApplication) error
	CountByStatusForEmployer(db *gorm.DB, employerID string) (map[string]int64, error)
	CountAll(db *gorm.DB) (int64, error)
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, app *models.JobApplication) error {
	exists, err := r.Exists(db, app.JobID, app.ApplicantID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyApplied
	}

	if err := db.Omit(clause.Associations).Create(app).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func applicantColumns(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "name", "email", "phone", "avatar_url", "headline", "resume_url")
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.JobApplication, error) {
	var app models.JobApplication
	err := db.Preload("Job").Preload("Applicant", applicantColumns).
		First(&app, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) Exists(db *gorm.DB, jobID, applicantID string) (bool, error) {
	var count int64
	err := db.Model(&models.JobApplication{}).
		Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepositoryImpl) List(db *gorm.DB, filter ApplicationFilter) ([]models.JobApplication, int64, error) {
	q := db.Model(&models.JobApplication{})
	if filter.JobID != "" {
		q = q.Where("job_id = ?", filter.JobID)
	}
	if filter.ApplicantID != "" {
		q = q.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	apps := make([]models.JobApplication, 0)
	if total == 0 {
		return apps, 0, nil
	}

	// соискателю нужна вакансия, работодателю - кандидат
	if filter.ApplicantID != "" {
		q = q.Preload("Job")
	}
	if filter.JobID != "" {
		q = q.Preload("Applicant", applicantColumns)
	}

	err := q.Order("created_at DESC").Scopes(filter.Pagination.Scope).Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *ApplicationRepositoryImpl) Update(db *gorm.DB, app *models.JobApplication) error {
	return db.Omit(clause.Associations).Save(app).Error
}

func (r *ApplicationRepositoryImpl) CountByStatusForEmployer(db *gorm.DB, employerID string) (map[string]int64, error) {
	q := db.Model(&models.JobApplication{}).
		Select("applicant_job_applications.status AS status, COUNT(*) AS count").
		Group("applicant_job_applications.status")
	if employerID != "" {
		q = q.Joins("JOIN jobs ON jobs.id = applicant_job_applications.job_id").
			Where("jobs.posted_by_id = ?", employerID)
	}

	var rows []statusCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return statusCountsToMap(rows), nil
}

func (r *ApplicationRepositoryImpl) CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.JobApplication{}).Count(&count).Error
	return count, err
}
