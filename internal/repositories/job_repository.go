package repositories

import (
	"errors"
	"time"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrJobNotFound = errors.New("job not found")

// Сортировки списка вакансий
const (
	JobSortLatest = "latest"
	JobSortOldest = "oldest"
	JobSortSalary = "salary"
)

// JobFilter - фильтры каталога вакансий. Справочники задаются slug'ами.
type JobFilter struct {
	Search         string
	Sector         string
	Country        string
	Province       string
	City           string
	Qualification  string
	WorkMode       string
	WorkExperience string
	EmploymentType models.EmploymentType
	SalaryMin      *float64
	Featured       *bool
	Statuses       []models.JobStatus
	PostedByID     string
	OpenOnly       bool // не показывать вакансии с прошедшим дедлайном
	Now            time.Time
	Sort           string
	Pagination     Pagination
}

type JobRepository interface {
	Create(db *gorm.DB, job *models.Job) error
	FindByID(db *gorm.DB, id string) (*models.Job, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Job, error)
	SlugExists(db *gorm.DB, slug, excludeID string) (bool, error)
	List(db *gorm.DB, filter JobFilter) ([]models.Job, int64, error)
	Update(db *gorm.DB, job *models.Job) error
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
	IncrementViews(db *gorm.DB, id string) error
	CloseExpired(db *gorm.DB, now time.Time) ([]models.Job, error)
	CountByStatus(db *gorm.DB, postedByID string) (map[string]int64, error)
	SumViews(db *gorm.DB, postedByID string) (int64, error)
}

type JobRepositoryImpl struct{}

func NewJobRepository() JobRepository {
	return &JobRepositoryImpl{}
}

var jobPreloads = []string{
	"Sector", "Country", "Province", "City",
	"Qualification", "WorkMode", "WorkExperience",
}

func preloadJob(db *gorm.DB) *gorm.DB {
	for _, p := range jobPreloads {
		db = db.Preload(p)
	}
	return db.Preload("PostedBy", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email", "avatar_url", "role", "status")
	})
}

func (r *JobRepositoryImpl) Create(db *gorm.DB, job *models.Job) error {
	if err := db.Omit(clause.Associations).Create(job).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *JobRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	if err := preloadJob(db).First(&job, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, ErrJobNotFound)
	}
	return &job, nil
}

func (r *JobRepositoryImpl) FindBySlug(db *gorm.DB, slug string) (*models.Job, error) {
	var job models.Job
	if err := preloadJob(db).First(&job, "slug = ?", slug).Error; err != nil {
		return nil, translateNotFound(err, ErrJobNotFound)
	}
	return &job, nil
}

func (r *JobRepositoryImpl) SlugExists(db *gorm.DB, slug, excludeID string) (bool, error) {
	var count int64
	q := db.Model(&models.Job{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// slugRef - фильтр по slug справочника через подзапрос, без JOIN'ов
func slugRef(q *gorm.DB, column, table, slug string) *gorm.DB {
	if slug == "" {
		return q
	}
	return q.Where(column+" IN (SELECT id FROM "+table+" WHERE slug = ?)", slug)
}

func (r *JobRepositoryImpl) applyFilter(db *gorm.DB, f JobFilter) *gorm.DB {
	q := db.Model(&models.Job{})

	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.PostedByID != "" {
		q = q.Where("posted_by_id = ?", f.PostedByID)
	}
	if f.OpenOnly {
		now := f.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		q = q.Where("deadline IS NULL OR deadline > ?", now)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where("LOWER(title) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern)
	}

	q = slugRef(q, "sector_id", "sectors", f.Sector)
	q = slugRef(q, "country_id", "countries", f.Country)
	q = slugRef(q, "province_id", "provinces", f.Province)
	q = slugRef(q, "city_id", "cities", f.City)
	q = slugRef(q, "qualification_id", "qualifications", f.Qualification)
	q = slugRef(q, "work_mode_id", "work_modes", f.WorkMode)
	q = slugRef(q, "work_experience_id", "work_experiences", f.WorkExperience)

	if f.EmploymentType != "" {
		q = q.Where("employment_type = ?", f.EmploymentType)
	}
	if f.SalaryMin != nil {
		q = q.Where("salary_max >= ? OR (salary_max IS NULL AND salary_min >= ?)", *f.SalaryMin, *f.SalaryMin)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	return q
}

func jobOrder(sort string) string {
	switch sort {
	case JobSortOldest:
		return "created_at ASC"
	case JobSortSalary:
		return "COALESCE(salary_max, salary_min, 0) DESC, created_at DESC"
	default:
		return "is_featured DESC, COALESCE(published_at, created_at) DESC"
	}
}

func (r *JobRepositoryImpl) List(db *gorm.DB, filter JobFilter) ([]models.Job, int64, error) {
	q := r.applyFilter(db, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]models.Job, 0)
	if total == 0 {
		return jobs, 0, nil
	}

	err := preloadJob(q).
		Order(jobOrder(filter.Sort)).
		Scopes(filter.Pagination.Scope).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *JobRepositoryImpl) Update(db *gorm.DB, job *models.Job) error {
	if err := db.Omit(clause.Associations).Save(job).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *JobRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Job{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Job{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) IncrementViews(db *gorm.DB, id string) error {
	return db.Model(&models.Job{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// CloseExpired закрывает активные вакансии с прошедшим дедлайном и возвращает их
func (r *JobRepositoryImpl) CloseExpired(db *gorm.DB, now time.Time) ([]models.Job, error) {
	var expired []models.Job
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "title", "slug", "posted_by_id").
			Where("status = ? AND deadline IS NOT NULL AND deadline <= ?", models.JobStatusActive, now).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]string, len(expired))
		for i, j := range expired {
			ids[i] = j.ID
		}
		return tx.Model(&models.Job{}).Where("id IN ?", ids).
			Updates(map[string]interface{}{"status": models.JobStatusClosed, "updated_at": now}).Error
	})
	return expired, err
}

type statusCount struct {
	Status string
	Count  int64
}

func (r *JobRepositoryImpl) CountByStatus(db *gorm.DB, postedByID string) (map[string]int64, error) {
	q := db.Model(&models.Job{}).Select("status, COUNT(*) AS count").Group("status")
	if postedByID != "" {
		q = q.Where("posted_by_id = ?", postedByID)
	}

	var rows []statusCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return statusCountsToMap(rows), nil
}

func (r *JobRepositoryImpl) SumViews(db *gorm.DB, postedByID string) (int64, error) {
	var total int64
	q := db.Model(&models.Job{}).Select("COALESCE(SUM(views), 0)")
	if postedByID != "" {
		q = q.Where("posted_by_id = ?", postedByID)
	}
	err := q.Scan(&total).Error
	return total, err
}

func statusCountsToMap(rows []statusCount) map[string]int64 {
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result
}
