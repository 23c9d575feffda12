package services

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/events"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/utils"
	"jobportal_backend/pkg/apperrors"
)

// Разрешенные смены статуса вакансии владельцем
var jobTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusDraft:    {models.JobStatusActive, models.JobStatusArchived},
	models.JobStatusActive:   {models.JobStatusClosed, models.JobStatusArchived},
	models.JobStatusClosed:   {models.JobStatusActive, models.JobStatusArchived},
	models.JobStatusArchived: {models.JobStatusDraft},
}

const subscriberAlertBatch = 100

type JobService interface {
	CreateJob(db *gorm.DB, userID, role string, req *dto.CreateJobRequest) (*models.Job, error)
	GetJob(db *gorm.DB, slug, viewerID, viewerRole string) (*models.Job, error)
	ListJobs(db *gorm.DB, query *dto.JobListQuery) (*dto.Page[models.Job], error)
	ListJobsByLookup(db *gorm.DB, kind, slug string, query *dto.JobListQuery) (*dto.Page[models.Job], error)
	ListLatest(db *gorm.DB, limit int) ([]models.Job, error)
	ListFeatured(db *gorm.DB, limit int) ([]models.Job, error)
	ListMyJobs(db *gorm.DB, userID string, query *dto.MyJobsQuery) (*dto.Page[models.Job], error)
	UpdateJob(db *gorm.DB, id, userID, role string, req *dto.UpdateJobRequest) (*models.Job, error)
	UpdateJobStatus(db *gorm.DB, id, userID, role string, status models.JobStatus) (*models.Job, error)
	DeleteJob(ctx context.Context, db *gorm.DB, id, userID, role string) error
	UploadAttachment(ctx context.Context, db *gorm.DB, id, userID, role string, file *multipart.FileHeader) (*models.Job, error)

	// CloseExpiredJobs закрывает вакансии с прошедшим дедлайном (воркер)
	CloseExpiredJobs(db *gorm.DB, now time.Time) (int, error)
}

type JobServiceImpl struct {
	jobRepo        repositories.JobRepository
	subscriberRepo repositories.SubscriberRepository
	uploads        UploadService
	mailer         *email.Mailer
	publisher      events.Publisher
	now            func() time.Time
}

func NewJobService(
	jobRepo repositories.JobRepository,
	subscriberRepo repositories.SubscriberRepository,
	uploads UploadService,
	mailer *email.Mailer,
	publisher events.Publisher,
) JobService {
	return &JobServiceImpl{
		jobRepo:        jobRepo,
		subscriberRepo: subscriberRepo,
		uploads:        uploads,
		mailer:         mailer,
		publisher:      publisher,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *JobServiceImpl) CreateJob(db *gorm.DB, userID, role string, req *dto.CreateJobRequest) (*models.Job, error) {
	if !auth.HasPermission(role, "jobs:write") {
		return nil, apperrors.ErrInsufficientPermissions
	}

	now := s.now()
	status := req.Status
	if status == "" {
		status = models.JobStatusDraft
	}
	if status != models.JobStatusDraft && status != models.JobStatusActive {
		return nil, apperrors.ValidationError(map[string]string{"status": "new jobs can only be draft or active"})
	}

	vacancies := req.Vacancies
	if vacancies == 0 {
		vacancies = 1
	}

	job := &models.Job{
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Requirements:     req.Requirements,
		Responsibilities: req.Responsibilities,
		CompanyName:      strings.TrimSpace(req.CompanyName),
		EmploymentType:   req.EmploymentType,
		SalaryMin:        req.SalaryMin,
		SalaryMax:        req.SalaryMax,
		Currency:         strings.ToUpper(req.Currency),
		Vacancies:        vacancies,
		Deadline:         req.Deadline,
		Skills:           skillsJSON(req.Skills),
		Status:           status,
		IsFeatured:       req.Featured && auth.IsAdmin(role),
		PostedByID:       userID,
		SectorID:         emptyToNil(req.SectorID),
		CountryID:        emptyToNil(req.CountryID),
		ProvinceID:       emptyToNil(req.ProvinceID),
		CityID:           emptyToNil(req.CityID),
		QualificationID:  emptyToNil(req.QualificationID),
		WorkModeID:       emptyToNil(req.WorkModeID),
		WorkExperienceID: emptyToNil(req.WorkExperienceID),
	}

	if err := validateJob(job, now); err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := checkJobReferences(tx, job); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(tx, job.Title, "")
	if err != nil {
		return nil, err
	}
	job.Slug = slug
	if status == models.JobStatusActive {
		job.PublishedAt = &now
	}

	if err := s.jobRepo.Create(tx, job); err != nil {
		if errors.Is(err, repositories.ErrSlugTaken) {
			return nil, apperrors.ErrSlugTaken("job", slug)
		}
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	created, err := s.jobRepo.FindByID(db, job.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "job created", "job_id", job.ID, "slug", job.Slug, "status", job.Status)
	if created.Status == models.JobStatusActive {
		s.announce(db, created)
	}
	return created, nil
}

func (s *JobServiceImpl) GetJob(db *gorm.DB, slug, viewerID, viewerRole string) (*models.Job, error) {
	job, err := s.jobRepo.FindBySlug(db, slug)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrJobNotFound, "job")
	}

	owner := auth.CanManage(viewerRole, viewerID, job.PostedByID)
	if !owner && (job.Status == models.JobStatusDraft || job.Status == models.JobStatusArchived) {
		return nil, apperrors.NotFound("job")
	}

	if viewerID != job.PostedByID {
		if err := s.jobRepo.IncrementViews(db, job.ID); err != nil {
			logger.CtxWithError(ctxOf(db), "failed to increment job views", err, "job_id", job.ID)
		} else {
			job.Views++
		}
	}
	return job, nil
}

func (s *JobServiceImpl) publicFilter(query *dto.JobListQuery) repositories.JobFilter {
	return repositories.JobFilter{
		Search:         query.Search,
		Sector:         query.Sector,
		Country:        query.Country,
		Province:       query.Province,
		City:           query.City,
		Qualification:  query.Qualification,
		WorkMode:       query.WorkMode,
		WorkExperience: query.WorkExperience,
		EmploymentType: query.EmploymentType,
		SalaryMin:      query.SalaryMin,
		Featured:       query.Featured,
		Statuses:       []models.JobStatus{models.JobStatusActive},
		OpenOnly:       true,
		Now:            s.now(),
		Sort:           query.Sort,
		Pagination:     pagination(query.Page, query.Limit),
	}
}

func (s *JobServiceImpl) list(db *gorm.DB, filter repositories.JobFilter) (*dto.Page[models.Job], error) {
	jobs, total, err := s.jobRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(jobs, total, filter.Pagination.Page, filter.Pagination.Limit), nil
}

func (s *JobServiceImpl) ListJobs(db *gorm.DB, query *dto.JobListQuery) (*dto.Page[models.Job], error) {
	return s.list(db, s.publicFilter(query))
}

// lookupTables - справочники, по slug'у которых можно листать вакансии
var lookupTables = map[string]string{
	"sector":   "sectors",
	"province": "provinces",
	"city":     "cities",
}

// ListJobsByLookup - вакансии сектора/региона/города. Неизвестный slug дает 404.
func (s *JobServiceImpl) ListJobsByLookup(db *gorm.DB, kind, slug string, query *dto.JobListQuery) (*dto.Page[models.Job], error) {
	table, ok := lookupTables[kind]
	if !ok {
		return nil, apperrors.NewBadRequestError("unknown lookup: " + kind)
	}

	var count int64
	if err := db.Table(table).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	if count == 0 {
		return nil, apperrors.NotFound(kind)
	}

	filter := s.publicFilter(query)
	switch kind {
	case "sector":
		filter.Sector = slug
	case "province":
		filter.Province = slug
	case "city":
		filter.City = slug
	}
	return s.list(db, filter)
}

func (s *JobServiceImpl) ListLatest(db *gorm.DB, limit int) ([]models.Job, error) {
	page, err := s.list(db, repositories.JobFilter{
		Statuses:   []models.JobStatus{models.JobStatusActive},
		OpenOnly:   true,
		Now:        s.now(),
		Sort:       repositories.JobSortLatest,
		Pagination: pagination(1, limit),
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *JobServiceImpl) ListFeatured(db *gorm.DB, limit int) ([]models.Job, error) {
	featured := true
	page, err := s.list(db, repositories.JobFilter{
		Statuses:   []models.JobStatus{models.JobStatusActive},
		Featured:   &featured,
		OpenOnly:   true,
		Now:        s.now(),
		Pagination: pagination(1, limit),
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *JobServiceImpl) ListMyJobs(db *gorm.DB, userID string, query *dto.MyJobsQuery) (*dto.Page[models.Job], error) {
	filter := repositories.JobFilter{
		Search:     query.Search,
		PostedByID: userID,
		Sort:       repositories.JobSortLatest,
		Pagination: pagination(query.Page, query.Limit),
	}
	if query.Status != "" {
		filter.Statuses = []models.JobStatus{query.Status}
	}
	return s.list(db, filter)
}

// findManaged загружает вакансию и проверяет, что пользователь - владелец или админ
func (s *JobServiceImpl) findManaged(db *gorm.DB, id, userID, role string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(db, id)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrJobNotFound, "job")
	}
	if !auth.CanManage(role, userID, job.PostedByID) {
		return nil, apperrors.NewForbiddenError("You can only manage your own jobs")
	}
	return job, nil
}

func (s *JobServiceImpl) UpdateJob(db *gorm.DB, id, userID, role string, req *dto.UpdateJobRequest) (*models.Job, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	job, err := s.findManaged(tx, id, userID, role)
	if err != nil {
		return nil, err
	}

	titleChanged := req.Title != nil && strings.TrimSpace(*req.Title) != job.Title
	applyJobUpdate(job, req, auth.IsAdmin(role))

	if err := validateJob(job, time.Time{}); err != nil {
		return nil, err
	}
	if err := checkJobReferences(tx, job); err != nil {
		return nil, err
	}

	if titleChanged {
		slug, err := s.uniqueSlug(tx, job.Title, job.ID)
		if err != nil {
			return nil, err
		}
		job.Slug = slug
	}

	if err := s.jobRepo.Update(tx, job); err != nil {
		if errors.Is(err, repositories.ErrSlugTaken) {
			return nil, apperrors.ErrSlugTaken("job", job.Slug)
		}
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	updated, err := s.jobRepo.FindByID(db, id)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return updated, nil
}

func (s *JobServiceImpl) UpdateJobStatus(db *gorm.DB, id, userID, role string, status models.JobStatus) (*models.Job, error) {
	job, err := s.findManaged(db, id, userID, role)
	if err != nil {
		return nil, err
	}
	if job.Status == status {
		return job, nil
	}
	if !jobCanTransition(job.Status, status) {
		return nil, apperrors.ErrInvalidStatus("job", "Cannot change job status from "+string(job.Status)+" to "+string(status))
	}

	now := s.now()
	fields := map[string]interface{}{"status": status}
	if status == models.JobStatusActive {
		if job.Deadline != nil && !job.Deadline.After(now) {
			return nil, apperrors.ErrJobDeadlinePassed.WithMessage("Move the deadline forward before publishing")
		}
		if job.PublishedAt == nil {
			fields["published_at"] = now
			job.PublishedAt = &now
		}
	}

	if err := s.jobRepo.UpdateFields(db, id, fields); err != nil {
		return nil, notFoundOr(err, repositories.ErrJobNotFound, "job")
	}
	job.Status = status

	ctx := ctxOf(db)
	logger.CtxInfo(ctx, "job status changed", "job_id", id, "status", status)

	switch status {
	case models.JobStatusActive:
		s.announce(db, job)
	case models.JobStatusClosed:
		publishEvent(ctx, s.publisher, events.New(events.JobClosed, job.ID, userID, map[string]interface{}{
			"slug":   job.Slug,
			"reason": "manual",
		}))
	}
	return job, nil
}

func (s *JobServiceImpl) DeleteJob(ctx context.Context, db *gorm.DB, id, userID, role string) error {
	job, err := s.findManaged(db, id, userID, role)
	if err != nil {
		return err
	}
	if err := s.jobRepo.Delete(db, id); err != nil {
		return notFoundOr(err, repositories.ErrJobNotFound, "job")
	}
	s.uploads.Remove(ctx, job.AttachmentURL)
	logger.CtxInfo(ctx, "job deleted", "job_id", id, "user_id", userID)
	return nil
}

func (s *JobServiceImpl) UploadAttachment(ctx context.Context, db *gorm.DB, id, userID, role string, file *multipart.FileHeader) (*models.Job, error) {
	job, err := s.findManaged(db, id, userID, role)
	if err != nil {
		return nil, err
	}

	result, err := s.uploads.Upload(ctx, UploadAttachment, file)
	if err != nil {
		return nil, err
	}

	if err := s.jobRepo.UpdateFields(db, id, map[string]interface{}{"attachment_url": result.URL}); err != nil {
		s.uploads.Remove(ctx, result.URL)
		return nil, apperrors.InternalError(err)
	}
	s.uploads.Remove(ctx, job.AttachmentURL)
	job.AttachmentURL = result.URL
	return job, nil
}

func (s *JobServiceImpl) CloseExpiredJobs(db *gorm.DB, now time.Time) (int, error) {
	closed, err := s.jobRepo.CloseExpired(db, now)
	if err != nil {
		return 0, err
	}
	ctx := ctxOf(db)
	for _, job := range closed {
		publishEvent(ctx, s.publisher, events.New(events.JobClosed, job.ID, job.PostedByID, map[string]interface{}{
			"slug":   job.Slug,
			"reason": "deadline",
		}))
	}
	return len(closed), nil
}

// announce - событие job.published и рассылка подписчикам
func (s *JobServiceImpl) announce(db *gorm.DB, job *models.Job) {
	ctx := ctxOf(db)
	publishEvent(ctx, s.publisher, events.New(events.JobPublished, job.ID, job.PostedByID, map[string]interface{}{
		"slug":  job.Slug,
		"title": job.Title,
	}))

	if s.mailer == nil {
		return
	}
	location := jobLocation(job)
	queued := 0
	err := s.subscriberRepo.ForEachActive(db, subscriberAlertBatch, func(batch []models.Subscriber) error {
		for _, sub := range batch {
			s.mailer.Enqueue([]string{sub.Email}, "New job: "+job.Title, email.TemplateJobAlert, email.TemplateData{
				"Name":        sub.Name,
				"JobTitle":    job.Title,
				"JobSlug":     job.Slug,
				"CompanyName": job.CompanyName,
				"Location":    location,
				"Token":       sub.UnsubscribeToken,
			})
			queued++
		}
		return nil
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to notify subscribers", err, "job_id", job.ID)
		return
	}
	logger.CtxInfo(ctx, "job alerts queued", "job_id", job.ID, "count", queued)
}

func (s *JobServiceImpl) uniqueSlug(db *gorm.DB, title, excludeID string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		return "", apperrors.ValidationError(map[string]string{"title": "title must contain letters or digits"})
	}
	slug, err := utils.UniqueSlug(base, func(candidate string) (bool, error) {
		return s.jobRepo.SlugExists(db, candidate, excludeID)
	})
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return slug, nil
}

func jobCanTransition(from, to models.JobStatus) bool {
	for _, allowed := range jobTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// validateJob проверяет межполевые ограничения. Нулевой now отключает
// проверку дедлайна (при редактировании старых вакансий).
func validateJob(job *models.Job, now time.Time) error {
	errs := map[string]string{}
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > *job.SalaryMax {
		errs["salaryMax"] = "salaryMax must be greater than or equal to salaryMin"
	}
	if job.Vacancies < 1 {
		errs["vacancies"] = "vacancies must be at least 1"
	}
	if !now.IsZero() && job.Deadline != nil && !job.Deadline.After(now) {
		errs["deadline"] = "deadline must be in the future"
	}
	if !job.EmploymentType.Valid() {
		errs["employmentType"] = "invalid employment type"
	}
	if len(errs) > 0 {
		return apperrors.ValidationError(errs)
	}
	return nil
}

// checkJobReferences - все указанные справочники должны существовать,
// город должен относиться к указанному региону
func checkJobReferences(db *gorm.DB, job *models.Job) error {
	refs := []struct {
		id    *string
		model interface{}
		field string
	}{
		{job.SectorID, &models.Sector{}, "sectorId"},
		{job.CountryID, &models.Country{}, "countryId"},
		{job.ProvinceID, &models.Province{}, "provinceId"},
		{job.CityID, &models.City{}, "cityId"},
		{job.QualificationID, &models.Qualification{}, "qualificationId"},
		{job.WorkModeID, &models.WorkMode{}, "workModeId"},
		{job.WorkExperienceID, &models.WorkExperience{}, "workExperienceId"},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if err := requireRow(db, ref.model, *ref.id, ref.field); err != nil {
			return err
		}
	}

	if job.CityID != nil && job.ProvinceID != nil {
		var city models.City
		if err := db.Select("province_id").First(&city, "id = ?", *job.CityID).Error; err != nil {
			return apperrors.InternalError(err)
		}
		if city.ProvinceID != *job.ProvinceID {
			return apperrors.ValidationError(map[string]string{"cityId": "city does not belong to the selected province"})
		}
	}
	return nil
}

func applyJobUpdate(job *models.Job, req *dto.UpdateJobRequest, admin bool) {
	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Requirements != nil {
		job.Requirements = *req.Requirements
	}
	if req.Responsibilities != nil {
		job.Responsibilities = *req.Responsibilities
	}
	if req.CompanyName != nil {
		job.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.EmploymentType != nil {
		job.EmploymentType = *req.EmploymentType
	}
	if req.SalaryMin != nil {
		job.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = req.SalaryMax
	}
	if req.Currency != nil {
		job.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Vacancies != nil {
		job.Vacancies = *req.Vacancies
	}
	if req.Deadline != nil {
		job.Deadline = req.Deadline
	}
	if req.Skills != nil {
		job.Skills = skillsJSON(req.Skills)
	}
	if req.Featured != nil && admin {
		job.IsFeatured = *req.Featured
	}

	// пустая строка снимает ссылку
	setRef := func(dst **string, src *string) {
		if src != nil {
			*dst = emptyToNil(src)
		}
	}
	setRef(&job.SectorID, req.SectorID)
	setRef(&job.CountryID, req.CountryID)
	setRef(&job.ProvinceID, req.ProvinceID)
	setRef(&job.CityID, req.CityID)
	setRef(&job.QualificationID, req.QualificationID)
	setRef(&job.WorkModeID, req.WorkModeID)
	setRef(&job.WorkExperienceID, req.WorkExperienceID)

	// загруженные ассоциации могли устареть, ответ перечитывается после сохранения
	job.Sector, job.Country, job.Province, job.City = nil, nil, nil, nil
	job.Qualification, job.WorkMode, job.WorkExperience, job.PostedBy = nil, nil, nil, nil
}

func skillsJSON(skills []string) datatypes.JSON {
	clean := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}
	raw, _ := json.Marshal(clean)
	return datatypes.JSON(raw)
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func jobLocation(job *models.Job) string {
	parts := make([]string, 0, 3)
	if job.City != nil {
		parts = append(parts, job.City.Name)
	}
	if job.Province != nil {
		parts = append(parts, job.Province.Name)
	}
	if job.Country != nil {
		parts = append(parts, job.Country.Name)
	}
	return strings.Join(parts, ", ")
}
