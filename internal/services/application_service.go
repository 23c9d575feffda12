package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/events"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type ApplicationService interface {
	Apply(ctx context.Context, db *gorm.DB, jobID, applicantID, role string, req *dto.ApplyRequest) (*models.JobApplication, error)
	GetApplication(db *gorm.DB, id, userID, role string) (*models.JobApplication, error)
	ListMyApplications(db *gorm.DB, applicantID string, query *dto.ApplicationListQuery) (*dto.Page[models.JobApplication], error)
	ListJobApplications(db *gorm.DB, jobID, userID, role string, query *dto.ApplicationListQuery) (*dto.Page[models.JobApplication], error)
	UpdateStatus(db *gorm.DB, id, userID, role string, req *dto.UpdateApplicationStatusRequest) (*models.JobApplication, error)
	Withdraw(db *gorm.DB, id, applicantID string) (*models.JobApplication, error)
}

type ApplicationServiceImpl struct {
	applicationRepo repositories.ApplicationRepository
	jobRepo         repositories.JobRepository
	userRepo        repositories.UserRepository
	notifications   NotificationService
	uploads         UploadService
	notifier        RealtimeNotifier
	mailer          *email.Mailer
	publisher       events.Publisher
	now             func() time.Time
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	uploads UploadService,
	notifier RealtimeNotifier,
	mailer *email.Mailer,
	publisher events.Publisher,
) ApplicationService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ApplicationServiceImpl{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		userRepo:        userRepo,
		notifications:   notifications,
		uploads:         uploads,
		notifier:        notifier,
		mailer:          mailer,
		publisher:       publisher,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *ApplicationServiceImpl) Apply(ctx context.Context, db *gorm.DB, jobID, applicantID, role string, req *dto.ApplyRequest) (*models.JobApplication, error) {
	if !auth.HasPermission(role, "applications:submit") {
		return nil, apperrors.NewForbiddenError("Only applicants can apply to jobs")
	}

	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrJobNotFound, "job")
	}
	if job.PostedByID == applicantID {
		return nil, apperrors.ErrCannotApplyToOwnJob
	}
	if job.Status != models.JobStatusActive {
		return nil, apperrors.ErrJobNotActive
	}
	if !job.IsOpen(s.now()) {
		return nil, apperrors.ErrJobDeadlinePassed
	}

	applicant, err := s.userRepo.FindByID(db, applicantID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user")
	}

	exists, err := s.applicationRepo.Exists(db, jobID, applicantID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrAlreadyApplied
	}

	resumeURL := applicant.ResumeURL
	uploaded := ""
	if req.Resume != nil {
		result, err := s.uploads.Upload(ctx, UploadResume, req.Resume)
		if err != nil {
			return nil, err
		}
		resumeURL, uploaded = result.URL, result.URL
	}
	if resumeURL == "" {
		return nil, apperrors.ErrResumeRequired
	}

	app := &models.JobApplication{
		JobID:          jobID,
		ApplicantID:    applicantID,
		CoverLetter:    req.CoverLetter,
		ExpectedSalary: req.ExpectedSalary,
		ResumeURL:      resumeURL,
		Status:         models.ApplicationStatusPending,
	}
	if err := s.applicationRepo.Create(db, app); err != nil {
		if uploaded != "" {
			s.uploads.Remove(ctx, uploaded)
		}
		if errors.Is(err, repositories.ErrAlreadyApplied) {
			return nil, apperrors.ErrAlreadyApplied
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "application submitted", "application_id", app.ID, "job_id", jobID, "applicant_id", applicantID)

	data := map[string]interface{}{"jobId": job.ID, "jobSlug": job.Slug, "applicationId": app.ID}
	if _, err := s.notifications.Notify(db, job.PostedByID, models.NotificationNewApplication,
		"New application",
		fmt.Sprintf("%s applied to \"%s\"", applicant.Name, job.Title), data); err != nil {
		logger.CtxWithError(ctx, "failed to create notification", err, "application_id", app.ID)
	}

	if job.PostedBy != nil && job.PostedBy.Email != "" {
		s.mailer.Enqueue([]string{job.PostedBy.Email}, "New application: "+job.Title, email.TemplateNewApplication, email.TemplateData{
			"JobTitle":      job.Title,
			"JobID":         job.ID,
			"ApplicantName": applicant.Name,
		})
	}
	publishEvent(ctx, s.publisher, events.New(events.ApplicationSubmitted, app.ID, applicantID, data))

	app.Job = job
	return app, nil
}

func (s *ApplicationServiceImpl) GetApplication(db *gorm.DB, id, userID, role string) (*models.JobApplication, error) {
	app, err := s.applicationRepo.FindByID(db, id)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrApplicationNotFound, "application")
	}
	if app.ApplicantID == userID {
		return app, nil
	}
	if app.Job != nil && auth.CanManage(role, userID, app.Job.PostedByID) {
		return app, nil
	}
	return nil, apperrors.NotFound("application")
}

func (s *ApplicationServiceImpl) list(db *gorm.DB, filter repositories.ApplicationFilter) (*dto.Page[models.JobApplication], error) {
	items, total, err := s.applicationRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(items, total, filter.Pagination.Page, filter.Pagination.Limit), nil
}

func (s *ApplicationServiceImpl) ListMyApplications(db *gorm.DB, applicantID string, query *dto.ApplicationListQuery) (*dto.Page[models.JobApplication], error) {
	return s.list(db, repositories.ApplicationFilter{
		ApplicantID: applicantID,
		Status:      query.Status,
		Pagination:  pagination(query.Page, query.Limit),
	})
}

func (s *ApplicationServiceImpl) ListJobApplications(db *gorm.DB, jobID, userID, role string, query *dto.ApplicationListQuery) (*dto.Page[models.JobApplication], error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrJobNotFound, "job")
	}
	if !auth.CanManage(role, userID, job.PostedByID) {
		return nil, apperrors.NewForbiddenError("You can only view applications for your own jobs")
	}
	return s.list(db, repositories.ApplicationFilter{
		JobID:      jobID,
		Status:     query.Status,
		Pagination: pagination(query.Page, query.Limit),
	})
}

func (s *ApplicationServiceImpl) UpdateStatus(db *gorm.DB, id, userID, role string, req *dto.UpdateApplicationStatusRequest) (*models.JobApplication, error) {
	app, err := s.applicationRepo.FindByID(db, id)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrApplicationNotFound, "application")
	}
	if app.Job == nil || !auth.CanManage(role, userID, app.Job.PostedByID) {
		return nil, apperrors.NewForbiddenError("You can only review applications for your own jobs")
	}
	if !app.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.ErrInvalidStatusTransition.WithDetails(map[string]string{
			"from": string(app.Status),
			"to":   string(req.Status),
		})
	}

	now := s.now()
	previous := app.Status
	app.Status = req.Status
	app.ReviewedAt = &now
	if req.Notes != "" {
		app.EmployerNotes = req.Notes
	}
	if err := s.applicationRepo.Update(db, app); err != nil {
		return nil, apperrors.InternalError(err)
	}

	ctx := ctxOf(db)
	logger.CtxInfo(ctx, "application status changed", "application_id", id, "from", previous, "to", req.Status)

	payload := map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"jobTitle":      app.Job.Title,
		"status":        app.Status,
		"previous":      previous,
	}
	if _, err := s.notifications.Notify(db, app.ApplicantID, models.NotificationApplicationStatus,
		"Application status updated",
		fmt.Sprintf("Your application for \"%s\" is now %s", app.Job.Title, app.Status), payload); err != nil {
		logger.CtxWithError(ctx, "failed to create notification", err, "application_id", id)
	}
	s.notifier.SendToUser(app.ApplicantID, SocketEventApplicationStatusChanged, payload)

	if app.Applicant != nil && app.Applicant.Email != "" {
		s.mailer.Enqueue([]string{app.Applicant.Email}, "Application update: "+app.Job.Title, email.TemplateApplicationStatus, email.TemplateData{
			"Name":     app.Applicant.Name,
			"JobTitle": app.Job.Title,
			"Status":   string(app.Status),
			"Notes":    req.Notes,
		})
	}
	publishEvent(ctx, s.publisher, events.New(events.ApplicationStatusChanged, app.ID, userID, payload))
	return app, nil
}

func (s *ApplicationServiceImpl) Withdraw(db *gorm.DB, id, applicantID string) (*models.JobApplication, error) {
	app, err := s.applicationRepo.FindByID(db, id)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrApplicationNotFound, "application")
	}
	if app.ApplicantID != applicantID {
		return nil, apperrors.NotFound("application")
	}
	if !app.Status.CanWithdraw() {
		return nil, apperrors.ErrInvalidStatusTransition.WithDetails(map[string]string{
			"from": string(app.Status),
			"to":   string(models.ApplicationStatusWithdrawn),
		})
	}

	app.Status = models.ApplicationStatusWithdrawn
	if err := s.applicationRepo.Update(db, app); err != nil {
		return nil, apperrors.InternalError(err)
	}

	ctx := ctxOf(db)
	if app.Job != nil {
		data := map[string]interface{}{"applicationId": app.ID, "jobId": app.JobID}
		if _, err := s.notifications.Notify(db, app.Job.PostedByID, models.NotificationApplicationWithdrawn,
			"Application withdrawn",
			fmt.Sprintf("An applicant withdrew from \"%s\"", app.Job.Title), data); err != nil {
			logger.CtxWithError(ctx, "failed to create notification", err, "application_id", id)
		}
	}
	publishEvent(ctx, s.publisher, events.New(events.ApplicationWithdrawn, app.ID, applicantID, nil))
	return app, nil
}
