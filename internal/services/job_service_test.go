package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

func jobRequest(title string) *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		Title:          title,
		Description:    "Build and run backend services",
		CompanyName:    "Acme",
		EmploymentType: models.EmploymentFullTime,
		Skills:         []string{" go ", "", "postgres"},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestJobService_CreateJob(t *testing.T) {
	env := newTestEnv(t)
	employer := env.user(t, models.UserRoleEmployer)
	applicant := env.user(t, models.UserRoleApplicant)

	t.Run("applicant cannot post", func(t *testing.T) {
		_, err := env.jobs.CreateJob(env.db, applicant.ID, string(applicant.Role), jobRequest("Go Developer"))
		requireCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("defaults to draft", func(t *testing.T) {
		req := jobRequest("Senior Go Developer")
		req.Featured = true
		job, err := env.jobs.CreateJob(env.db, employer.ID, string(employer.Role), req)
		require.NoError(t, err)

		assert.Equal(t, "senior-go-developer", job.Slug)
		assert.Equal(t, models.JobStatusDraft, job.Status)
		assert.Equal(t, 1, job.Vacancies)
		assert.Nil(t, job.PublishedAt)
		assert.False(t, job.IsFeatured, "only admins can feature jobs")
		assert.JSONEq(t, `["go","postgres"]`, string(job.Skills))
	})

	t.Run("duplicate title gets suffix", func(t *testing.T) {
		job, err := env.jobs.CreateJob(env.db, employer.ID, string(employer.Role), jobRequest("Senior Go Developer"))
		require.NoError(t, err)
		assert.Equal(t, "senior-go-developer-2", job.Slug)
	})

	t.Run("active sets published date", func(t *testing.T) {
		req := jobRequest("Platform Engineer")
		req.Status = models.JobStatusActive
		job, err := env.jobs.CreateJob(env.db, employer.ID, string(employer.Role), req)
		require.NoError(t, err)
		assert.NotNil(t, job.PublishedAt)
	})

	t.Run("rejects closed status", func(t *testing.T) {
		req := jobRequest("Closed Job")
		req.Status = models.JobStatusClosed
		_, err := env.jobs.CreateJob(env.db, employer.ID, string(employer.Role), req)
		requireCode(t, err, apperrors.CodeValidationFailed)
	})

	t.Run("rejects inverted salary range", func(t *testing.T) {
		req := jobRequest("Backend Engineer")
		req.SalaryMin, req.SalaryMax = floatPtr(5000), floatPtr(1000)
		_, err := env.jobs.CreateJob(env.db, employer.ID, string(employer.Role), req)
		appErr := requireCode(t, err, apperrors.CodeValidationFailed)
		assert.Contains(t, appErr.Details, "salaryMax")
	})

	t.Run("rejects past deadline", func(t *testing.T) {
		req := jobRequest("Late Job")
		past := time.Now().Add(-time.Hour)
		req.Deadline = &past
		_, err := env.jobs.CreateJob(env.db, employer.ID, string(employer.Role), req)
		requireCode(t, err, apperrors.CodeValidationFailed)
	})

	t.Run("rejects unknown sector", func(t *testing.T) {
		req := jobRequest("Data Engineer")
		missing := "00000000-0000-0000-0000-00000000ffff"
		req.SectorID = &missing
		_, err := env.jobs.CreateJob(env.db, employer.ID, string(employer.Role), req)
		requireCode(t, err, apperrors.CodeValidationFailed)
	})
}

func TestJobService_GetJobVisibility(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, models.UserRoleEmployer)
	other := env.user(t, models.UserRoleEmployer)
	admin := env.user(t, models.UserRoleAdmin)

	job, err := env.jobs.CreateJob(env.db, owner.ID, string(owner.Role), jobRequest("Hidden Draft"))
	require.NoError(t, err)

	_, err = env.jobs.GetJob(env.db, job.Slug, "", "")
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = env.jobs.GetJob(env.db, job.Slug, other.ID, string(other.Role))
	requireCode(t, err, apperrors.CodeNotFound)

	got, err := env.jobs.GetJob(env.db, job.Slug, owner.ID, string(owner.Role))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Views, "owner views are not counted")

	_, err = env.jobs.GetJob(env.db, job.Slug, admin.ID, string(admin.Role))
	require.NoError(t, err)

	_, err = env.jobs.UpdateJobStatus(env.db, job.ID, owner.ID, string(owner.Role), models.JobStatusActive)
	require.NoError(t, err)
	got, err = env.jobs.GetJob(env.db, job.Slug, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	_, err = env.jobs.UpdateJobStatus(env.db, job.ID, owner.ID, string(owner.Role), models.JobStatusClosed)
	require.NoError(t, err)
	_, err = env.jobs.GetJob(env.db, job.Slug, "", "")
	assert.NoError(t, err, "closed jobs stay readable")
}

func TestJobService_UpdateJobStatus(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, models.UserRoleEmployer)
	other := env.user(t, models.UserRoleEmployer)

	job, err := env.jobs.CreateJob(env.db, owner.ID, string(owner.Role), jobRequest("Status Flow"))
	require.NoError(t, err)

	_, err = env.jobs.UpdateJobStatus(env.db, job.ID, other.ID, string(other.Role), models.JobStatusActive)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = env.jobs.UpdateJobStatus(env.db, job.ID, owner.ID, string(owner.Role), models.JobStatusClosed)
	requireCode(t, err, apperrors.CodeInvalidStatus)

	active, err := env.jobs.UpdateJobStatus(env.db, job.ID, owner.ID, string(owner.Role), models.JobStatusActive)
	require.NoError(t, err)
	require.NotNil(t, active.PublishedAt)
	published := *active.PublishedAt

	same, err := env.jobs.UpdateJobStatus(env.db, job.ID, owner.ID, string(owner.Role), models.JobStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusActive, same.Status)

	_, err = env.jobs.UpdateJobStatus(env.db, job.ID, owner.ID, string(owner.Role), models.JobStatusClosed)
	require.NoError(t, err)
	reopened, err := env.jobs.UpdateJobStatus(env.db, job.ID, owner.ID, string(owner.Role), models.JobStatusActive)
	require.NoError(t, err)
	assert.WithinDuration(t, published, *reopened.PublishedAt, time.Second, "first publication date is kept")

	_, err = env.jobs.UpdateJobStatus(env.db, "00000000-0000-0000-0000-00000000ffff", owner.ID, string(owner.Role), models.JobStatusActive)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestJobService_UpdateJobRenamesSlug(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, models.UserRoleEmployer)

	job, err := env.jobs.CreateJob(env.db, owner.ID, string(owner.Role), jobRequest("Junior Tester"))
	require.NoError(t, err)

	title := "QA Engineer"
	updated, err := env.jobs.UpdateJob(env.db, job.ID, owner.ID, string(owner.Role), &dto.UpdateJobRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "qa-engineer", updated.Slug)
	assert.Equal(t, "Acme", updated.CompanyName)

	_, err = env.jobs.UpdateJob(env.db, job.ID, owner.ID, string(owner.Role), &dto.UpdateJobRequest{
		SalaryMin: floatPtr(9000), SalaryMax: floatPtr(100),
	})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestJobService_PublicListingShowsOnlyOpenJobs(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, models.UserRoleEmployer)

	create := func(title string, status models.JobStatus) *models.Job {
		req := jobRequest(title)
		req.Status = status
		job, err := env.jobs.CreateJob(env.db, owner.ID, string(owner.Role), req)
		require.NoError(t, err)
		return job
	}
	create("Visible One", models.JobStatusActive)
	create("Visible Two", models.JobStatusActive)
	create("Draft Only", models.JobStatusDraft)

	page, err := env.jobs.ListJobs(env.db, &dto.JobListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)

	mine, err := env.jobs.ListMyJobs(env.db, owner.ID, &dto.MyJobsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, mine.Total)

	latest, err := env.jobs.ListLatest(env.db, 1)
	require.NoError(t, err)
	assert.Len(t, latest, 1)

	_, err = env.jobs.ListJobsByLookup(env.db, "sector", "missing", &dto.JobListQuery{})
	requireCode(t, err, apperrors.CodeNotFound)
}
