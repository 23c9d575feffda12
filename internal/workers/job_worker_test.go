package workers

import (
	"context"
	"testing"
	"time"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobWorker_CloseExpired(t *testing.T) {
	db := testutil.NewDB(t)

	employer := &models.User{Name: "HR", Email: "hr@acme.test", PasswordHash: "x",
		Role: models.UserRoleEmployer, Status: models.UserStatusActive}
	require.NoError(t, db.Create(employer).Error)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(24 * time.Hour)
	expired := &models.Job{Title: "Old", Slug: "old", Description: "d", EmploymentType: models.EmploymentFullTime,
		Status: models.JobStatusActive, Vacancies: 1, Deadline: &past, PostedByID: employer.ID}
	open := &models.Job{Title: "Open", Slug: "open", Description: "d", EmploymentType: models.EmploymentFullTime,
		Status: models.JobStatusActive, Vacancies: 1, Deadline: &future, PostedByID: employer.ID}
	require.NoError(t, db.Create(expired).Error)
	require.NoError(t, db.Create(open).Error)

	jobs := services.NewJobService(repositories.NewJobRepository(), repositories.NewSubscriberRepository(), nil, nil, nil)
	NewJobWorker(db, jobs, time.Hour).CloseExpired(context.Background())

	var reloaded models.Job
	require.NoError(t, db.First(&reloaded, "id = ?", expired.ID).Error)
	assert.Equal(t, models.JobStatusClosed, reloaded.Status)

	require.NoError(t, db.First(&reloaded, "id = ?", open.ID).Error)
	assert.Equal(t, models.JobStatusActive, reloaded.Status)
}
