package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/presence"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
)

func TestDashboard_Aggregates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userRepo := repositories.NewUserRepository()
	subscriberRepo := repositories.NewSubscriberRepository()
	activity := NewActivityService(repositories.NewSessionRepository(), userRepo, presence.NewMemoryStore())
	dashboard := NewDashboardService(repositories.NewJobRepository(), repositories.NewApplicationRepository(),
		userRepo, subscriberRepo, activity)

	env.user(t, models.UserRoleAdmin)
	acme := env.user(t, models.UserRoleEmployer)
	globex := env.user(t, models.UserRoleEmployer)
	alice := env.user(t, models.UserRoleApplicant)
	bob := env.user(t, models.UserRoleApplicant)

	backend := env.activeJob(t, acme, "Backend Engineer")
	frontend := env.activeJob(t, acme, "Frontend Engineer")
	_, err := env.jobs.CreateJob(env.db, acme.ID, string(acme.Role), jobRequest("Future Role"))
	require.NoError(t, err)
	ops := env.activeJob(t, globex, "Ops Engineer")

	require.NoError(t, env.db.Model(&models.Job{}).Where("id = ?", backend.ID).Update("views", 7).Error)
	require.NoError(t, env.db.Model(&models.Job{}).Where("id = ?", frontend.ID).Update("views", 3).Error)
	require.NoError(t, env.db.Model(&models.Job{}).Where("id = ?", ops.ID).Update("views", 100).Error)

	apply := func(job *models.Job, applicant *models.User) {
		_, err := env.applications.Apply(ctx, env.db, job.ID, applicant.ID, string(applicant.Role),
			&dto.ApplyRequest{Resume: pdfFile(t, "resume", "cv.pdf")})
		require.NoError(t, err)
	}
	apply(backend, alice)
	apply(backend, bob)
	apply(frontend, alice)
	apply(ops, bob)

	subscribers := NewSubscriberService(subscriberRepo, nil, nil)
	_, err = subscribers.Subscribe(env.db, &dto.SubscribeRequest{Email: "one@portal.test"})
	require.NoError(t, err)
	gone, err := subscribers.Subscribe(env.db, &dto.SubscribeRequest{Email: "two@portal.test"})
	require.NoError(t, err)
	require.NoError(t, subscribers.Unsubscribe(env.db, gone.UnsubscribeToken))

	_, _, err = activity.Connect(env.db, alice.ID, dto.ClientInfo{})
	require.NoError(t, err)
	_, _, err = activity.Connect(env.db, alice.ID, dto.ClientInfo{})
	require.NoError(t, err)

	t.Run("employer sees only own jobs", func(t *testing.T) {
		stats, err := dashboard.EmployerStats(env.db, acme.ID)
		require.NoError(t, err)

		assert.Equal(t, map[string]int64{
			string(models.JobStatusActive): 2,
			string(models.JobStatusDraft):  1,
		}, stats.JobsByStatus)
		assert.EqualValues(t, 3, stats.TotalJobs)
		assert.Equal(t, map[string]int64{string(models.ApplicationStatusPending): 3}, stats.ApplicationsByStatus)
		assert.EqualValues(t, 3, stats.TotalApplications)
		assert.EqualValues(t, 10, stats.TotalViews)
	})

	t.Run("employer without jobs", func(t *testing.T) {
		newcomer := env.user(t, models.UserRoleEmployer)
		stats, err := dashboard.EmployerStats(env.db, newcomer.ID)
		require.NoError(t, err)
		assert.Empty(t, stats.JobsByStatus)
		assert.Zero(t, stats.TotalJobs)
		assert.Zero(t, stats.TotalApplications)
		assert.Zero(t, stats.TotalViews)
	})

	t.Run("admin totals", func(t *testing.T) {
		stats, err := dashboard.AdminStats(env.db)
		require.NoError(t, err)

		assert.EqualValues(t, 1, stats.UsersByRole[string(models.UserRoleAdmin)])
		assert.EqualValues(t, 3, stats.UsersByRole[string(models.UserRoleEmployer)], "includes the newcomer")
		assert.EqualValues(t, 2, stats.UsersByRole[string(models.UserRoleApplicant)])
		assert.EqualValues(t, 3, stats.JobsByStatus[string(models.JobStatusActive)])
		assert.EqualValues(t, 4, stats.TotalApplications)
		assert.EqualValues(t, 2, stats.Subscribers)
		assert.EqualValues(t, 1, stats.ActiveSubscribers)
		assert.EqualValues(t, 1, stats.OnlineUsers, "two tabs of one user")
	})
}
