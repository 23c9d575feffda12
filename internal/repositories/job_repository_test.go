package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/testutil"
)

func seedEmployer(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Name: "Acme HR", Email: fmt.Sprintf("hr-%d@acme.test", time.Now().UnixNano()), PasswordHash: "x",
		Role: models.UserRoleEmployer, Status: models.UserStatusActive}
	require.NoError(t, NewUserRepository().Create(db, u))
	return u
}

func floatPtr(v float64) *float64 { return &v }

func TestJobRepository_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewJobRepository()
	sectors := NewLookupRepository[models.Sector]()
	employer := seedEmployer(t, db)

	it := newSector("IT", "it")
	require.NoError(t, sectors.Create(db, it))

	past := time.Now().UTC().Add(-time.Hour)
	jobs := []*models.Job{
		{Title: "Go Developer", Slug: "go-developer", Description: "APIs", CompanyName: "Acme",
			EmploymentType: models.EmploymentFullTime, Status: models.JobStatusActive, SectorID: &it.ID,
			SalaryMin: floatPtr(3000), SalaryMax: floatPtr(5000), Vacancies: 1, PostedByID: employer.ID},
		{Title: "Accountant", Slug: "accountant", Description: "Books", CompanyName: "Acme",
			EmploymentType: models.EmploymentPartTime, Status: models.JobStatusActive, Vacancies: 1, PostedByID: employer.ID},
		{Title: "Draft role", Slug: "draft-role", Description: "Hidden", CompanyName: "Acme",
			EmploymentType: models.EmploymentFullTime, Status: models.JobStatusDraft, Vacancies: 1, PostedByID: employer.ID},
		{Title: "Expired role", Slug: "expired-role", Description: "Late", CompanyName: "Acme",
			EmploymentType: models.EmploymentFullTime, Status: models.JobStatusActive, Deadline: &past, Vacancies: 1, PostedByID: employer.ID},
	}
	for _, j := range jobs {
		require.NoError(t, repo.Create(db, j))
	}

	public := JobFilter{Statuses: []models.JobStatus{models.JobStatusActive}, OpenOnly: true, Pagination: NewPagination(1, 10)}

	items, total, err := repo.List(db, public)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	f := public
	f.Sector = "it"
	items, total, err = repo.List(db, f)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "go-developer", items[0].Slug)
	require.NotNil(t, items[0].Sector)
	assert.Equal(t, "IT", items[0].Sector.Name)

	f = public
	f.Search = "BOOKS"
	_, total, err = repo.List(db, f)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	f = public
	f.SalaryMin = floatPtr(4000)
	items, _, err = repo.List(db, f)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "go-developer", items[0].Slug)

	f = public
	f.EmploymentType = models.EmploymentPartTime
	items, _, err = repo.List(db, f)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "accountant", items[0].Slug)
}

func TestJobRepository_CloseExpired(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewJobRepository()
	employer := seedEmployer(t, db)

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.Create(db, &models.Job{Title: "Old", Slug: "old", Description: "d", Status: models.JobStatusActive,
		EmploymentType: models.EmploymentContract, Deadline: &past, Vacancies: 1, PostedByID: employer.ID}))
	require.NoError(t, repo.Create(db, &models.Job{Title: "New", Slug: "new", Description: "d", Status: models.JobStatusActive,
		EmploymentType: models.EmploymentContract, Deadline: &future, Vacancies: 1, PostedByID: employer.ID}))

	closed, err := repo.CloseExpired(db, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "old", closed[0].Slug)

	old, err := repo.FindBySlug(db, "old")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusClosed, old.Status)

	counts, err := repo.CountByStatus(db, employer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts["closed"])
	assert.EqualValues(t, 1, counts["active"])
}

func TestJobRepository_IncrementViewsAndNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewJobRepository()
	employer := seedEmployer(t, db)

	job := &models.Job{Title: "Viewed", Slug: "viewed", Description: "d", Status: models.JobStatusActive,
		EmploymentType: models.EmploymentFullTime, Vacancies: 1, PostedByID: employer.ID}
	require.NoError(t, repo.Create(db, job))

	require.NoError(t, repo.IncrementViews(db, job.ID))
	require.NoError(t, repo.IncrementViews(db, job.ID))

	views, err := repo.SumViews(db, employer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, views)

	_, err = repo.FindByID(db, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, repo.Delete(db, "missing"), ErrJobNotFound)
}
