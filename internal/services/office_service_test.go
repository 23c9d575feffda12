package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/storage"
	"jobportal_backend/pkg/apperrors"
)

func newOffices(t *testing.T) (*testEnv, OfficeService, *storage.LocalStorage) {
	t.Helper()
	env := newTestEnv(t)
	uploads, store := newUploads(t, nil, nil)
	return env, NewOfficeService(repositories.NewLookupRepository[models.Office](), uploads), store
}

func headquarters(t *testing.T, env *testEnv) []string {
	t.Helper()
	var ids []string
	require.NoError(t, env.db.Model(&models.Office{}).Where("is_headquarters = ?", true).Pluck("id", &ids).Error)
	return ids
}

func TestOffices_SlugCRUD(t *testing.T) {
	env, svc, _ := newOffices(t)

	office, err := svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "  Almaty Office ", City: "Almaty"})
	require.NoError(t, err)
	assert.Equal(t, "almaty-office", office.Slug)
	assert.Equal(t, "Almaty Office", office.Name)

	got, err := svc.GetOffice(env.db, "almaty-office")
	require.NoError(t, err)
	assert.Equal(t, office.ID, got.ID)

	_, err = svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "Almaty office"})
	appErr := requireCode(t, err, apperrors.CodeSlugTaken)
	assert.Equal(t, map[string]string{"slug": "almaty-office"}, appErr.Details)

	_, err = svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "!!!"})
	requireCode(t, err, apperrors.CodeValidationFailed)

	other, err := svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "Astana Office"})
	require.NoError(t, err)

	// переименование меняет slug, старый больше не находится
	updated, err := svc.UpdateOffice(env.db, office.ID, &dto.OfficeRequest{Name: "Almaty Hub", City: "Almaty"})
	require.NoError(t, err)
	assert.Equal(t, "almaty-hub", updated.Slug)
	_, err = svc.GetOffice(env.db, "almaty-office")
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = svc.UpdateOffice(env.db, other.ID, &dto.OfficeRequest{Name: "Almaty Hub"})
	requireCode(t, err, apperrors.CodeSlugTaken)

	_, err = svc.UpdateOffice(env.db, "00000000-0000-0000-0000-000000000000", &dto.OfficeRequest{Name: "Nowhere"})
	requireCode(t, err, apperrors.CodeNotFound)

	page, err := svc.ListOffices(env.db, &dto.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	require.NoError(t, svc.DeleteOffice(context.Background(), env.db, office.ID))
	requireCode(t, svc.DeleteOffice(context.Background(), env.db, office.ID), apperrors.CodeNotFound)

	// slug удаленного офиса снова свободен
	_, err = svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "Almaty Hub"})
	require.NoError(t, err)
}

func TestOffices_SingleHeadquarters(t *testing.T) {
	env, svc, _ := newOffices(t)

	first, err := svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "Head Office", IsHeadquarters: true})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, headquarters(t, env))

	branch, err := svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "Branch"})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, headquarters(t, env))

	second, err := svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "New Head Office", IsHeadquarters: true})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, headquarters(t, env))

	_, err = svc.UpdateOffice(env.db, branch.ID, &dto.OfficeRequest{Name: "Branch", IsHeadquarters: true})
	require.NoError(t, err)
	assert.Equal(t, []string{branch.ID}, headquarters(t, env))

	// снятие флага не назначает другой офис
	_, err = svc.UpdateOffice(env.db, branch.ID, &dto.OfficeRequest{Name: "Branch"})
	require.NoError(t, err)
	assert.Empty(t, headquarters(t, env))

	// неудачное создание не трогает текущую штаб-квартиру
	_, err = svc.UpdateOffice(env.db, first.ID, &dto.OfficeRequest{Name: "Head Office", IsHeadquarters: true})
	require.NoError(t, err)
	_, err = svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "Branch", IsHeadquarters: true})
	requireCode(t, err, apperrors.CodeSlugTaken)
	assert.Equal(t, []string{first.ID}, headquarters(t, env))
}

func TestOffices_UploadImageReplacesOld(t *testing.T) {
	env, svc, store := newOffices(t)
	ctx := context.Background()

	office, err := svc.CreateOffice(env.db, &dto.OfficeRequest{Name: "Gallery"})
	require.NoError(t, err)

	first, err := svc.UploadImage(ctx, env.db, office.ID, formFile(t, "front.png", pngData(t, 8, 8)))
	require.NoError(t, err)
	require.NotEmpty(t, first.ImageURL)
	firstURL := first.ImageURL

	second, err := svc.UploadImage(ctx, env.db, office.ID, formFile(t, "back.png", pngData(t, 16, 8)))
	require.NoError(t, err)
	assert.NotEqual(t, firstURL, second.ImageURL)

	oldKey, ok := store.Key(firstURL)
	require.True(t, ok)
	exists, err := store.Exists(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, exists, "previous image is removed")

	stored, err := svc.GetOffice(env.db, "gallery")
	require.NoError(t, err)
	assert.Equal(t, second.ImageURL, stored.ImageURL)

	_, err = svc.UploadImage(ctx, env.db, office.ID, formFile(t, "doc.pdf", []byte(pdfBody)))
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = svc.UploadImage(ctx, env.db, "00000000-0000-0000-0000-000000000000", formFile(t, "x.png", pngData(t, 2, 2)))
	requireCode(t, err, apperrors.CodeNotFound)
}
