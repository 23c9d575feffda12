package services

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/storage"
	"jobportal_backend/internal/testutil"
	"jobportal_backend/pkg/apperrors"
)

type sentEvent struct {
	userID string
	event  string
}

// recordingNotifier запоминает отправленные события сокета
type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) SendToUser(userID, event string, _ interface{}) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{userID: userID, event: event})
	return true
}

func (n *recordingNotifier) sent(userID, event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.userID == userID && e.event == event {
			count++
		}
	}
	return count
}

type testEnv struct {
	db       *gorm.DB
	notifier *recordingNotifier
	tokens   *auth.TokenManager

	auth         AuthService
	jobs         JobService
	applications ApplicationService
	notices      NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir(), BaseURL: "/uploads"})
	require.NoError(t, err)

	cfg := config.Defaults()
	uploads := NewUploadService(store, cfg.Policies(), nil)
	notifier := &recordingNotifier{}

	userRepo := repositories.NewUserRepository()
	jobRepo := repositories.NewJobRepository()
	notices := NewNotificationService(repositories.NewNotificationRepository(), notifier)
	tokens := auth.NewTokenManager("service-test-secret-service-test-secret", time.Hour)

	return &testEnv{
		db:       db,
		notifier: notifier,
		tokens:   tokens,
		auth: NewAuthService(userRepo, repositories.NewRefreshTokenRepository(), tokens, 24*time.Hour,
			NewSecurityService(repositories.NewSQLViolationRepository(db)), nil, nil),
		jobs: NewJobService(jobRepo, repositories.NewSubscriberRepository(), uploads, nil, nil),
		applications: NewApplicationService(repositories.NewApplicationRepository(), jobRepo, userRepo,
			notices, uploads, notifier, nil, nil),
		notices: notices,
	}
}

var userSeq int

func (e *testEnv) user(t *testing.T, role models.UserRole) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		Name:         fmt.Sprintf("%s %d", role, userSeq),
		Email:        fmt.Sprintf("%s-%d@portal.test", role, userSeq),
		PasswordHash: "x",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, repositories.NewUserRepository().Create(e.db, u))
	return u
}

// pdfFile собирает multipart.FileHeader так же, как его разбирает gin
func pdfFile(t *testing.T, field, name string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}
