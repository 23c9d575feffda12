package workers

import (
	"context"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/services"

	"gorm.io/gorm"
)

const (
	notificationRetention = 90 * 24 * time.Hour
	cleanupInterval       = 6 * time.Hour
)

// MaintenanceWorker - зависшие сессии, просроченные токены, старые уведомления
type MaintenanceWorker struct {
	db             *gorm.DB
	activity       services.ActivityService
	auth           services.AuthService
	notifications  services.NotificationService
	sessionTimeout time.Duration
}

func NewMaintenanceWorker(db *gorm.DB, s *services.ServiceContainer, sessionTimeout time.Duration) *MaintenanceWorker {
	return &MaintenanceWorker{
		db:             db,
		activity:       s.ActivityService,
		auth:           s.AuthService,
		notifications:  s.NotificationService,
		sessionTimeout: sessionTimeout,
	}
}

func (w *MaintenanceWorker) Start(ctx context.Context) {
	// сессии проверяем чаще, чем истекает таймаут
	sessionInterval := w.sessionTimeout / 2
	if sessionInterval < time.Minute {
		sessionInterval = time.Minute
	}
	go every(ctx, "stale_sessions", sessionInterval, w.CloseStaleSessions)
	go every(ctx, "cleanup", cleanupInterval, w.Cleanup)
}

func (w *MaintenanceWorker) CloseStaleSessions(ctx context.Context) {
	closed, err := w.activity.CloseStaleSessions(w.db.WithContext(ctx), w.sessionTimeout)
	if err != nil || closed > 0 {
		logger.WorkerLog("stale_sessions", "close", err, "closed", closed)
	}
}

func (w *MaintenanceWorker) Cleanup(ctx context.Context) {
	db := w.db.WithContext(ctx)

	tokens, err := w.auth.CleanupExpiredTokens(db, time.Now().UTC())
	logger.WorkerLog("cleanup", "refresh_tokens", err, "deleted", tokens)

	notifications, err := w.notifications.CleanOldNotifications(db, notificationRetention)
	logger.WorkerLog("cleanup", "notifications", err, "deleted", notifications)
}
