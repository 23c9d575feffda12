package services

import (
	"time"

	"gorm.io/gorm"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type NotificationService interface {
	// Notify сохраняет уведомление и отправляет его в сокет, если получатель онлайн
	Notify(db *gorm.DB, userID, notificationType, title, message string, data map[string]interface{}) (*models.Notification, error)

	GetUserNotifications(db *gorm.DB, userID string, query *dto.NotificationListQuery) (*dto.Page[models.Notification], error)
	GetUnreadCount(db *gorm.DB, userID string) (int64, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
	DeleteNotification(db *gorm.DB, userID, notificationID string) error
	CleanOldNotifications(db *gorm.DB, olderThan time.Duration) (int64, error)
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
	notifier         RealtimeNotifier
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, notifier RealtimeNotifier) NotificationService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		notifier:         notifier,
	}
}

func (s *NotificationServiceImpl) Notify(db *gorm.DB, userID, notificationType, title, message string, data map[string]interface{}) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Data:    jsonData(data),
	}
	if err := s.notificationRepo.Create(db, n); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if s.notifier.SendToUser(userID, SocketEventNotification, n) {
		logger.CtxDebug(ctxOf(db), "notification pushed", "user_id", userID, "type", notificationType)
	}
	return n, nil
}

func (s *NotificationServiceImpl) GetUserNotifications(db *gorm.DB, userID string, query *dto.NotificationListQuery) (*dto.Page[models.Notification], error) {
	p := pagination(query.Page, query.Limit)
	items, total, err := s.notificationRepo.FindUserNotifications(db, userID, query.UnreadOnly, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(items, total, p.Page, p.Limit), nil
}

func (s *NotificationServiceImpl) GetUnreadCount(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *NotificationServiceImpl) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(db, userID, notificationID, time.Now().UTC()); err != nil {
		return notFoundOr(err, repositories.ErrNotificationNotFound, "notification")
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	n, err := s.notificationRepo.MarkAllAsRead(db, userID, time.Now().UTC())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return n, nil
}

func (s *NotificationServiceImpl) DeleteNotification(db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.Delete(db, userID, notificationID); err != nil {
		return notFoundOr(err, repositories.ErrNotificationNotFound, "notification")
	}
	return nil
}

func (s *NotificationServiceImpl) CleanOldNotifications(db *gorm.DB, olderThan time.Duration) (int64, error) {
	return s.notificationRepo.DeleteReadOlderThan(db, time.Now().UTC().Add(-olderThan))
}
