package repositories

import (
	"errors"
	"time"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("activity session not found")

type SessionFilter struct {
	UserID     string
	OpenOnly   bool
	Pagination Pagination
}

type SessionRepository interface {
	Create(db *gorm.DB, s *models.ActivitySession) error
	FindByID(db *gorm.DB, id string) (*models.ActivitySession, error)
	Touch(db *gorm.DB, id, userID string, status models.PresenceStatus, at time.Time) error
	Reopen(db *gorm.DB, id, userID string, status models.PresenceStatus, at time.Time) error
	End(db *gorm.DB, s *models.ActivitySession) error
	FindStale(db *gorm.DB, lastSeenBefore time.Time) ([]models.ActivitySession, error)
	List(db *gorm.DB, filter SessionFilter) ([]models.ActivitySession, int64, error)
}

type SessionRepositoryImpl struct{}

func NewSessionRepository() SessionRepository {
	return &SessionRepositoryImpl{}
}

func (r *SessionRepositoryImpl) Create(db *gorm.DB, s *models.ActivitySession) error {
	return db.Create(s).Error
}

func (r *SessionRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.ActivitySession, error) {
	var s models.ActivitySession
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, ErrSessionNotFound)
	}
	return &s, nil
}

// Touch обновляет только открытые сессии этого пользователя
func (r *SessionRepositoryImpl) Touch(db *gorm.DB, id, userID string, status models.PresenceStatus, at time.Time) error {
	result := db.Model(&models.ActivitySession{}).
		Where("id = ? AND user_id = ? AND ended_at IS NULL", id, userID).
		Updates(map[string]interface{}{"status": status, "last_seen_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Reopen снова открывает сессию, закрытую по таймауту, пока сокет жив
func (r *SessionRepositoryImpl) Reopen(db *gorm.DB, id, userID string, status models.PresenceStatus, at time.Time) error {
	result := db.Model(&models.ActivitySession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"status":           status,
			"last_seen_at":     at,
			"ended_at":         nil,
			"duration_seconds": 0,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepositoryImpl) End(db *gorm.DB, s *models.ActivitySession) error {
	return db.Model(s).Updates(map[string]interface{}{
		"status":           s.Status,
		"ended_at":         s.EndedAt,
		"duration_seconds": s.DurationSeconds,
	}).Error
}

func (r *SessionRepositoryImpl) FindStale(db *gorm.DB, lastSeenBefore time.Time) ([]models.ActivitySession, error) {
	var sessions []models.ActivitySession
	err := db.Where("ended_at IS NULL AND last_seen_at < ?", lastSeenBefore).Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepositoryImpl) List(db *gorm.DB, filter SessionFilter) ([]models.ActivitySession, int64, error) {
	q := db.Model(&models.ActivitySession{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.OpenOnly {
		q = q.Where("ended_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.ActivitySession, 0)
	err := q.Order("started_at DESC").Scopes(filter.Pagination.Scope).Find(&items).Error
	return items, total, err
}
