package repositories

import (
	"errors"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSubscriberNotFound = errors.New("subscriber not found")

type SubscriberRepository interface {
	Create(db *gorm.DB, s *models.Subscriber) error
	FindByEmail(db *gorm.DB, email string) (*models.Subscriber, error)
	FindByToken(db *gorm.DB, token string) (*models.Subscriber, error)
	Update(db *gorm.DB, s *models.Subscriber) error
	List(db *gorm.DB, active *bool, p Pagination) ([]models.Subscriber, int64, error)
	ForEachActive(db *gorm.DB, batchSize int, fn func(batch []models.Subscriber) error) error
	Delete(db *gorm.DB, id string) error
	Count(db *gorm.DB, active *bool) (int64, error)
}

type SubscriberRepositoryImpl struct{}

func NewSubscriberRepository() SubscriberRepository {
	return &SubscriberRepositoryImpl{}
}

func (r *SubscriberRepositoryImpl) Create(db *gorm.DB, s *models.Subscriber) error {
	if err := db.Create(s).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *SubscriberRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := db.First(&s, "email = ?", email).Error; err != nil {
		return nil, translateNotFound(err, ErrSubscriberNotFound)
	}
	return &s, nil
}

func (r *SubscriberRepositoryImpl) FindByToken(db *gorm.DB, token string) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := db.First(&s, "unsubscribe_token = ?", token).Error; err != nil {
		return nil, translateNotFound(err, ErrSubscriberNotFound)
	}
	return &s, nil
}

func (r *SubscriberRepositoryImpl) Update(db *gorm.DB, s *models.Subscriber) error {
	return db.Save(s).Error
}

func (r *SubscriberRepositoryImpl) List(db *gorm.DB, active *bool, p Pagination) ([]models.Subscriber, int64, error) {
	q := db.Model(&models.Subscriber{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Subscriber, 0)
	err := q.Order("created_at DESC").Scopes(p.Scope).Find(&items).Error
	return items, total, err
}

// ForEachActive обходит активных подписчиков пачками
func (r *SubscriberRepositoryImpl) ForEachActive(db *gorm.DB, batchSize int, fn func(batch []models.Subscriber) error) error {
	var batch []models.Subscriber
	return db.Where("is_active = ?", true).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

func (r *SubscriberRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Subscriber{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func (r *SubscriberRepositoryImpl) Count(db *gorm.DB, active *bool) (int64, error) {
	var count int64
	q := db.Model(&models.Subscriber{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	err := q.Count(&count).Error
	return count, err
}
