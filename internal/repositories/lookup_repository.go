package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sluggable - сущность с именем и уникальным slug
type Sluggable interface {
	GetID() string
	GetName() string
	GetSlug() string
	SetSlug(slug string)
}

// SluggablePtr ограничивает P указателем на T, реализующим Sluggable
type SluggablePtr[T any] interface {
	*T
	Sluggable
}

// LookupFilter - параметры выборки справочника
type LookupFilter struct {
	Search     string
	Conditions map[string]interface{} // например {"province_id": "..."}
	Pagination Pagination
}

// LookupRepository - CRUD для любой сущности со slug.
// Обслуживает все справочники и офисы.
type LookupRepository[T any, P SluggablePtr[T]] interface {
	Create(db *gorm.DB, entity P) error
	FindByID(db *gorm.DB, id string) (P, error)
	FindBySlug(db *gorm.DB, slug string) (P, error)
	SlugExists(db *gorm.DB, slug, excludeID string) (bool, error)
	Exists(db *gorm.DB, id string) (bool, error)
	List(db *gorm.DB, filter LookupFilter) ([]T, int64, error)
	Update(db *gorm.DB, entity P) error
	Delete(db *gorm.DB, id string) error
	Count(db *gorm.DB) (int64, error)
}

type LookupRepositoryImpl[T any, P SluggablePtr[T]] struct {
	preloads []string
}

func NewLookupRepository[T any, P SluggablePtr[T]](preloads ...string) LookupRepository[T, P] {
	return &LookupRepositoryImpl[T, P]{preloads: preloads}
}

func (r *LookupRepositoryImpl[T, P]) withPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range r.preloads {
		db = db.Preload(p)
	}
	return db
}

func (r *LookupRepositoryImpl[T, P]) Create(db *gorm.DB, entity P) error {
	exists, err := r.SlugExists(db, entity.GetSlug(), "")
	if err != nil {
		return err
	}
	if exists {
		return ErrSlugTaken
	}

	if err := db.Create(entity).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *LookupRepositoryImpl[T, P]) FindByID(db *gorm.DB, id string) (P, error) {
	var entity T
	if err := r.withPreloads(db).First(&entity, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, ErrRecordNotFound)
	}
	return P(&entity), nil
}

func (r *LookupRepositoryImpl[T, P]) FindBySlug(db *gorm.DB, slug string) (P, error) {
	var entity T
	if err := r.withPreloads(db).First(&entity, "slug = ?", slug).Error; err != nil {
		return nil, translateNotFound(err, ErrRecordNotFound)
	}
	return P(&entity), nil
}

func (r *LookupRepositoryImpl[T, P]) SlugExists(db *gorm.DB, slug, excludeID string) (bool, error) {
	var count int64
	q := db.Model(new(T)).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LookupRepositoryImpl[T, P]) Exists(db *gorm.DB, id string) (bool, error) {
	var count int64
	if err := db.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LookupRepositoryImpl[T, P]) List(db *gorm.DB, filter LookupFilter) ([]T, int64, error) {
	q := db.Model(new(T))
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	for column, value := range filter.Conditions {
		q = q.Where(column+" = ?", value)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}

	err := r.withPreloads(q).
		Order("name ASC").
		Scopes(filter.Pagination.Scope).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *LookupRepositoryImpl[T, P]) Update(db *gorm.DB, entity P) error {
	exists, err := r.SlugExists(db, entity.GetSlug(), entity.GetID())
	if err != nil {
		return err
	}
	if exists {
		return ErrSlugTaken
	}

	// Omit ассоциаций: Save не должен создавать связанные записи
	if err := db.Omit(clause.Associations).Save(entity).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *LookupRepositoryImpl[T, P]) Delete(db *gorm.DB, id string) error {
	result := db.Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *LookupRepositoryImpl[T, P]) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(new(T)).Count(&count).Error
	return count, err
}

// IsNotFound - удобная проверка для сервисов
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
