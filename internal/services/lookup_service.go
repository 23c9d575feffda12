package services

import (
	"errors"

	"gorm.io/gorm"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/utils"
	"jobportal_backend/pkg/apperrors"
)

// LookupEntity - справочник, который можно создать из dto.LookupRequest
type LookupEntity[T any] interface {
	repositories.SluggablePtr[T]
	SetName(name string)
	SetDescription(description string)
}

// LookupHooks - особенности конкретного справочника
type LookupHooks[T any, P LookupEntity[T]] struct {
	// Apply переносит дополнительные поля запроса и проверяет их
	Apply func(db *gorm.DB, entity P, req *dto.LookupRequest) error
	// BeforeDelete выполняется в транзакции удаления
	BeforeDelete func(db *gorm.DB, id string) error
}

// LookupService - CRUD справочника со slug, один на все справочники
type LookupService[T any, P LookupEntity[T]] interface {
	Create(db *gorm.DB, req *dto.LookupRequest) (P, error)
	GetBySlug(db *gorm.DB, slug string) (P, error)
	GetByID(db *gorm.DB, id string) (P, error)
	List(db *gorm.DB, query *dto.ListQuery, conditions map[string]interface{}) (*dto.Page[T], error)
	Update(db *gorm.DB, id string, req *dto.LookupRequest) (P, error)
	Delete(db *gorm.DB, id string) error
	Domain() string
}

type LookupServiceImpl[T any, P LookupEntity[T]] struct {
	repo   repositories.LookupRepository[T, P]
	domain string
	hooks  LookupHooks[T, P]
}

func NewLookupService[T any, P LookupEntity[T]](
	domain string,
	repo repositories.LookupRepository[T, P],
	hooks LookupHooks[T, P],
) LookupService[T, P] {
	return &LookupServiceImpl[T, P]{repo: repo, domain: domain, hooks: hooks}
}

func (s *LookupServiceImpl[T, P]) Domain() string {
	return s.domain
}

func (s *LookupServiceImpl[T, P]) apply(db *gorm.DB, entity P, req *dto.LookupRequest) error {
	slug := utils.Slugify(req.Name)
	if slug == "" {
		return apperrors.ValidationError(map[string]string{"name": "name must contain letters or digits"})
	}
	entity.SetName(req.Name)
	entity.SetDescription(req.Description)
	entity.SetSlug(slug)

	if s.hooks.Apply != nil {
		return s.hooks.Apply(db, entity, req)
	}
	return nil
}

func (s *LookupServiceImpl[T, P]) mapError(err error, slug string) error {
	switch {
	case errors.Is(err, repositories.ErrSlugTaken):
		return apperrors.ErrSlugTaken(s.domain, slug)
	case errors.Is(err, repositories.ErrRecordNotFound):
		return apperrors.NotFound(s.domain)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.InternalError(err)
}

func (s *LookupServiceImpl[T, P]) Create(db *gorm.DB, req *dto.LookupRequest) (P, error) {
	entity := P(new(T))
	if err := s.apply(db, entity, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(db, entity); err != nil {
		return nil, s.mapError(err, entity.GetSlug())
	}

	logger.CtxInfo(ctxOf(db), "lookup created", "domain", s.domain, "id", entity.GetID(), "slug", entity.GetSlug())
	return s.GetByID(db, entity.GetID())
}

func (s *LookupServiceImpl[T, P]) GetBySlug(db *gorm.DB, slug string) (P, error) {
	entity, err := s.repo.FindBySlug(db, slug)
	if err != nil {
		return nil, s.mapError(err, slug)
	}
	return entity, nil
}

func (s *LookupServiceImpl[T, P]) GetByID(db *gorm.DB, id string) (P, error) {
	entity, err := s.repo.FindByID(db, id)
	if err != nil {
		return nil, s.mapError(err, "")
	}
	return entity, nil
}

func (s *LookupServiceImpl[T, P]) List(db *gorm.DB, query *dto.ListQuery, conditions map[string]interface{}) (*dto.Page[T], error) {
	p := pagination(query.Page, query.Limit)
	items, total, err := s.repo.List(db, repositories.LookupFilter{
		Search:     query.Search,
		Conditions: conditions,
		Pagination: p,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(items, total, p.Page, p.Limit), nil
}

func (s *LookupServiceImpl[T, P]) Update(db *gorm.DB, id string, req *dto.LookupRequest) (P, error) {
	entity, err := s.repo.FindByID(db, id)
	if err != nil {
		return nil, s.mapError(err, "")
	}
	if err := s.apply(db, entity, req); err != nil {
		return nil, err
	}

	// slug пересчитывается из нового имени и проверяется среди остальных записей
	if err := s.repo.Update(db, entity); err != nil {
		return nil, s.mapError(err, entity.GetSlug())
	}
	return s.GetByID(db, id)
}

func (s *LookupServiceImpl[T, P]) Delete(db *gorm.DB, id string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	exists, err := s.repo.Exists(tx, id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !exists {
		return apperrors.NotFound(s.domain)
	}

	if s.hooks.BeforeDelete != nil {
		if err := s.hooks.BeforeDelete(tx, id); err != nil {
			return s.mapError(err, "")
		}
	}

	if err := s.repo.Delete(tx, id); err != nil {
		return s.mapError(err, "")
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctxOf(db), "lookup deleted", "domain", s.domain, "id", id)
	return nil
}
