package services

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobportal_backend/internal/events"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/apperrors"
)

// ctxOf достает context запроса, привязанный DBMiddleware через db.WithContext
func ctxOf(db *gorm.DB) context.Context {
	if db != nil && db.Statement != nil && db.Statement.Context != nil {
		return db.Statement.Context
	}
	return context.Background()
}

// publishEvent отправляет доменное событие. Ошибка брокера только логируется.
func publishEvent(ctx context.Context, publisher events.Publisher, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.CtxWithError(ctx, "failed to publish event", err, "event", event.Type, "entity_id", event.EntityID)
	}
}

func jsonData(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// notFoundOr переводит sentinel "не найдено" репозитория в 404, остальное в 500
func notFoundOr(err error, sentinel error, resource string) error {
	if errors.Is(err, sentinel) {
		return apperrors.NotFound(resource)
	}
	return apperrors.InternalError(err)
}

func pagination(page, limit int) repositories.Pagination {
	return repositories.NewPagination(page, limit)
}
