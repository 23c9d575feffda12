package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrSlugTaken      = errors.New("slug already taken")
	ErrDuplicate      = errors.New("duplicate record")
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination - page/limit из query-строки
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination нормализует значения: page >= 1, 1 <= limit <= MaxLimit
func NewPagination(page, limit int) Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Scope применяет LIMIT/OFFSET
func (p Pagination) Scope(db *gorm.DB) *gorm.DB {
	if p.Limit <= 0 {
		p = NewPagination(p.Page, p.Limit)
	}
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// likePattern строит шаблон для "LOWER(col) LIKE ?" (ILIKE есть только в Postgres)
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func translateNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// IsUniqueViolation распознает нарушение уникального индекса на всех поддерживаемых диалектах
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
