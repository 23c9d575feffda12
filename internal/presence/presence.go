package presence

import (
	"context"
	"time"

	"jobportal_backend/internal/models"
)

// DefaultTTL - срок жизни записи в общем хранилище без Touch.
// Больше интервала ping сокета, чтобы живое соединение не истекало.
const DefaultTTL = 150 * time.Second

// Entry - состояние присутствия пользователя
type Entry struct {
	UserID      string                `json:"userId"`
	Status      models.PresenceStatus `json:"status"`
	Since       time.Time             `json:"since"`
	Connections int64                 `json:"connections"`
}

// Store хранит, кто сейчас онлайн. У пользователя может быть несколько
// сокетов (вкладок): онлайн он до закрытия последнего.
type Store interface {
	// Connect регистрирует соединение; first=true для первого соединения пользователя
	Connect(ctx context.Context, userID string) (first bool, err error)
	// Disconnect снимает соединение; last=true, если соединений больше нет
	Disconnect(ctx context.Context, userID string) (last bool, err error)
	// SetStatus меняет статус; changed=false, если статус тот же или пользователь офлайн
	SetStatus(ctx context.Context, userID string, status models.PresenceStatus) (changed bool, err error)
	// Touch продлевает запись живого соединения; для офлайн-пользователя ничего не делает
	Touch(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*Entry, bool, error)
	List(ctx context.Context) ([]Entry, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}
