package dto

import (
	"time"

	"jobportal_backend/internal/models"
)

type SessionListQuery struct {
	ListQuery
	UserID   string `form:"userId" validate:"omitempty,uuid"`
	OpenOnly bool   `form:"openOnly"`
}

type ViolationListQuery struct {
	ListQuery
	Type   models.ViolationType `form:"type" validate:"omitempty,is-violation-type"`
	UserID string               `form:"userId" validate:"omitempty,uuid"`
}

// OnlineUser - пользователь с открытым сокетом
type OnlineUser struct {
	UserID      string                `json:"userId"`
	Name        string                `json:"name,omitempty"`
	Role        models.UserRole       `json:"role,omitempty"`
	Status      models.PresenceStatus `json:"status"`
	Since       time.Time             `json:"since"`
	Connections int64                 `json:"connections"`
}

// PresenceChange - результат обработки события сокета
type PresenceChange struct {
	UserID  string                `json:"userId"`
	Status  models.PresenceStatus `json:"status"`
	At      time.Time             `json:"at"`
	Changed bool                  `json:"-"`
}
