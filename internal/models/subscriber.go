package models

import "time"

type Subscriber struct {
	BaseModel
	Email            string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name             string     `gorm:"size:120" json:"name,omitempty"`
	IsActive         bool       `gorm:"index" json:"isActive"`
	UnsubscribeToken string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	UnsubscribedAt   *time.Time `json:"unsubscribedAt,omitempty"`
}
