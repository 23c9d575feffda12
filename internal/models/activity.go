package models

import "time"

// SecurityViolation хранится либо в SQL, либо в MongoDB (bson-теги для второго случая).
type SecurityViolation struct {
	ID        string        `gorm:"type:varchar(36);primaryKey" json:"id" bson:"_id"`
	Type      ViolationType `gorm:"type:varchar(30);not null;index" json:"type" bson:"type"`
	UserID    *string       `gorm:"type:varchar(36);index" json:"userId,omitempty" bson:"user_id,omitempty"`
	IP        string        `gorm:"size:64" json:"ip" bson:"ip"`
	UserAgent string        `gorm:"size:255" json:"userAgent,omitempty" bson:"user_agent,omitempty"`
	Path      string        `gorm:"size:255" json:"path,omitempty" bson:"path,omitempty"`
	Details   string        `gorm:"type:text" json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index" json:"createdAt" bson:"created_at"`
}

type ActivitySession struct {
	BaseModel
	UserID          string         `gorm:"type:varchar(36);not null;index" json:"userId"`
	Status          PresenceStatus `gorm:"type:varchar(20);not null" json:"status"`
	IP              string         `gorm:"size:64" json:"ip,omitempty"`
	UserAgent       string         `gorm:"size:255" json:"userAgent,omitempty"`
	StartedAt       time.Time      `gorm:"not null" json:"startedAt"`
	LastSeenAt      time.Time      `gorm:"not null;index" json:"lastSeenAt"`
	EndedAt         *time.Time     `gorm:"index" json:"endedAt,omitempty"`
	DurationSeconds int64          `json:"durationSeconds"`
}

func (s *ActivitySession) End(at time.Time) {
	s.EndedAt = &at
	s.Status = PresenceOffline
	s.DurationSeconds = int64(at.Sub(s.StartedAt).Seconds())
}
