package models

import "time"

type User struct {
	BaseModel
	Name         string     `gorm:"size:120;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Phone        string     `gorm:"size:40" json:"phone,omitempty"`
	Role         UserRole   `gorm:"type:varchar(20);not null;index" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ResumeURL    string     `json:"resumeUrl,omitempty"`
	AvatarURL    string     `json:"avatarUrl,omitempty"`
	AvatarThumb  string     `json:"avatarThumbUrl,omitempty"`
	Headline     string     `gorm:"size:255" json:"headline,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	Token     string    `gorm:"size:128;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
