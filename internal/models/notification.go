package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationNewApplication       = "new_application"
	NotificationApplicationStatus    = "application_status"
	NotificationApplicationWithdrawn = "application_withdrawn"
	NotificationJobClosed            = "job_closed"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"type:varchar(36);not null;index" json:"userId"`
	Type    string         `gorm:"size:50;not null" json:"type"`
	Title   string         `gorm:"not null" json:"title"`
	Message string         `gorm:"type:text" json:"message"`
	Data    datatypes.JSON `json:"data,omitempty"` // {"jobId": "...", "applicationId": "..."}
	IsRead  bool           `gorm:"index" json:"isRead"`
	ReadAt  *time.Time     `json:"readAt,omitempty"`
}
