package email

import "time"

// Attachment представляет вложение в email
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Email представляет структуру email сообщения
type Email struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}

// TemplateData представляет данные для шаблонов писем
type TemplateData map[string]interface{}

// SMTPConfig содержит конфигурацию SMTP сервера
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

// Имена встроенных шаблонов
const (
	TemplateWelcome           = "welcome"
	TemplateNewApplication    = "new_application"
	TemplateApplicationStatus = "application_status"
	TemplateSubscriberWelcome = "subscriber_welcome"
	TemplateJobAlert          = "job_alert"
)
