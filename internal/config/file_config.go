package config

// UploadPolicy описывает ограничения загрузки для одной папки хранилища.
type UploadPolicy struct {
	Folder       string
	MaxSize      int64
	AllowedTypes []string
	Image        bool // генерировать миниатюру
}

var (
	imageTypes    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	documentTypes = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)

// Policies возвращает политики загрузки по назначению файла.
func (c *Config) Policies() map[string]UploadPolicy {
	return map[string]UploadPolicy{
		"resume": {
			Folder:       "resumes",
			MaxSize:      c.Upload.MaxResumeSize,
			AllowedTypes: documentTypes,
		},
		"avatar": {
			Folder:       "avatars",
			MaxSize:      c.Upload.MaxSize,
			AllowedTypes: imageTypes,
			Image:        true,
		},
		"attachment": {
			Folder:       "attachments",
			MaxSize:      c.Upload.MaxSize,
			AllowedTypes: append(append([]string{}, documentTypes...), imageTypes...),
		},
		"office": {
			Folder:       "offices",
			MaxSize:      c.Upload.MaxSize,
			AllowedTypes: imageTypes,
			Image:        true,
		},
	}
}
