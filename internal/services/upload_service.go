package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"jobportal_backend/internal/config"
	"jobportal_backend/internal/imageprocessor"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/storage"
	"jobportal_backend/pkg/apperrors"
)

// Назначения загрузок (ключи config.Policies)
const (
	UploadResume     = "resume"
	UploadAvatar     = "avatar"
	UploadAttachment = "attachment"
	UploadOffice     = "office"
)

// Word-документы по содержимому выглядят как zip/ole, тип берем из расширения
var documentExtensions = map[string]string{
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type UploadService interface {
	// Upload проверяет и сохраняет файл. Для изображений с политикой Image
	// дополнительно сохраняется миниатюра.
	Upload(ctx context.Context, purpose string, file *multipart.FileHeader) (*dto.UploadResult, error)
	// Remove удаляет файл по публичному URL. Чужие URL игнорируются.
	Remove(ctx context.Context, url string)
}

type UploadServiceImpl struct {
	storage   storage.Storage
	policies  map[string]config.UploadPolicy
	processor *imageprocessor.Processor
}

func NewUploadService(store storage.Storage, policies map[string]config.UploadPolicy, processor *imageprocessor.Processor) UploadService {
	return &UploadServiceImpl{
		storage:   store,
		policies:  policies,
		processor: processor,
	}
}

func (s *UploadServiceImpl) Upload(ctx context.Context, purpose string, file *multipart.FileHeader) (*dto.UploadResult, error) {
	policy, ok := s.policies[purpose]
	if !ok {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown upload type: %s", purpose))
	}
	if file == nil {
		return nil, apperrors.NewBadRequestError("file is required")
	}
	if policy.MaxSize > 0 && file.Size > policy.MaxSize {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"maxSize": policy.MaxSize})
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("cannot read uploaded file")
	}
	defer src.Close()

	// Header.Size приходит от клиента, поэтому читаем не больше лимита + 1 байт
	reader := io.Reader(src)
	if policy.MaxSize > 0 {
		reader = io.LimitReader(src, policy.MaxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewBadRequestError("file is empty")
	}
	if policy.MaxSize > 0 && int64(len(data)) > policy.MaxSize {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"maxSize": policy.MaxSize})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := detectContentType(data, ext)
	if !contains(policy.AllowedTypes, contentType) {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
			"contentType": contentType,
			"allowed":     policy.AllowedTypes,
		})
	}
	// расширение имени клиента не сохраняется: по нему файл потом отдается
	ext = extensionFor(contentType)
	if ext == "" {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
			"contentType": contentType,
			"allowed":     policy.AllowedTypes,
		})
	}

	name := uuid.NewString()
	key := path.Join(policy.Folder, name+ext)
	if err := s.storage.Save(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "upload", "Failed to store file", http.StatusBadGateway)
	}

	result := &dto.UploadResult{
		Key:         key,
		URL:         s.storage.URL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	if policy.Image && s.processor != nil {
		thumb, thumbType, thumbExt, err := s.processor.Thumbnail(data)
		if err != nil {
			_ = s.storage.Delete(ctx, key)
			return nil, apperrors.ErrInvalidFileType.WithMessage("Image could not be decoded")
		}
		thumbKey := path.Join(policy.Folder, "thumbs", name+thumbExt)
		if err := s.storage.Save(ctx, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), thumbType); err != nil {
			logger.CtxWithError(ctx, "failed to store thumbnail", err, "key", thumbKey)
		} else {
			result.ThumbnailURL = s.storage.URL(thumbKey)
		}
	}

	logger.CtxInfo(ctx, "file uploaded", "purpose", purpose, "key", key, "size", result.Size, "content_type", contentType)
	return result, nil
}

func (s *UploadServiceImpl) Remove(ctx context.Context, url string) {
	key, ok := s.storage.Key(url)
	if !ok {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "failed to delete stored file", err, "key", key)
	}
}

func detectContentType(data []byte, ext string) string {
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	switch contentType {
	case "application/zip", "application/octet-stream", "application/x-ole-storage":
		if t, ok := documentExtensions[ext]; ok {
			return t
		}
	}
	return contentType
}

func extensionFor(contentType string) string {
	for ext, t := range documentExtensions {
		if t == contentType {
			return ext
		}
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
