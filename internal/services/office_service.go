package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/utils"
	"jobportal_backend/pkg/apperrors"
)

type OfficeService interface {
	CreateOffice(db *gorm.DB, req *dto.OfficeRequest) (*models.Office, error)
	GetOffice(db *gorm.DB, slug string) (*models.Office, error)
	ListOffices(db *gorm.DB, query *dto.ListQuery) (*dto.Page[models.Office], error)
	UpdateOffice(db *gorm.DB, id string, req *dto.OfficeRequest) (*models.Office, error)
	DeleteOffice(ctx context.Context, db *gorm.DB, id string) error
	UploadImage(ctx context.Context, db *gorm.DB, id string, file *multipart.FileHeader) (*models.Office, error)
}

type OfficeServiceImpl struct {
	officeRepo repositories.LookupRepository[models.Office, *models.Office]
	uploads    UploadService
}

func NewOfficeService(officeRepo repositories.LookupRepository[models.Office, *models.Office], uploads UploadService) OfficeService {
	return &OfficeServiceImpl{officeRepo: officeRepo, uploads: uploads}
}

func applyOffice(o *models.Office, req *dto.OfficeRequest) error {
	slug := utils.Slugify(req.Name)
	if slug == "" {
		return apperrors.ValidationError(map[string]string{"name": "name must contain letters or digits"})
	}
	o.Name = strings.TrimSpace(req.Name)
	o.Slug = slug
	o.Address = req.Address
	o.City = req.City
	o.Phone = req.Phone
	o.Email = req.Email
	o.Description = req.Description
	o.IsHeadquarters = req.IsHeadquarters
	return nil
}

func mapOfficeError(err error, slug string) error {
	switch {
	case errors.Is(err, repositories.ErrSlugTaken):
		return apperrors.ErrSlugTaken("office", slug)
	case errors.Is(err, repositories.ErrRecordNotFound):
		return apperrors.NotFound("office")
	}
	return apperrors.InternalError(err)
}

// clearHeadquarters - штаб-квартира может быть только одна
func clearHeadquarters(tx *gorm.DB, exceptID string) error {
	q := tx.Model(&models.Office{}).Where("is_headquarters = ?", true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_headquarters", false).Error
}

func (s *OfficeServiceImpl) CreateOffice(db *gorm.DB, req *dto.OfficeRequest) (*models.Office, error) {
	office := &models.Office{}
	if err := applyOffice(office, req); err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.officeRepo.Create(tx, office); err != nil {
		return nil, mapOfficeError(err, office.Slug)
	}
	if office.IsHeadquarters {
		if err := clearHeadquarters(tx, office.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return office, nil
}

func (s *OfficeServiceImpl) GetOffice(db *gorm.DB, slug string) (*models.Office, error) {
	office, err := s.officeRepo.FindBySlug(db, slug)
	if err != nil {
		return nil, mapOfficeError(err, slug)
	}
	return office, nil
}

func (s *OfficeServiceImpl) ListOffices(db *gorm.DB, query *dto.ListQuery) (*dto.Page[models.Office], error) {
	p := pagination(query.Page, query.Limit)
	items, total, err := s.officeRepo.List(db, repositories.LookupFilter{Search: query.Search, Pagination: p})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(items, total, p.Page, p.Limit), nil
}

func (s *OfficeServiceImpl) UpdateOffice(db *gorm.DB, id string, req *dto.OfficeRequest) (*models.Office, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	office, err := s.officeRepo.FindByID(tx, id)
	if err != nil {
		return nil, mapOfficeError(err, "")
	}
	if err := applyOffice(office, req); err != nil {
		return nil, err
	}
	if err := s.officeRepo.Update(tx, office); err != nil {
		return nil, mapOfficeError(err, office.Slug)
	}
	if office.IsHeadquarters {
		if err := clearHeadquarters(tx, office.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return office, nil
}

func (s *OfficeServiceImpl) DeleteOffice(ctx context.Context, db *gorm.DB, id string) error {
	office, err := s.officeRepo.FindByID(db, id)
	if err != nil {
		return mapOfficeError(err, "")
	}
	if err := s.officeRepo.Delete(db, id); err != nil {
		return mapOfficeError(err, "")
	}
	s.uploads.Remove(ctx, office.ImageURL)
	s.uploads.Remove(ctx, office.ThumbnailURL)
	return nil
}

func (s *OfficeServiceImpl) UploadImage(ctx context.Context, db *gorm.DB, id string, file *multipart.FileHeader) (*models.Office, error) {
	office, err := s.officeRepo.FindByID(db, id)
	if err != nil {
		return nil, mapOfficeError(err, "")
	}

	result, err := s.uploads.Upload(ctx, UploadOffice, file)
	if err != nil {
		return nil, err
	}

	oldImage, oldThumb := office.ImageURL, office.ThumbnailURL
	office.ImageURL = result.URL
	office.ThumbnailURL = result.ThumbnailURL
	if err := db.Model(office).Updates(map[string]interface{}{
		"image_url":     office.ImageURL,
		"thumbnail_url": office.ThumbnailURL,
	}).Error; err != nil {
		s.uploads.Remove(ctx, result.URL)
		s.uploads.Remove(ctx, result.ThumbnailURL)
		return nil, apperrors.InternalError(err)
	}
	s.uploads.Remove(ctx, oldImage)
	s.uploads.Remove(ctx, oldThumb)
	return office, nil
}
