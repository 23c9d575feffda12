package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type UserService interface {
	GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
	UploadResume(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserResponse, error)
	UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserResponse, error)

	// Admin
	ListUsers(db *gorm.DB, query *dto.UserListQuery) (*dto.Page[*dto.UserResponse], error)
	UpdateUserStatus(db *gorm.DB, adminID, userID string, status models.UserStatus) (*dto.UserResponse, error)
	DeleteUser(db *gorm.DB, adminID, userID string) error
}

type UserServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	uploads          UploadService
}

func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	uploads UploadService,
) UserService {
	return &UserServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		uploads:          uploads,
	}
}

func (s *UserServiceImpl) findUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user")
	}
	return user, nil
}

func (s *UserServiceImpl) GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Headline != nil {
		fields["headline"] = *req.Headline
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(db, userID, fields); err != nil {
			return nil, notFoundOr(err, repositories.ErrUserNotFound, "user")
		}
	}
	return s.GetProfile(db, userID)
}

func (s *UserServiceImpl) ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials.WithMessage("Current password is incorrect")
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.UpdateFields(tx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return apperrors.InternalError(err)
	}
	// после смены пароля все сессии завершаются
	if err := s.refreshTokenRepo.DeleteByUser(tx, userID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserServiceImpl) UploadResume(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.uploads.Upload(ctx, UploadResume, file)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"resume_url": result.URL}); err != nil {
		s.uploads.Remove(ctx, result.URL)
		return nil, apperrors.InternalError(err)
	}
	s.uploads.Remove(ctx, user.ResumeURL)

	user.ResumeURL = result.URL
	logger.CtxInfo(ctx, "resume uploaded", "user_id", userID)
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) UploadAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.uploads.Upload(ctx, UploadAvatar, file)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"avatar_url":   result.URL,
		"avatar_thumb": result.ThumbnailURL,
	}
	if err := s.userRepo.UpdateFields(db, userID, fields); err != nil {
		s.uploads.Remove(ctx, result.URL)
		s.uploads.Remove(ctx, result.ThumbnailURL)
		return nil, apperrors.InternalError(err)
	}
	s.uploads.Remove(ctx, user.AvatarURL)
	s.uploads.Remove(ctx, user.AvatarThumb)

	user.AvatarURL = result.URL
	user.AvatarThumb = result.ThumbnailURL
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB, query *dto.UserListQuery) (*dto.Page[*dto.UserResponse], error) {
	p := pagination(query.Page, query.Limit)
	users, total, err := s.userRepo.FindWithFilter(db, repositories.UserFilter{
		Role:       query.Role,
		Status:     query.Status,
		Search:     query.Search,
		Pagination: p,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return dto.NewPage(items, total, p.Page, p.Limit), nil
}

func (s *UserServiceImpl) UpdateUserStatus(db *gorm.DB, adminID, userID string, status models.UserStatus) (*dto.UserResponse, error) {
	if adminID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}
	if !status.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"status": "invalid user status"})
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.UpdateStatus(tx, userID, status); err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user")
	}
	if status != models.UserStatusActive {
		if err := s.refreshTokenRepo.DeleteByUser(tx, userID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "user status changed", "user_id", userID, "status", status, "admin_id", adminID)
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) DeleteUser(db *gorm.DB, adminID, userID string) error {
	if adminID == userID {
		return apperrors.ErrCannotModifySelf
	}
	if err := s.userRepo.Delete(db, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctxOf(db), "user deleted", "user_id", userID, "admin_id", adminID)
	return nil
}
