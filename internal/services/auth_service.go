package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/events"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/metrics"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest, client dto.ClientInfo) (*dto.AuthResponse, error)
	RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	// SeedAdmin создает первого администратора, если админов еще нет
	SeedAdmin(db *gorm.DB, name, email, password string) (bool, error)
	// CleanupExpiredTokens удаляет просроченные refresh-токены (воркер)
	CleanupExpiredTokens(db *gorm.DB, now time.Time) (int64, error)
	// CheckAccount - владелец access-токена существует и не заблокирован
	CheckAccount(db *gorm.DB, userID string) error
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.TokenManager
	refreshTTL       time.Duration
	security         SecurityService
	mailer           *email.Mailer
	publisher        events.Publisher
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
	security SecurityService,
	mailer *email.Mailer,
	publisher events.Publisher,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		refreshTTL:       refreshTTL,
		security:         security,
		mailer:           mailer,
		publisher:        publisher,
	}
}

// Register - регистрация соискателя или работодателя
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}
	if err := auth.ValidateSelfRegistrationRole(string(req.Role)); err != nil {
		return nil, apperrors.ErrInvalidUserRole
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	ctx := ctxOf(db)
	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	s.mailer.Enqueue([]string{user.Email}, "Welcome to the job portal", email.TemplateWelcome, email.TemplateData{
		"Name": user.Name,
		"Role": string(user.Role),
	})
	publishEvent(ctx, s.publisher, events.New(events.UserRegistered, user.ID, user.ID, map[string]interface{}{
		"role": user.Role,
	}))

	return dto.NewUserResponse(user), nil
}

// Login - аутентификация по email и паролю
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest, client dto.ClientInfo) (*dto.AuthResponse, error) {
	ctx := ctxOf(db)

	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.failedLogin(db, "", client, "unknown email: "+normalizeEmail(req.Email))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.failedLogin(db, user.ID, client, "wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := checkUserStatus(user); err != nil {
		metrics.LoginAttempts.WithLabelValues("blocked").Inc()
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		logger.CtxWithError(ctx, "failed to update last login", err, "user_id", user.ID)
	}
	user.LastLoginAt = &now

	resp, err := s.issueTokens(db, user)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return resp, nil
}

func (s *AuthServiceImpl) failedLogin(db *gorm.DB, userID string, client dto.ClientInfo, details string) {
	metrics.LoginAttempts.WithLabelValues("failed").Inc()
	if s.security != nil {
		s.security.RecordViolation(ctxOf(db), models.ViolationFailedLogin, userID, client, details)
	}
}

// RefreshToken - ротация refresh токена: старый удаляется, выдается новая пара
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	stored, err := s.refreshTokenRepo.FindByToken(tx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.Delete(tx, stored.Token); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if stored.Expired(time.Now().UTC()) {
		// удаление просроченного токена фиксируем, но в доступе отказываем
		if err := tx.Commit().Error; err != nil {
			return nil, apperrors.InternalError(err)
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(tx, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	if err := s.refreshTokenRepo.Delete(db, refreshToken); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) CleanupExpiredTokens(db *gorm.DB, now time.Time) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(db, now)
}

func (s *AuthServiceImpl) SeedAdmin(db *gorm.DB, name, emailAddr, password string) (bool, error) {
	exists, err := s.userRepo.AdminExists(db)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := &models.User{
		Name:         name,
		Email:        normalizeEmail(emailAddr),
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(db, admin); err != nil {
		return false, err
	}
	return true, nil
}

// issueTokens выдает access JWT и сохраняет новый refresh токен
func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	raw, err := auth.RandomToken(32)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     raw,
		ExpiresAt: time.Now().UTC().Add(s.refreshTTL),
	}
	if err := s.refreshTokenRepo.Create(db, refresh); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) CheckAccount(db *gorm.DB, userID string) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	return checkUserStatus(user)
}

func checkUserStatus(user *models.User) error {
	switch user.Status {
	case models.UserStatusSuspended:
		return apperrors.ErrUserSuspended
	case models.UserStatusBanned:
		return apperrors.ErrUserBanned
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
