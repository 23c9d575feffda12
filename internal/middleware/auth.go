package middleware

import (
	"errors"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
	"jobportal_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccountChecker проверяет, что владелец валидного токена все еще активен
type AccountChecker interface {
	CheckAccount(db *gorm.DB, userID string) error
}

// AuthMiddleware проверяет Bearer-токен и кладет userID/role в контекст.
// Невалидный токен фиксируется как нарушение безопасности.
// Если задан accounts, токен заблокированного или удаленного пользователя
// отклоняется сразу, не дожидаясь истечения. Нужен DBMiddleware перед ним.
func AuthMiddleware(tokens *auth.TokenManager, security services.SecurityService, accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.ExtractBearer(c.GetHeader("Authorization"))
		if raw == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization token required"))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			security.RecordViolation(c.Request.Context(), models.ViolationInvalidToken, "", ClientInfo(c), err.Error())
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			apperrors.HandleError(c, apperrors.NewUnauthorizedError(msg))
			return
		}

		if accounts != nil {
			db, ok := requestDB(c)
			if !ok {
				apperrors.HandleError(c, apperrors.InternalError(errors.New("database is not attached to request")))
				return
			}
			if err := accounts.CheckAccount(db, claims.UserID); err != nil {
				security.RecordViolation(c.Request.Context(), models.ViolationInvalidToken, claims.UserID, ClientInfo(c), err.Error())
				apperrors.HandleError(c, err)
				return
			}
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware - для публичных маршрутов, где владелец видит больше.
// Без токена или с битым токеном запрос идет дальше анонимно.
func OptionalAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := auth.ExtractBearer(c.GetHeader("Authorization")); raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDKey, claims.UserID)
	c.Set(contextkeys.RoleKey, claims.Role)

	ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
	ctx = logger.WithRole(ctx, claims.Role)
	c.Request = c.Request.WithContext(ctx)
}

// RequireRoles пропускает только указанные роли
func RequireRoles(security services.SecurityService, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if string(r) == role {
				c.Next()
				return
			}
		}

		security.RecordViolation(c.Request.Context(), models.ViolationForbiddenAccess, GetUserID(c), ClientInfo(c), "role "+role)
		apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
	}
}

func requestDB(c *gin.Context) (*gorm.DB, bool) {
	v, ok := c.Get(string(contextkeys.DBContextKey))
	if !ok {
		return nil, false
	}
	db, ok := v.(*gorm.DB)
	return db, ok && db != nil
}

func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

func GetRole(c *gin.Context) string {
	return c.GetString(contextkeys.RoleKey)
}

// ClientInfo собирает данные клиента для журнала нарушений
func ClientInfo(c *gin.Context) dto.ClientInfo {
	return dto.ClientInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Path:      c.Request.URL.Path,
	}
}
