package handlers

import (
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	user := rg.Group("/user")

	me := user.Group("", h.Auth())
	{
		me.GET("/me", h.GetMe)
		me.PUT("/updateProfile", h.UpdateProfile)
		me.PUT("/changePassword", h.ChangePassword)
		me.POST("/uploadResume", h.UploadResume)
		me.POST("/uploadAvatar", h.UploadAvatar)
	}

	admin := user.Group("", h.AdminOnly()...)
	{
		admin.GET("/fetchAllUsers", h.ListUsers)
		admin.PUT("/updateUserStatus/:id", h.UpdateUserStatus)
		admin.DELETE("/deleteUser/:id", h.DeleteUser)
	}
}

// GetMe godoc
// @Summary Текущий пользователь
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Router /user/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, user)
}

// UpdateProfile godoc
// @Summary Обновить профиль
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Поля профиля"
// @Success 200 {object} dto.UserResponse
// @Router /user/updateProfile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, user)
}

// ChangePassword godoc
// @Summary Сменить пароль (все refresh-токены отзываются)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Пароли"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} apperrors.ErrorResponse "Неверный текущий пароль"
// @Router /user/changePassword [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondMessage(c, "Password changed")
}

// UploadResume godoc
// @Summary Загрузить резюме (pdf/doc/docx)
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "Файл резюме"
// @Success 200 {object} dto.UserResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /user/uploadResume [post]
func (h *UserHandler) UploadResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	file, ok := RequireFile(c, "resume")
	if !ok {
		return
	}

	user, err := h.userService.UploadResume(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, user)
}

// UploadAvatar godoc
// @Summary Загрузить аватар (создается миниатюра)
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Изображение"
// @Success 200 {object} dto.UserResponse
// @Router /user/uploadAvatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	file, ok := RequireFile(c, "avatar")
	if !ok {
		return
	}

	user, err := h.userService.UploadAvatar(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, user)
}

// ListUsers godoc
// @Summary Список пользователей (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Param role query string false "Роль"
// @Param status query string false "Статус"
// @Param search query string false "Имя или email"
// @Success 200 {object} dto.Page[dto.UserResponse]
// @Router /user/fetchAllUsers [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var query dto.UserListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.userService.ListUsers(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

// UpdateUserStatus godoc
// @Summary Заблокировать или разблокировать пользователя (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body dto.UpdateUserStatusRequest true "Статус"
// @Success 200 {object} dto.UserResponse
// @Router /user/updateUserStatus/{id} [put]
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUserStatus(h.GetDB(c), adminID, c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, user)
}

// DeleteUser godoc
// @Summary Удалить пользователя (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} map[string]interface{}
// @Router /user/deleteUser/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(h.GetDB(c), adminID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondMessage(c, "User deleted")
}
