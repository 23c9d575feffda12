package handlers

import (
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ActivityHandler - админские выборки присутствия, сессий и нарушений
type ActivityHandler struct {
	*BaseHandler
	activityService services.ActivityService
	securityService services.SecurityService
}

func NewActivityHandler(base *BaseHandler, activityService services.ActivityService, securityService services.SecurityService) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     base,
		activityService: activityService,
		securityService: securityService,
	}
}

func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	activity := rg.Group("/activity", h.AdminOnly()...)
	{
		activity.GET("/fetchOnlineUsers", h.OnlineUsers)
		activity.GET("/fetchSessions", h.ListSessions)
		activity.GET("/fetchSecurityViolations", h.ListViolations)
	}
}

// OnlineUsers godoc
// @Summary Пользователи онлайн (admin)
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.OnlineUser
// @Router /activity/fetchOnlineUsers [get]
func (h *ActivityHandler) OnlineUsers(c *gin.Context) {
	users, err := h.activityService.OnlineUsers(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, users)
}

func (h *ActivityHandler) ListSessions(c *gin.Context) {
	var query dto.SessionListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.activityService.ListSessions(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

// ListViolations godoc
// @Summary Журнал нарушений безопасности (admin)
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Param type query string false "Тип нарушения"
// @Param userId query string false "ID пользователя"
// @Success 200 {object} dto.Page[models.SecurityViolation]
// @Router /activity/fetchSecurityViolations [get]
func (h *ActivityHandler) ListViolations(c *gin.Context) {
	var query dto.ViolationListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.securityService.ListViolations(c.Request.Context(), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}
