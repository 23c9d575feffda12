package handlers

import (
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	*BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(base *BaseHandler, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      base,
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard", h.Auth())
	{
		dashboard.GET("/employerStats", h.Roles(models.UserRoleEmployer), h.EmployerStats)
		dashboard.GET("/adminStats", h.Roles(models.UserRoleAdmin), h.AdminStats)
	}
}

// EmployerStats godoc
// @Summary Статистика работодателя
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EmployerStats
// @Router /dashboard/employerStats [get]
func (h *DashboardHandler) EmployerStats(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.EmployerStats(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, stats)
}

// AdminStats godoc
// @Summary Сводная статистика (admin)
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AdminStats
// @Router /dashboard/adminStats [get]
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	stats, err := h.dashboardService.AdminStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, stats)
}
