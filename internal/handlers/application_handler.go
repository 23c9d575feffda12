package handlers

import (
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	application := rg.Group("/application", h.Auth())
	{
		application.GET("/fetchApplication/:id", h.GetApplication)

		applicant := application.Group("", h.Roles(models.UserRoleApplicant))
		applicant.POST("/apply/:jobId", h.Apply)
		applicant.GET("/fetchMyApplications", h.ListMyApplications)
		applicant.PUT("/withdraw/:id", h.Withdraw)

		reviewer := application.Group("", h.Roles(models.UserRoleEmployer, models.UserRoleAdmin))
		reviewer.GET("/fetchJobApplications/:jobId", h.ListJobApplications)
		reviewer.PUT("/updateApplicationStatus/:id", h.UpdateStatus)
	}
}

// Apply godoc
// @Summary Откликнуться на вакансию
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "ID вакансии"
// @Param coverLetter formData string false "Сопроводительное письмо"
// @Param expectedSalary formData number false "Ожидаемая зарплата"
// @Param resume formData file false "Резюме (иначе берется из профиля)"
// @Success 201 {object} models.JobApplication
// @Failure 400 {object} apperrors.ErrorResponse "Нет резюме или вакансия закрыта"
// @Failure 409 {object} apperrors.ErrorResponse "Уже откликался"
// @Router /application/apply/{jobId} [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.Apply(c.Request.Context(), h.GetDB(c), c.Param("jobId"), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondCreated(c, "Application submitted", application)
}

func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	application, err := h.applicationService.GetApplication(h.GetDB(c), c.Param("id"), userID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, application)
}

// ListMyApplications godoc
// @Summary Мои отклики
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Param status query string false "Статус"
// @Success 200 {object} dto.Page[models.JobApplication]
// @Router /application/fetchMyApplications [get]
func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.ApplicationListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.applicationService.ListMyApplications(h.GetDB(c), userID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

// ListJobApplications godoc
// @Summary Отклики на вакансию (владелец или admin)
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "ID вакансии"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Param status query string false "Статус"
// @Success 200 {object} dto.Page[models.JobApplication]
// @Router /application/fetchJobApplications/{jobId} [get]
func (h *ApplicationHandler) ListJobApplications(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	var query dto.ApplicationListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.applicationService.ListJobApplications(h.GetDB(c), c.Param("jobId"), userID, role, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

// UpdateStatus godoc
// @Summary Сменить статус отклика
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID отклика"
// @Param request body dto.UpdateApplicationStatusRequest true "Статус и заметки"
// @Success 200 {object} models.JobApplication
// @Failure 409 {object} apperrors.ErrorResponse "Недопустимый переход"
// @Router /application/updateApplicationStatus/{id} [put]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.UpdateStatus(h.GetDB(c), c.Param("id"), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, application)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	application, err := h.applicationService.Withdraw(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, application)
}
