package handlers

import (
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type OfficeHandler struct {
	*BaseHandler
	officeService services.OfficeService
}

func NewOfficeHandler(base *BaseHandler, officeService services.OfficeService) *OfficeHandler {
	return &OfficeHandler{
		BaseHandler:   base,
		officeService: officeService,
	}
}

func (h *OfficeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	office := rg.Group("/office")
	{
		office.GET("/fetchAllOffices", h.ListOffices)
		office.GET("/fetchOffice/:slug", h.GetOffice)
	}

	admin := office.Group("", h.AdminOnly()...)
	{
		admin.POST("/addOffice", h.CreateOffice)
		admin.PUT("/updateOffice/:id", h.UpdateOffice)
		admin.DELETE("/deleteOffice/:id", h.DeleteOffice)
		admin.POST("/uploadOfficeImage/:id", h.UploadImage)
	}
}

// CreateOffice godoc
// @Summary Добавить офис (admin)
// @Tags offices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OfficeRequest true "Офис"
// @Success 201 {object} models.Office
// @Failure 409 {object} apperrors.ErrorResponse "slug занят"
// @Router /office/addOffice [post]
func (h *OfficeHandler) CreateOffice(c *gin.Context) {
	var req dto.OfficeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	office, err := h.officeService.CreateOffice(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondCreated(c, "Office created", office)
}

func (h *OfficeHandler) ListOffices(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.officeService.ListOffices(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

func (h *OfficeHandler) GetOffice(c *gin.Context) {
	office, err := h.officeService.GetOffice(h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, office)
}

func (h *OfficeHandler) UpdateOffice(c *gin.Context) {
	var req dto.OfficeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	office, err := h.officeService.UpdateOffice(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, office)
}

func (h *OfficeHandler) DeleteOffice(c *gin.Context) {
	if err := h.officeService.DeleteOffice(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondMessage(c, "Office deleted")
}

// UploadImage godoc
// @Summary Фото офиса (создается миниатюра)
// @Tags offices
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID офиса"
// @Param image formData file true "Изображение"
// @Success 200 {object} models.Office
// @Router /office/uploadOfficeImage/{id} [post]
func (h *OfficeHandler) UploadImage(c *gin.Context) {
	file, ok := RequireFile(c, "image")
	if !ok {
		return
	}

	office, err := h.officeService.UploadImage(c.Request.Context(), h.GetDB(c), c.Param("id"), file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, office)
}
