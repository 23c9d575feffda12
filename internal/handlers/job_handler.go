package handlers

import (
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	job := rg.Group("/job")
	{
		job.GET("/fetchAllJobs", h.ListJobs)
		job.GET("/fetchJob/:slug", h.OptionalAuth(), h.GetJob)
		job.GET("/fetchJobsBySector/:slug", h.listByLookup("sector"))
		job.GET("/fetchJobsByProvince/:slug", h.listByLookup("province"))
		job.GET("/fetchJobsByCity/:slug", h.listByLookup("city"))
		job.GET("/fetchLatestJobs", h.ListLatest)
		job.GET("/fetchFeaturedJobs", h.ListFeatured)
	}

	owner := job.Group("", h.Auth(), h.Roles(models.UserRoleEmployer, models.UserRoleAdmin))
	{
		owner.POST("/addJob", h.CreateJob)
		owner.GET("/fetchMyJobs", h.ListMyJobs)
		owner.PUT("/updateJob/:id", h.UpdateJob)
		owner.PUT("/updateJobStatus/:id", h.UpdateJobStatus)
		owner.DELETE("/deleteJob/:id", h.DeleteJob)
		owner.POST("/uploadJobAttachment/:id", h.UploadAttachment)
	}
}

// CreateJob godoc
// @Summary Создать вакансию
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Вакансия"
// @Success 201 {object} models.Job
// @Failure 400 {object} apperrors.ErrorResponse "Справочник не найден или неверные поля"
// @Router /job/addJob [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.CreateJob(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondCreated(c, "Job created", job)
}

// ListJobs godoc
// @Summary Публичный список активных вакансий
// @Tags jobs
// @Produce json
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Param search query string false "Поиск по названию, компании, описанию"
// @Param sector query string false "slug сектора"
// @Param country query string false "slug страны"
// @Param province query string false "slug области"
// @Param city query string false "slug города"
// @Param qualification query string false "slug квалификации"
// @Param workMode query string false "slug формата работы"
// @Param workExperience query string false "slug опыта"
// @Param employmentType query string false "Тип занятости"
// @Param salaryMin query number false "Минимальная зарплата"
// @Param featured query bool false "Только избранные"
// @Param sort query string false "latest|oldest|salary"
// @Success 200 {object} dto.Page[models.Job]
// @Router /job/fetchAllJobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	var query dto.JobListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.jobService.ListJobs(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

func (h *JobHandler) listByLookup(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query dto.JobListQuery
		if !h.BindAndValidate_Query(c, &query) {
			return
		}

		page, err := h.jobService.ListJobsByLookup(h.GetDB(c), kind, c.Param("slug"), &query)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		RespondPage(c, page)
	}
}

// GetJob godoc
// @Summary Вакансия по slug (просмотр не владельцем увеличивает счетчик)
// @Tags jobs
// @Produce json
// @Param slug path string true "slug вакансии"
// @Success 200 {object} models.Job
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /job/fetchJob/{slug} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.GetJob(h.GetDB(c), c.Param("slug"), middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, job)
}

func (h *JobHandler) ListLatest(c *gin.Context) {
	jobs, err := h.jobService.ListLatest(h.GetDB(c), ParseLimit(c, 6, 50))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, jobs)
}

func (h *JobHandler) ListFeatured(c *gin.Context) {
	jobs, err := h.jobService.ListFeatured(h.GetDB(c), ParseLimit(c, 6, 50))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, jobs)
}

// ListMyJobs godoc
// @Summary Вакансии текущего работодателя
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Param status query string false "Статус"
// @Success 200 {object} dto.Page[models.Job]
// @Router /job/fetchMyJobs [get]
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.MyJobsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.jobService.ListMyJobs(h.GetDB(c), userID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

// UpdateJob godoc
// @Summary Обновить вакансию (владелец или admin)
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID вакансии"
// @Param request body dto.UpdateJobRequest true "Изменяемые поля"
// @Success 200 {object} models.Job
// @Router /job/updateJob/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateJob(h.GetDB(c), c.Param("id"), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, job)
}

// UpdateJobStatus godoc
// @Summary Сменить статус вакансии
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID вакансии"
// @Param request body dto.UpdateJobStatusRequest true "Статус"
// @Success 200 {object} models.Job
// @Failure 409 {object} apperrors.ErrorResponse "Недопустимый переход"
// @Router /job/updateJobStatus/{id} [put]
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	var req dto.UpdateJobStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateJobStatus(h.GetDB(c), c.Param("id"), userID, role, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(c.Request.Context(), h.GetDB(c), c.Param("id"), userID, role); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondMessage(c, "Job deleted")
}

// UploadAttachment godoc
// @Summary Прикрепить файл к вакансии
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID вакансии"
// @Param attachment formData file true "Файл"
// @Success 200 {object} models.Job
// @Router /job/uploadJobAttachment/{id} [post]
func (h *JobHandler) UploadAttachment(c *gin.Context) {
	userID, role, ok := h.Identity(c)
	if !ok {
		return
	}
	file, ok := RequireFile(c, "attachment")
	if !ok {
		return
	}

	job, err := h.jobService.UploadAttachment(c.Request.Context(), h.GetDB(c), c.Param("id"), userID, role, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, job)
}
