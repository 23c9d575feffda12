package handlers

import (
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SubscriberHandler struct {
	*BaseHandler
	subscriberService services.SubscriberService
}

func NewSubscriberHandler(base *BaseHandler, subscriberService services.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{
		BaseHandler:       base,
		subscriberService: subscriberService,
	}
}

func (h *SubscriberHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subscriber := rg.Group("/subscriber")
	{
		subscriber.POST("/subscribe", h.RateLimit(), h.Subscribe)
		subscriber.POST("/unsubscribe", h.Unsubscribe)
	}

	admin := subscriber.Group("", h.AdminOnly()...)
	{
		admin.GET("/fetchAllSubscribers", h.ListSubscribers)
		admin.DELETE("/deleteSubscriber/:id", h.DeleteSubscriber)
	}
}

// Subscribe godoc
// @Summary Подписка на рассылку вакансий
// @Tags subscribers
// @Accept json
// @Produce json
// @Param request body dto.SubscribeRequest true "Email"
// @Success 201 {object} models.Subscriber
// @Failure 409 {object} apperrors.ErrorResponse "Уже подписан"
// @Router /subscriber/subscribe [post]
func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	subscriber, err := h.subscriberService.Subscribe(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondCreated(c, "Subscribed", subscriber)
}

// Unsubscribe godoc
// @Summary Отписка по токену из письма
// @Tags subscribers
// @Accept json
// @Produce json
// @Param request body dto.UnsubscribeRequest true "Токен"
// @Success 200 {object} map[string]interface{}
// @Router /subscriber/unsubscribe [post]
func (h *SubscriberHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.subscriberService.Unsubscribe(h.GetDB(c), req.Token); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondMessage(c, "Unsubscribed")
}

func (h *SubscriberHandler) ListSubscribers(c *gin.Context) {
	var query dto.SubscriberListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.subscriberService.ListSubscribers(h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondPage(c, page)
}

func (h *SubscriberHandler) DeleteSubscriber(c *gin.Context) {
	if err := h.subscriberService.DeleteSubscriber(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	RespondMessage(c, "Subscriber deleted")
}
