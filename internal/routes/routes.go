package routes

import (
	"jobportal_backend/internal/handlers"
	"jobportal_backend/internal/logger"
	"jobportal_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
) {
	api := ginRouter.Group("/api/v1")
	for _, h := range appHandlers.All() {
		h.RegisterRoutes(api)
	}

	SetupWebSocketRoutes(ginRouter, wsHandler)
	logger.Info("routes registered", "routes", len(ginRouter.Routes()))
}
