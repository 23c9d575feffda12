package routes

import (
	"jobportal_backend/ws"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes - токен проверяет сам хэндлер (query ?token или Bearer)
func SetupWebSocketRoutes(r *gin.Engine, wsHandler *ws.WebSocketHandler) {
	r.GET("/ws", wsHandler.ServeWS)
}
