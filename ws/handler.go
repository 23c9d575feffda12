package ws

import (
	"net/http"
	"time"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"
	"jobportal_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	db       *gorm.DB
	tokens   *auth.TokenManager
	activity services.ActivityService
	security services.SecurityService
	accounts middleware.AccountChecker
	upgrader websocket.Upgrader
}

// NewWebSocketHandler - db без контекста запроса: соединение живет дольше HTTP-хэндлера
func NewWebSocketHandler(manager *WebSocketManager, db *gorm.DB, s *services.ServiceContainer, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager:  manager,
		db:       db,
		tokens:   s.Tokens,
		activity: s.ActivityService,
		security: s.SecurityService,
		accounts: s.AuthService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ServeWS godoc
// @Summary WebSocket: присутствие и чат
// @Tags realtime
// @Param token query string false "JWT (или заголовок Authorization)"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /ws [get]
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = auth.ExtractBearer(c.GetHeader("Authorization"))
	}

	claims, err := h.tokens.Parse(token)
	if err != nil {
		h.security.RecordViolation(c.Request.Context(), models.ViolationSocketAuthFailed, "", middleware.ClientInfo(c), err.Error())
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Socket authentication failed"))
		return
	}
	// токен мог быть выдан до блокировки
	if err := h.accounts.CheckAccount(h.db.WithContext(c.Request.Context()), claims.UserID); err != nil {
		h.security.RecordViolation(c.Request.Context(), models.ViolationSocketAuthFailed, claims.UserID, middleware.ClientInfo(c), err.Error())
		apperrors.HandleError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade error", "user_id", claims.UserID, "error", err)
		return
	}

	client := &Client{
		ID:      uuid.NewString(),
		UserID:  claims.UserID,
		Role:    claims.Role,
		Conn:    conn,
		Send:    make(chan Message, sendBufferSize),
		handler: h,
	}

	sessionID, change, err := h.activity.Connect(h.db, client.UserID, middleware.ClientInfo(c))
	if err != nil {
		logger.Error("failed to open activity session", "user_id", client.UserID, "error", err)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session error"))
		conn.Close()
		return
	}
	client.SessionID = sessionID

	if !h.Manager.Register(client) {
		_, _ = h.activity.Disconnect(h.db, sessionID, client.UserID)
		conn.Close()
		return
	}

	if change.Changed {
		h.Manager.Broadcast(EventStatusChanged, change)
	}

	go client.writePump()
	go client.readPump()
}

func (h *WebSocketHandler) activity(c *Client, status models.PresenceStatus) {
	change, err := h.activity.Activity(h.db, c.SessionID, c.UserID, status)
	if err != nil {
		message := "failed to update activity"
		if appErr, ok := apperrors.AsAppError(err); ok {
			message = appErr.Message
		}
		c.reply(EventError, map[string]string{"message": message})
		return
	}
	if change.Changed {
		h.Manager.Broadcast(EventStatusChanged, change)
	}
}

// heartbeat - на каждый pong: сессия не считается брошенной, пока сокет отвечает
func (h *WebSocketHandler) heartbeat(c *Client) {
	if err := h.activity.Heartbeat(h.db, c.SessionID, c.UserID); err != nil {
		logger.Warn("failed to refresh activity session", "user_id", c.UserID, "session_id", c.SessionID, "error", err)
	}
}

func (h *WebSocketHandler) relayChat(c *Client, payload chatPayload) {
	now := time.Now().UTC()
	delivered := h.Manager.SendToUser(payload.To, EventChatMessage, chatDelivery{
		From: c.UserID,
		Text: payload.Text,
		At:   now,
	})
	if !delivered {
		c.reply(EventUndelivered, chatDelivery{From: c.UserID, To: payload.To, Text: payload.Text, At: now})
	}
}

// disconnect вызывается из readPump при закрытии соединения
func (h *WebSocketHandler) disconnect(c *Client) {
	h.Manager.Unregister(c)

	change, err := h.activity.Disconnect(h.db, c.SessionID, c.UserID)
	if err != nil {
		logger.Error("failed to close activity session", "user_id", c.UserID, "error", err)
		return
	}
	if change.Changed {
		h.Manager.Broadcast(EventStatusChanged, change)
	}
}
