package ws

import (
	"encoding/json"
	"strings"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBufferSize = 64
	maxChatLength  = 2000
)

// IncomingWSMessage - сообщение от клиента
type IncomingWSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type activityPayload struct {
	Status models.PresenceStatus `json:"status"`
}

type chatPayload struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type chatDelivery struct {
	From string    `json:"from"`
	To   string    `json:"to,omitempty"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Client - одно сокет-соединение пользователя
type Client struct {
	ID        string
	UserID    string
	Role      string
	SessionID string
	Conn      *websocket.Conn
	Send      chan Message

	handler *WebSocketHandler
}

func (c *Client) readPump() {
	defer func() {
		c.handler.disconnect(c)
		c.Conn.Close()
		c.handler.Manager.release()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.handler.heartbeat(c)
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			c.reply(EventError, map[string]string{"message": "invalid message format"})
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб закрыл канал
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.Warn("websocket write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply отправляет событие только этому соединению
func (c *Client) reply(event string, payload interface{}) {
	c.handler.Manager.mu.Lock()
	defer c.handler.Manager.mu.Unlock()

	if set, ok := c.handler.Manager.clients[c.UserID]; ok {
		if _, ok := set[c]; ok {
			c.handler.Manager.deliverLocked(c, Message{Event: event, Data: payload})
		}
	}
}

// Централизованный обработчик
func (c *Client) handleMessage(msg IncomingWSMessage) {
	logger.SocketLog(msg.Event, c.UserID)

	switch msg.Event {
	case EventActivity:
		var payload activityPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.reply(EventError, map[string]string{"message": "invalid user:activity payload"})
			return
		}
		c.handler.activity(c, payload.Status)

	case EventChatMessage:
		var payload chatPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.reply(EventError, map[string]string{"message": "invalid chat:message payload"})
			return
		}
		payload.Text = strings.TrimSpace(payload.Text)
		if payload.To == "" || payload.Text == "" || len(payload.Text) > maxChatLength {
			c.reply(EventError, map[string]string{"message": "chat:message requires 'to' and non-empty 'text'"})
			return
		}
		c.handler.relayChat(c, payload)

	default:
		c.reply(EventError, map[string]string{"message": "unknown event: " + msg.Event})
	}
}
