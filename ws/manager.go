package ws

import (
	"context"
	"sync"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/metrics"
)

// События сокета
const (
	EventStatusChanged = "user:statusChanged"
	EventActivity      = "user:activity"
	EventChatMessage   = "chat:message"
	EventUndelivered   = "chat:undelivered"
	EventError         = "error"
)

// Message - конверт любого сообщения в сокете
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// WebSocketManager - хаб соединений. У пользователя может быть несколько вкладок,
// поэтому клиенты хранятся по userID.
type WebSocketManager struct {
	clients   map[string]map[*Client]struct{}
	broadcast chan Message
	done      chan struct{}
	stopOnce  sync.Once
	mu        sync.RWMutex

	// клиенты, чей readPump еще не закрыл сессию
	active sync.WaitGroup
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:   make(map[string]map[*Client]struct{}),
		broadcast: make(chan Message, 256),
		done:      make(chan struct{}),
	}
}

// Run раздает broadcast-сообщения, пока не отменен ctx
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer manager.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-manager.broadcast:
			manager.broadcastMessage(message)
		}
	}
}

func (manager *WebSocketManager) stop() {
	manager.stopOnce.Do(func() {
		manager.mu.Lock()
		defer manager.mu.Unlock()

		close(manager.done)
		for userID, set := range manager.clients {
			for client := range set {
				close(client.Send)
				metrics.SocketConnections.Dec()
			}
			delete(manager.clients, userID)
		}
		logger.Info("websocket hub stopped")
	})
}

// Register возвращает false, если хаб уже остановлен
func (manager *WebSocketManager) Register(client *Client) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	select {
	case <-manager.done:
		return false
	default:
	}

	set, ok := manager.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		manager.clients[client.UserID] = set
	}
	set[client] = struct{}{}
	manager.active.Add(1)
	metrics.SocketConnections.Inc()

	logger.SocketLog("register", client.UserID, "client_id", client.ID, "connections", len(set))
	return true
}

// release - readPump клиента завершился, сессия закрыта
func (manager *WebSocketManager) release() {
	manager.active.Done()
}

// Wait ждет остановки хаба и завершения всех readPump. После остановки
// Register больше не принимает клиентов, поэтому счетчик только убывает.
// false, если ctx истек раньше.
func (manager *WebSocketManager) Wait(ctx context.Context) bool {
	select {
	case <-manager.done:
	case <-ctx.Done():
		return false
	}

	drained := make(chan struct{})
	go func() {
		manager.active.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return true
	case <-ctx.Done():
		return false
	}
}

func (manager *WebSocketManager) Unregister(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.removeLocked(client)
}

func (manager *WebSocketManager) removeLocked(client *Client) {
	set, ok := manager.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}

	close(client.Send)
	delete(set, client)
	if len(set) == 0 {
		delete(manager.clients, client.UserID)
	}
	metrics.SocketConnections.Dec()

	logger.SocketLog("unregister", client.UserID, "client_id", client.ID)
}

// Broadcast ставит сообщение всем клиентам в очередь хаба
func (manager *WebSocketManager) Broadcast(event string, payload interface{}) {
	select {
	case manager.broadcast <- Message{Event: event, Data: payload}:
	case <-manager.done:
	case <-time.After(time.Second):
		logger.Warn("websocket broadcast queue is full, message dropped", "event", event)
	}
}

func (manager *WebSocketManager) broadcastMessage(message Message) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	for _, set := range manager.clients {
		for client := range set {
			manager.deliverLocked(client, message)
		}
	}
}

// SendToUser отправляет событие во все вкладки пользователя.
// false - пользователь не в сети.
func (manager *WebSocketManager) SendToUser(userID, event string, payload interface{}) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	set, ok := manager.clients[userID]
	if !ok || len(set) == 0 {
		return false
	}

	delivered := false
	message := Message{Event: event, Data: payload}
	for client := range set {
		if manager.deliverLocked(client, message) {
			delivered = true
		}
	}
	return delivered
}

// deliverLocked не блокируется: клиент с переполненным буфером отключается
func (manager *WebSocketManager) deliverLocked(client *Client, message Message) bool {
	select {
	case client.Send <- message:
		return true
	default:
		logger.Warn("websocket client is too slow, disconnecting", "user_id", client.UserID, "client_id", client.ID)
		manager.removeLocked(client)
		return false
	}
}

// GetClientCount возвращает количество открытых соединений
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	count := 0
	for _, set := range manager.clients {
		count += len(set)
	}
	return count
}

// IsUserConnected - есть ли у пользователя хотя бы одно соединение
func (manager *WebSocketManager) IsUserConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID]) > 0
}
