package services

// Имена событий сокета, которые сервисы отправляют пользователям
const (
	SocketEventNotification             = "notification:new"
	SocketEventApplicationStatusChanged = "application:statusChanged"
)

// RealtimeNotifier доставляет событие в открытые сокеты пользователя.
// Возвращает false, если пользователь офлайн.
type RealtimeNotifier interface {
	SendToUser(userID, event string, payload interface{}) bool
}

type noopNotifier struct{}

func (noopNotifier) SendToUser(string, string, interface{}) bool { return false }
