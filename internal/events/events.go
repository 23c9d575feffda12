package events

import "time"

type EventType string

const (
	JobPublished             EventType = "job.published"
	JobClosed                EventType = "job.closed"
	ApplicationSubmitted     EventType = "application.submitted"
	ApplicationStatusChanged EventType = "application.status_changed"
	ApplicationWithdrawn     EventType = "application.withdrawn"
	UserRegistered           EventType = "user.registered"
	SubscriberCreated        EventType = "subscriber.created"
)

// Event - доменное событие, публикуемое в exchange с routing key = Type
type Event struct {
	Type       EventType              `json:"type"`
	EntityID   string                 `json:"entityId"`
	UserID     string                 `json:"userId,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func New(t EventType, entityID, userID string, payload map[string]interface{}) *Event {
	return &Event{
		Type:       t,
		EntityID:   entityID,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}
