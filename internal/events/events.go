package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Well-known notification event types.
const (
	// TypeAchievementUnlocked is emitted when an achievement transitions to
	// unlocked for a user.
	TypeAchievementUnlocked = "achievement_unlocked"
)

// NotificationEvent represents a user-facing notification to be delivered.
// It carries the addressed user and a type-specific payload without direct
// dependencies on any delivery mechanism.
type NotificationEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// UserID is the user the notification is addressed to
	UserID uuid.UUID `json:"user_id"`

	// Type indicates the kind of notification
	Type string `json:"type"`

	// Payload contains the notification-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// AchievementUnlockedPayload is the payload for TypeAchievementUnlocked events.
type AchievementUnlockedPayload struct {
	AchievementType string `json:"achievement_type"`
	Title           string `json:"title"`
	Message         string `json:"message"`
	Icon            string `json:"icon"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *NotificationEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewNotificationEvent creates a new NotificationEvent for the given user with
// the specified type and payload.
func NewNotificationEvent(userID uuid.UUID, eventType string, payload interface{}) (*NotificationEvent, error) {
	// Serialize the payload to JSON
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &NotificationEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *NotificationEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *NotificationEvent) error
}
