package events

import (
	"context"
	"log/slog"
)

// LoggingHandler is an EventHandler that records every notification in the
// structured log. It serves as the default delivery sink until a push or
// websocket channel is attached.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler writing to the given logger.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{
		logger: logger.With("component", "notification_log"),
	}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *NotificationEvent) error {
	h.logger.Info("notification",
		"event_id", event.ID,
		"event_type", event.Type,
		"user_id", event.UserID,
		"payload", string(event.Payload))
	return nil
}
