package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

const (
	MessageReceived  = "events:message:received"
	MessageCompleted = "events:message:completed"
	SettingsSaved    = "events:settings:saved"
)

// RequestEvent describes one step of handling a message.
type RequestEvent struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"requestId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const requestContextKey contextKey = "txtension/events/request"

// WithRequest returns a derived context carrying a fresh request id, and the id.
func WithRequest(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, requestContextKey, id), id
}

// RequestFromContext extracts the request id associated with ctx.
func RequestFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestContextKey).(string); ok {
		return v
	}
	return ""
}

func CreateEvent(eventType EventType, message string) RequestEvent {
	return RequestEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NewInfo(message string) RequestEvent {
	return CreateEvent(EventInfo, message)
}

func NewWarn(message string) RequestEvent {
	return CreateEvent(EventWarn, message)
}

func NewSuccess(message string) RequestEvent {
	return CreateEvent(EventSuccess, message)
}

func NewError(message string) RequestEvent {
	return CreateEvent(EventError, message)
}

// With returns a copy of evt with the given metadata pairs added. Empty
// values are skipped.
func (evt RequestEvent) With(pairs ...string) RequestEvent {
	if len(pairs) < 2 {
		return evt
	}
	meta := make(map[string]string, len(evt.Metadata)+len(pairs)/2)
	for k, v := range evt.Metadata {
		meta[k] = v
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			continue
		}
		meta[pairs[i]] = pairs[i+1]
	}
	evt.Metadata = meta
	return evt
}
