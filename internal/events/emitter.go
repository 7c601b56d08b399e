package events

import (
	"context"
	"encoding/json"
	"log"
)

var Emit = func(ctx context.Context, name string, evt RequestEvent) {}

// EnableLogEmitter routes events to the standard logger.
func EnableLogEmitter() {
	Emit = func(ctx context.Context, name string, evt RequestEvent) {
		logEvent(name, withRequest(ctx, evt))
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt RequestEvent)) {
	if f == nil {
		Emit = func(context.Context, string, RequestEvent) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt RequestEvent) {
		f(ctx, name, withRequest(ctx, evt))
	}
}

func withRequest(ctx context.Context, evt RequestEvent) RequestEvent {
	if evt.RequestID == "" {
		evt.RequestID = RequestFromContext(ctx)
	}
	return evt
}

func logEvent(name string, evt RequestEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("events: failed to marshal %s event: %v", name, err)
		return
	}

	switch evt.Type {
	case EventError:
		log.Printf("ERROR %s %s", name, data)
	case EventWarn:
		log.Printf("WARN %s %s", name, data)
	default:
		log.Printf("INFO %s %s", name, data)
	}
}
