package eventlogger

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID         `json:"id,omitempty"`
	Type      string            `json:"event_type,omitempty"`
	Data      any               `json:"event_data,omitempty"`
	Metadata  map[string]string `json:"event_metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

func WithData(data any) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

// WithMetadata merges metadata into the event, overriding existing keys.
func WithMetadata(metadata map[string]string) EventOption {
	return func(e *Event) {
		maps.Copy(e.Metadata, metadata)
	}
}

func WithTime(t time.Time) EventOption {
	return func(e *Event) {
		e.CreatedAt = t
	}
}

func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Metadata:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

type EventLogger interface {
	Save(ctx context.Context, e Event) error
	GetByType(ctx context.Context, eventType string) ([]Event, error)
}

type metadataKey struct{}

// ContextWithMetadata attaches metadata to ctx so that events built from it
// carry where the change came from (request id, remote address, command).
func ContextWithMetadata(ctx context.Context, metadata map[string]string) context.Context {
	merged := maps.Clone(MetadataFromContext(ctx))
	if merged == nil {
		merged = make(map[string]string, len(metadata))
	}
	maps.Copy(merged, metadata)
	return context.WithValue(ctx, metadataKey{}, merged)
}

// MetadataFromContext returns the metadata stored by ContextWithMetadata, or
// nil.
func MetadataFromContext(ctx context.Context) map[string]string {
	md, _ := ctx.Value(metadataKey{}).(map[string]string)
	return md
}
