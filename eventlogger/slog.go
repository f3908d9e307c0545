package eventlogger

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// recentEvents is how many events a slogEventLogger keeps for GetByType.
const recentEvents = 256

// slogEventLogger writes events to a structured logger and keeps the most
// recent ones in memory so they can be queried back. It backs deployments
// that persist the ledger to a file and have no database for the audit log.
type slogEventLogger struct {
	logger *slog.Logger

	mu     sync.Mutex
	events []Event
}

func NewSlogEventLogger(logger *slog.Logger) *slogEventLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogEventLogger{logger: logger}
}

func (el *slogEventLogger) Save(ctx context.Context, e Event) error {
	attrs := []any{
		"event_id", e.ID.String(),
		"event_data", e.Data,
	}
	for k, v := range e.Metadata {
		attrs = append(attrs, k, v)
	}
	el.logger.InfoContext(ctx, e.Type, attrs...)

	el.mu.Lock()
	el.events = append(el.events, e)
	if over := len(el.events) - recentEvents; over > 0 {
		el.events = slices.Delete(el.events, 0, over)
	}
	el.mu.Unlock()
	return nil
}

func (el *slogEventLogger) GetByType(_ context.Context, eventType string) ([]Event, error) {
	el.mu.Lock()
	defer el.mu.Unlock()

	events := make([]Event, 0)
	for _, e := range el.events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events, nil
}
