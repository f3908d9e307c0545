package eventlogger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Worker saves events in the background so that recording an event never
// blocks a ledger mutation.
type Worker struct {
	eventCh chan Event
	logger  EventLogger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	stopped atomic.Bool
	dropped atomic.Int64
}

func NewWorker(logger EventLogger, bufferSize int) *Worker {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		eventCh: make(chan Event, bufferSize),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *Worker) Start() {
	w.wg.Go(func() {
		for {
			select {
			case <-w.ctx.Done():
				w.drain()
				return
			case event := <-w.eventCh:
				w.save(w.ctx, event)
			}
		}
	})
}

func (w *Worker) drain() {
	slog.Info("draining events before shutdown", "remaining_events", len(w.eventCh))
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.eventCh:
			w.save(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) save(ctx context.Context, event Event) {
	if err := w.logger.Save(ctx, event); err != nil {
		slog.Error("failed to save event", "error", err, "event_type", event.Type)
	}
}

// Log queues an event. It never blocks: when the buffer is full or the
// worker has been shut down the event is dropped.
func (w *Worker) Log(event Event) {
	if w.stopped.Load() {
		w.dropped.Add(1)
		slog.Warn("event worker stopped, dropping event", "event_type", event.Type)
		return
	}
	select {
	case w.eventCh <- event:
	default:
		w.dropped.Add(1)
		slog.Warn("event channel full, dropping event", "event_type", event.Type)
	}
}

// Dropped returns how many events were discarded.
func (w *Worker) Dropped() int64 {
	return w.dropped.Load()
}

// Shutdown stops accepting events, saves what is still queued and waits for
// the background goroutine to exit.
func (w *Worker) Shutdown() {
	if w.stopped.Swap(true) {
		return
	}
	w.cancel()
	w.wg.Wait()
}
