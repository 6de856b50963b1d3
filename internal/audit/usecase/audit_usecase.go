// Package usecase implements the asynchronous audit sink used by the seal and PKI
// use cases. Events are queued on a bounded channel and written by a single
// background goroutine, so recording never blocks a state transition.
package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
)

const writeTimeout = 5 * time.Second

type auditUseCase struct {
	repo   EventRepository
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	events chan auditDomain.Event
	done   chan struct{}
}

// NewAuditUseCase starts the background writer. Callers must call Close on shutdown.
func NewAuditUseCase(repo EventRepository, bufferSize int, logger *slog.Logger) AuditUseCase {
	if bufferSize < 1 {
		bufferSize = 1
	}

	a := &auditUseCase{
		repo:   repo,
		logger: logger,
		events: make(chan auditDomain.Event, bufferSize),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Record enqueues event. When the queue is full or the sink is closed the event
// is dropped and a warning is logged.
func (a *auditUseCase) Record(ctx context.Context, event auditDomain.Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.logger.Warn("audit event dropped: sink closed", slog.String("event_type", event.EventType))
		return
	}

	select {
	case a.events <- event:
	default:
		a.logger.Warn("audit event dropped: buffer full",
			slog.String("event_type", event.EventType),
			slog.String("actor", event.Actor),
		)
	}
}

// List returns persisted audit events newest first.
func (a *auditUseCase) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	return a.repo.List(ctx, offset, limit)
}

// Close stops the sink and drains the queue.
func (a *auditUseCase) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *auditUseCase) run() {
	defer close(a.done)

	for event := range a.events {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := a.repo.Create(ctx, &event); err != nil {
			a.logger.Error("failed to persist audit event",
				slog.String("event_type", event.EventType),
				slog.Any("error", err),
			)
		}
		cancel()
	}
}
