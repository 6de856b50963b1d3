package usecase

import (
	"context"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
)

// EventRepository defines the interface for audit event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *auditDomain.Event) error
	List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error)
}

// Recorder accepts audit events without blocking the caller.
type Recorder interface {
	Record(ctx context.Context, event auditDomain.Event)
}

// AuditUseCase records and lists audit events.
type AuditUseCase interface {
	Recorder
	List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error)
	// Close stops accepting events and waits until queued events are written or ctx expires.
	Close(ctx context.Context) error
}
