package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
)

// MySQLEventRepository implements audit event persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL audit event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts an audit event. Nil metadata is stored as NULL.
func (m *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	query := `INSERT INTO audit_events (id, event_type, actor, resource, result, metadata, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		event.EventType,
		event.Actor,
		event.Resource,
		event.Result,
		metadataJSON,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// List returns audit events newest first.
func (m *MySQLEventRepository) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, event_type, actor, resource, result, metadata, created_at
			  FROM audit_events
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		var event auditDomain.Event
		var id []byte
		var metadataJSON []byte

		if err := rows.Scan(
			&id,
			&event.EventType,
			&event.Actor,
			&event.Resource,
			&event.Result,
			&metadataJSON,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		if event.ID, err = uuid.FromBytes(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}

		if event.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}
