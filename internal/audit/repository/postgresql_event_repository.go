// Package repository implements audit event persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
)

// PostgreSQLEventRepository implements audit event persistence for PostgreSQL.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL audit event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts an audit event. Nil metadata is stored as NULL.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, event_type, actor, resource, result, metadata, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
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
func (p *PostgreSQLEventRepository) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, event_type, actor, resource, result, metadata, created_at
			  FROM audit_events
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

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
		var metadataJSON []byte

		if err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.Actor,
			&event.Resource,
			&event.Result,
			&metadataJSON,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
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

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event metadata")
	}
	return data, nil
}

func unmarshalMetadata(data []byte) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit event metadata")
	}
	return metadata, nil
}
