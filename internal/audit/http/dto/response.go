// Package dto provides data transfer objects for the audit event endpoints.
package dto

import (
	"time"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
)

// AuditEventResponse represents an audit event in API responses.
type AuditEventResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Actor     string         `json:"actor"`
	Resource  string         `json:"resource"`
	Result    string         `json:"result"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MapAuditEventToResponse converts a domain audit event to an API response.
func MapAuditEventToResponse(event *auditDomain.Event) AuditEventResponse {
	return AuditEventResponse{
		ID:        event.ID.String(),
		EventType: event.EventType,
		Actor:     event.Actor,
		Resource:  event.Resource,
		Result:    event.Result,
		Metadata:  event.Metadata,
		CreatedAt: event.CreatedAt,
	}
}

// ListAuditEventsResponse represents a page of audit events.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapAuditEventsToListResponse converts domain audit events to a list response.
func MapAuditEventsToListResponse(events []*auditDomain.Event) ListAuditEventsResponse {
	data := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapAuditEventToResponse(event))
	}
	return ListAuditEventsResponse{Data: data}
}
