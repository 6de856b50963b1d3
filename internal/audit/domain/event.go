// Package domain defines audit events emitted by the seal and PKI subsystems.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/trustcore/internal/errors"
)

// Event types emitted by the trust core.
const (
	EventSealInitialize         = "seal.initialize"
	EventSealUnseal             = "seal.unseal"
	EventSealSeal               = "seal.seal"
	EventSealAutoUnseal         = "seal.auto_unseal"
	EventAutoUnsealConfigCreate = "seal.auto_unseal_config.create"
	EventRootCAGenerate         = "pki.root_ca.generate"
	EventIntermediateCAGenerate = "pki.intermediate_ca.generate"
	EventCSRSign                = "pki.csr.sign"
	EventCertificateRevoke      = "pki.certificate.revoke"
)

// Result values recorded on every event.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Event is a fire-and-forget audit record. Events never carry key material.
type Event struct {
	ID        uuid.UUID
	EventType string
	Actor     string
	Resource  string
	Result    string
	Metadata  map[string]any
	CreatedAt time.Time
}

// NewEvent builds an Event stamped with a fresh UUIDv7 and the current UTC time.
// The result is derived from err.
func NewEvent(eventType, actor, resource string, err error) Event {
	result := ResultSuccess
	var metadata map[string]any
	if err != nil {
		result = ResultFailure
		metadata = map[string]any{"error": err.Error(), "error_code": apperrors.Code(err)}
	}

	return Event{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Actor:     actor,
		Resource:  resource,
		Result:    result,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
