// Package domain defines the seal state machine model: shares, seal status,
// the persisted seal configuration and auto-unseal provider configuration.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// State is the seal state machine state.
type State int

const (
	// StateUninitialized means no master key has been generated yet.
	StateUninitialized State = iota
	// StateSealed means the master key exists only as distributed shares.
	StateSealed
	// StateUnsealed means the master key is held in memory.
	StateUnsealed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateSealed:
		return "sealed"
	case StateUnsealed:
		return "unsealed"
	default:
		return "uninitialized"
	}
}

// SealStatus is a point-in-time snapshot of the state machine.
type SealStatus struct {
	Initialized bool
	Sealed      bool
	Threshold   int
	TotalShares int
	// Progress counts distinct shares collected in the current unseal attempt.
	Progress int
}

// SealConfig is the persisted result of Initialize. VerificationHash is an
// Argon2id hash of the master key and is the only persisted trace of it.
type SealConfig struct {
	ID               uuid.UUID
	Threshold        int
	TotalShares      int
	VerificationHash string
	CreatedAt        time.Time
}

// InitResult is returned once by Initialize. Shares is empty when the shares were
// wrapped by an active auto-unseal configuration instead.
type InitResult struct {
	Shares      []Share
	Threshold   int
	TotalShares int
	AutoUnseal  bool
}
