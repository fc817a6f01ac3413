package domain

import "github.com/google/uuid"

// OwnerID identifies the caller that owns a transaction. Goroutines carry no
// identity of their own, so every owner-scoped operation names its caller
// explicitly.
type OwnerID string

// NewOwnerID returns a fresh random owner identity.
func NewOwnerID() OwnerID {
	return OwnerID(uuid.New().String())
}
