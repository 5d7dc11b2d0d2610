// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import (
	"context"
	"sync"

	"github.com/backalley/backalley/internal/platform/apperr"
)

// # Session Storage Contract

// SessionStore is a blind token-to-payload map.
//
// # Contract
//
// The store knows nothing about sessions: payloads are opaque bytes, tokens
// are opaque strings. Expiry, identity and serialization all live in
// [SessionPolicy]. Implementations must satisfy three rules:
//
//   - Write upserts: writing an existing token replaces its payload.
//   - Read of an absent token returns a NOT_FOUND [apperr.AppError].
//   - Invalidate is idempotent: deleting an absent token is not an error.
type SessionStore interface {
	// Write persists payload under token, replacing any previous payload.
	Write(ctx context.Context, token string, payload []byte) error

	// Read returns the payload stored under token.
	Read(ctx context.Context, token string) ([]byte, error)

	// Invalidate removes the token's payload if present.
	Invalidate(ctx context.Context, token string) error
}

// # In-Memory Implementation

// MemorySessionStore keeps sessions in process memory.
//
// Used in tests and single-node development runs. Sessions do not survive a
// restart, which is acceptable for those environments.
type MemorySessionStore struct {
	mu       sync.RWMutex
	payloads map[string][]byte
}

// NewMemorySessionStore constructs an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{payloads: make(map[string][]byte)}
}

// Write stores or replaces the payload for token.
func (store *MemorySessionStore) Write(_ context.Context, token string, payload []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	// Copy so later caller mutations cannot leak into the store.
	buf := make([]byte, len(payload))
	copy(buf, payload)
	store.payloads[token] = buf

	return nil
}

// Read returns the payload for token, or NOT_FOUND.
func (store *MemorySessionStore) Read(_ context.Context, token string) ([]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	payload, found := store.payloads[token]
	if !found {
		return nil, apperr.NotFound("Session")
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)
	return buf, nil
}

// Invalidate removes token's payload. Absent tokens are a no-op.
func (store *MemorySessionStore) Invalidate(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.payloads, token)
	return nil
}
