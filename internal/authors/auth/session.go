// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/sec"
)

// # Session Policy

// sessionPayload is the JSON document a [SessionStore] holds per token.
type sessionPayload struct {
	AuthorID  string    `json:"author_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionPolicy owns the meaning of a session: identity binding, validity
// window, serialization. The underlying [SessionStore] is a blind map.
//
// # Expiry Model
//
// Expiry is passive. A session's window is fixed at issuance and checked on
// every resolve; reads never extend it. Expired payloads may linger in the
// store until the same token is resolved again, at which point the policy
// deletes them opportunistically.
type SessionPolicy struct {
	store SessionStore
	ttl   time.Duration

	// now is injectable for deterministic expiry tests.
	now func() time.Time
}

// NewSessionPolicy constructs a policy over the given store with a fixed
// validity window.
func NewSessionPolicy(store SessionStore, ttl time.Duration) *SessionPolicy {
	return &SessionPolicy{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Issue mints a fresh session for the author and returns the principal
// carrying the new opaque token.
func (policy *SessionPolicy) Issue(ctx context.Context, authorID string) (*sec.Principal, error) {

	// 1. Mint an unguessable bearer token
	token, err := sec.NewSessionToken()
	if err != nil {
		return nil, err
	}

	// 2. Stamp the fixed validity window
	expiresAt := policy.now().Add(policy.ttl).UTC()
	payload, err := json.Marshal(sessionPayload{
		AuthorID:  authorID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("session policy: failed to encode payload: %w", err)
	}

	// 3. Persist before the token ever reaches the client
	if err := policy.store.Write(ctx, token, payload); err != nil {
		return nil, err
	}

	return &sec.Principal{
		AuthorID:     authorID,
		SessionToken: token,
		ExpiresAt:    expiresAt,
	}, nil
}

// Resolve validates a presented token and returns its principal.
//
// It returns UNAUTHORIZED for tokens that are unknown, unreadable or past
// their window. Expired payloads are invalidated on the way out.
func (policy *SessionPolicy) Resolve(ctx context.Context, token string) (*sec.Principal, error) {

	// 1. Fetch the blind payload
	raw, err := policy.store.Read(ctx, token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid session")
	}

	// 2. Decode. A corrupt payload is treated as a dead session.
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		_ = policy.store.Invalidate(ctx, token)
		return nil, apperr.Unauthorized("Invalid session")
	}

	// 3. Enforce the validity window
	if !policy.now().Before(payload.ExpiresAt) {
		// Lazy cleanup of the expired row.
		_ = policy.store.Invalidate(ctx, token)
		return nil, apperr.Unauthorized("Session expired")
	}

	return &sec.Principal{
		AuthorID:     payload.AuthorID,
		SessionToken: token,
		ExpiresAt:    payload.ExpiresAt,
	}, nil
}

// Invalidate terminates a session. Unknown tokens are a no-op.
func (policy *SessionPolicy) Invalidate(ctx context.Context, token string) error {
	return policy.store.Invalidate(ctx, token)
}

// TTL exposes the validity window, used to stamp cookie lifetimes.
func (policy *SessionPolicy) TTL() time.Duration {
	return policy.ttl
}
