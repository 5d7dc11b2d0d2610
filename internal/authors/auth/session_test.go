// Copyright (c) 2026 Backalley. All rights reserved.

// White-box tests: the policy's clock is injected directly to make expiry
// deterministic.

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy(ttl time.Duration, start time.Time) (*SessionPolicy, *MemorySessionStore, *time.Time) {
	store := NewMemorySessionStore()
	policy := NewSessionPolicy(store, ttl)

	current := start
	policy.now = func() time.Time { return current }
	return policy, store, &current
}

/*
TestSessionPolicy_IssueAndResolve verifies a freshly issued token resolves to
the same author with the stamped expiry.
*/
func TestSessionPolicy_IssueAndResolve(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy, _, _ := newTestPolicy(24*time.Hour, start)

	issued, err := policy.Issue(ctx, "author-1")
	require.NoError(t, err)
	require.NotEmpty(t, issued.SessionToken)
	assert.Equal(t, start.Add(24*time.Hour), issued.ExpiresAt)

	resolved, err := policy.Resolve(ctx, issued.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "author-1", resolved.AuthorID)
	assert.Equal(t, issued.ExpiresAt, resolved.ExpiresAt)
	assert.Equal(t, issued.SessionToken, resolved.SessionToken)
}

/*
TestSessionPolicy_FixedWindow verifies reads never extend the session: the
expiry stamped at issuance is final.
*/
func TestSessionPolicy_FixedWindow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy, _, current := newTestPolicy(24*time.Hour, start)

	issued, err := policy.Issue(ctx, "author-1")
	require.NoError(t, err)

	// Resolving repeatedly near the end of the window must not push it out.
	*current = start.Add(23 * time.Hour)
	for i := 0; i < 3; i++ {
		resolved, err := policy.Resolve(ctx, issued.SessionToken)
		require.NoError(t, err)
		assert.Equal(t, issued.ExpiresAt, resolved.ExpiresAt)
	}

	*current = start.Add(24*time.Hour + time.Second)
	_, err = policy.Resolve(ctx, issued.SessionToken)
	require.Error(t, err)
}

/*
TestSessionPolicy_ExpiryCleansUp verifies that resolving an expired token
fails and removes the dead payload from the store.
*/
func TestSessionPolicy_ExpiryCleansUp(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy, store, current := newTestPolicy(time.Hour, start)

	issued, err := policy.Issue(ctx, "author-1")
	require.NoError(t, err)

	*current = start.Add(2 * time.Hour)
	_, err = policy.Resolve(ctx, issued.SessionToken)
	require.Error(t, err)

	// The expired payload was dropped on the failed resolve.
	_, err = store.Read(ctx, issued.SessionToken)
	require.Error(t, err)
}

/*
TestSessionPolicy_ExactExpiryBoundary verifies a session is dead exactly at
its expiry instant.
*/
func TestSessionPolicy_ExactExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy, _, current := newTestPolicy(time.Hour, start)

	issued, err := policy.Issue(ctx, "author-1")
	require.NoError(t, err)

	*current = issued.ExpiresAt
	_, err = policy.Resolve(ctx, issued.SessionToken)
	require.Error(t, err)
}

/*
TestSessionPolicy_UnknownAndCorruptTokens verifies garbage input resolves to
an unauthorized rejection, never a panic or a principal.
*/
func TestSessionPolicy_UnknownAndCorruptTokens(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy, store, _ := newTestPolicy(time.Hour, start)

	_, err := policy.Resolve(ctx, "never-issued")
	require.Error(t, err)

	// A corrupt payload is treated as a dead session and removed.
	require.NoError(t, store.Write(ctx, "corrupt", []byte("not json")))
	_, err = policy.Resolve(ctx, "corrupt")
	require.Error(t, err)
	_, err = store.Read(ctx, "corrupt")
	require.Error(t, err)
}

/*
TestSessionPolicy_Invalidate verifies logout semantics: the token dies and a
second invalidate is a no-op.
*/
func TestSessionPolicy_Invalidate(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy, _, _ := newTestPolicy(time.Hour, start)

	issued, err := policy.Issue(ctx, "author-1")
	require.NoError(t, err)

	require.NoError(t, policy.Invalidate(ctx, issued.SessionToken))
	_, err = policy.Resolve(ctx, issued.SessionToken)
	require.Error(t, err)

	require.NoError(t, policy.Invalidate(ctx, issued.SessionToken))
}
