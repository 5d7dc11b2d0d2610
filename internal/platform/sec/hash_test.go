// Copyright (c) 2026 Backalley. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/platform/sec"
)

/*
TestHasher_RoundTrip verifies that a peppered hash verifies against the
original plaintext and rejects everything else.
*/
func TestHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewHasher("p3pp3r")

	record, err := hasher.Hash("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, record)

	assert.True(t, hasher.Verify("secret123", record))
	assert.False(t, hasher.Verify("wrong", record))
	assert.False(t, hasher.Verify("", record))
}

/*
TestHasher_PepperBinding verifies that a hash minted under one pepper never
verifies under another.
*/
func TestHasher_PepperBinding(t *testing.T) {
	first := sec.NewHasher("p3pp3r")
	second := sec.NewHasher("different")

	record, err := first.Hash("secret123")
	require.NoError(t, err)

	assert.True(t, first.Verify("secret123", record))
	assert.False(t, second.Verify("secret123", record))
}

/*
TestHasher_SaltedRecords verifies that hashing the same plaintext twice
produces distinct records (bcrypt salts are fresh per call).
*/
func TestHasher_SaltedRecords(t *testing.T) {
	hasher := sec.NewHasher("p3pp3r")

	firstRecord, err := hasher.Hash("secret123")
	require.NoError(t, err)
	secondRecord, err := hasher.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, firstRecord, secondRecord)
	assert.True(t, hasher.Verify("secret123", firstRecord))
	assert.True(t, hasher.Verify("secret123", secondRecord))
}

/*
TestHasher_MalformedRecord verifies that a garbage record fails verification
without panicking.
*/
func TestHasher_MalformedRecord(t *testing.T) {
	hasher := sec.NewHasher("p3pp3r")

	assert.False(t, hasher.Verify("secret123", "not-a-bcrypt-record"))
	assert.False(t, hasher.Verify("secret123", ""))
}
