// Copyright (c) 2026 Backalley. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/platform/sec"
)

/*
TestNewSessionToken verifies token shape and uniqueness.
*/
func TestNewSessionToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := sec.NewSessionToken()
		require.NoError(t, err)

		// 32 random bytes encode to 43 base64url characters.
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")

		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}
