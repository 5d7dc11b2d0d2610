// Copyright (c) 2026 Backalley. All rights reserved.

// Package sec provides cryptographic primitives for credentials and sessions.
//
// # Architecture
//
// This package isolates security-sensitive code (peppered password hashing,
// opaque token generation) from the domain logic. It is injected into the
// Application layer via constructors, never reached through globals.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor for password hashing.
// Fixed at 12 to keep stored records comparable across deployments.
const hashCost = 12

// Hasher hashes and verifies passwords using bcrypt plus a process-wide pepper.
//
// The pepper is concatenated to the plaintext before hashing, so a leaked
// credential table alone is not enough to mount an offline attack.
//
// # Immutability
//
// A Hasher is constructed once at startup from configuration and never
// mutated afterwards.
type Hasher struct {
	pepper string
}

// NewHasher constructs a [Hasher] with the given secret pepper.
//
// Callers must guarantee the pepper is non-empty; configuration loading
// refuses to start the process without it.
func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// Hash produces a storable bcrypt record for the peppered plaintext.
// The salt is generated fresh by bcrypt and embedded in the record.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plaintext+h.pepper), hashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify reports whether plaintext (plus the pepper) matches the stored record.
//
// bcrypt's comparison is constant-time. A malformed record is not an error
// condition for callers; it simply fails verification.
func (h *Hasher) Verify(plaintext, record string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(record), []byte(plaintext+h.pepper))
	return err == nil
}
