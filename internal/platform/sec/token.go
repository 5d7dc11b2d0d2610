// Copyright (c) 2026 Backalley. All rights reserved.

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// sessionTokenBytes is the entropy of a session token. 32 bytes (256 bits)
// is double the unguessability floor required for a bearer credential.
const sessionTokenBytes = 32

// NewSessionToken generates a fresh opaque session token.
//
// The token is cryptographically random and URL-safe, suitable for transport
// in a cookie value.
func NewSessionToken() (string, error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Principal identifies the authenticated author behind a resolved session.
//
// # Why in sec?
//
// Both the middleware chain and the auth domain need this type; hosting it
// here keeps the platform layer free of domain imports.
type Principal struct {
	// AuthorID is the identifier of the authenticated author.
	AuthorID string `json:"author_id"`

	// SessionToken is the opaque credential the principal presented.
	SessionToken string `json:"-"`

	// ExpiresAt is the fixed end of the session's validity window.
	// It is stamped at issuance and never extended on read.
	ExpiresAt time.Time `json:"expires_at"`
}
