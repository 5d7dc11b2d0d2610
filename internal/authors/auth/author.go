// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import "time"

// # Entities

// Author represents a registered member of the community.
//
// Membership is invite-gated: an Author row only ever comes into existence
// together with the redemption of an invite code, inside one transaction.
type Author struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`

	// Name is the unique public handle the author registered with.
	Name string `json:"name"`

	// PasswordHash is the peppered bcrypt record. Never serialized.
	PasswordHash string `json:"-"`

	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Invite is a single-use registration grant issued by an existing author.
type Invite struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`

	// Code is the unique, caller-visible redemption string.
	Code string `json:"code"`

	// IssuedBy is the ID of the author who spent quota to create this invite.
	IssuedBy string `json:"issued_by"`

	// RedeemedBy is the ID of the author created through this invite,
	// or nil while the invite is still open.
	RedeemedBy *string `json:"redeemed_by,omitempty"`

	// CreatedAt is the issuance timestamp.
	CreatedAt time.Time `json:"created_at"`

	// RedeemedAt is when the invite was consumed, or nil while open.
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// # Entity Field Constraints

const (
	// NameMaxLength bounds the author handle.
	NameMaxLength = 32

	// NameMinLength keeps handles readable.
	NameMinLength = 2

	// PasswordMinLength is the minimum accepted password size.
	PasswordMinLength = 8

	// PasswordMaxLength guards bcrypt's 72-byte input ceiling, leaving
	// room for the pepper suffix.
	PasswordMaxLength = 56
)
