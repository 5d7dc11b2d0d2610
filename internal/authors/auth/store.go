// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import (
	"context"
	"errors"
)

// # Domain Sentinels

var (
	// ErrNameTaken indicates the requested author handle is already registered.
	ErrNameTaken = errors.New("auth: author name already taken")

	// ErrCodeInvalid indicates the presented invite code does not exist or has
	// already been redeemed. Callers must not reveal which.
	ErrCodeInvalid = errors.New("auth: invite code invalid or spent")

	// ErrQuotaExhausted indicates the issuing author has no invite allowance left.
	ErrQuotaExhausted = errors.New("auth: invite quota exhausted")

	// ErrDuplicateCode indicates an issued code collided with an existing one.
	ErrDuplicateCode = errors.New("auth: invite code already exists")
)

// # Storage Contracts

// AuthorRepository defines persistence operations for author records.
type AuthorRepository interface {
	// FindByID retrieves an author by primary key.
	FindByID(ctx context.Context, id string) (*Author, error)

	// FindByName retrieves an author by their unique handle.
	FindByName(ctx context.Context, name string) (*Author, error)
}

// InviteLedger defines the invite lifecycle operations.
//
// # Atomicity
//
// RedeemAndCreateAuthor is the only way an author row comes into existence.
// Implementations must make code redemption, author creation and quota
// seeding a single all-or-nothing unit, and must guarantee exactly one
// winner when the same code is redeemed concurrently.
type InviteLedger interface {
	// Issue creates a new open invite, decrementing the issuer's quota.
	// Returns [ErrQuotaExhausted] when the issuer has no allowance left and
	// [ErrDuplicateCode] when the chosen code collides.
	Issue(ctx context.Context, issuerID, code string) (*Invite, error)

	// RedeemAndCreateAuthor atomically consumes the invite code and creates
	// the author it admits, seeding the new author's own invite quota.
	// Returns [ErrCodeInvalid] if the code is unknown or already spent, and
	// [ErrNameTaken] if the handle is already registered.
	RedeemAndCreateAuthor(ctx context.Context, code string, author *Author, quota int) error

	// RemainingQuota reports how many invites the author may still issue.
	RemainingQuota(ctx context.Context, authorID string) (int, error)
}
