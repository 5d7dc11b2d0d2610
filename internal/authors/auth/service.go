// Copyright (c) 2026 Backalley. All rights reserved.

/*
Package auth implements identity and admission for the Backalley community.

It covers invite-gated registration, peppered credential verification, and
opaque cookie session lifecycle management.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Invite issuance).
  - Ledger: Transactional invite bookkeeping (single-winner redemption).
  - Policy: Session meaning (identity, expiry) over blind token stores.

Registration and invites are deliberately conservative: every failure on the
registration path collapses into one generic rejection so that invite codes
and taken handles cannot be probed from outside.
*/
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/dberr"
	"github.com/backalley/backalley/internal/platform/sec"
	"github.com/backalley/backalley/pkg/uuidv7"
)

// # Service

// Service implements author authentication and admission use cases.
//
// # Review Process
//
// This service is security-critical. Changes to hashing, registration or
// session logic require a second reviewer.
type Service struct {
	authors     AuthorRepository
	invites     InviteLedger
	sessions    *SessionPolicy
	hasher      *sec.Hasher
	inviteQuota int
}

// NewService constructs the auth [Service] with its dependencies.
func NewService(
	authors AuthorRepository,
	invites InviteLedger,
	sessions *SessionPolicy,
	hasher *sec.Hasher,
	inviteQuota int,
) *Service {
	return &Service{
		authors:     authors,
		invites:     invites,
		sessions:    sessions,
		hasher:      hasher,
		inviteQuota: inviteQuota,
	}
}

// # Registration Flow

/*
Register admits a new author through an invite code.

Description: Hashes the password, then delegates to the ledger's atomic
redeem-and-create. A spent code, an unknown code and a taken handle are all
reported as the same generic rejection.

Registration logs the new author in immediately: a session is issued for the
created account so the response can set the cookie in the same round trip.

Parameters:
  - ctx: context.Context
  - name: string (desired unique handle, pre-validated by the handler)
  - password: string (plaintext credential, pre-validated by the handler)
  - inviteCode: string (caller-supplied admission code)

Returns:
  - *Author: The newly created author.
  - *sec.Principal: The live session minted for the new author.
  - error: The generic REGISTRATION_FAILED rejection, or internal errors.
*/
func (service *Service) Register(ctx context.Context, name, password, inviteCode string) (*Author, *sec.Principal, error) {

	// 1. Hash the credential before touching storage
	passwordHash, err := service.hasher.Hash(password)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}

	author := &Author{
		ID:           uuidv7.Must(),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	// 2. Atomic admission: redeem the code, create the author, seed quota
	err = service.invites.RedeemAndCreateAuthor(ctx, inviteCode, author, service.inviteQuota)
	if err != nil {
		if errors.Is(err, ErrCodeInvalid) || errors.Is(err, ErrNameTaken) {
			// Collapse all admission failures into one opaque rejection.
			return nil, nil, apperr.RegistrationFailed()
		}
		return nil, nil, err
	}

	// 3. Log the new author in
	principal, err := service.sessions.Issue(ctx, author.ID)
	if err != nil {
		return nil, nil, err
	}

	return author, principal, nil
}

// # Login Flow

/*
Login verifies credentials and returns a live session principal.

Description: If the caller already presented a token that resolves to a live
session for the same author, that session is reused and no new one is minted.
Login error messages are intentionally asymmetric with registration: they
name whether the handle or the password was wrong.

Parameters:
  - ctx: context.Context
  - name: string (author handle)
  - password: string (plaintext credential)
  - presentedToken: string (session token from the request cookie, may be empty)

Returns:
  - *sec.Principal: The live session principal (reused or freshly issued).
  - error: 403 rejections for bad credentials, or internal errors.
*/
func (service *Service) Login(ctx context.Context, name, password, presentedToken string) (*sec.Principal, error) {

	// 1. Locate the author
	author, err := service.authors.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Forbidden("author not found")
		}
		return nil, err
	}

	// 2. Verify the peppered credential
	if !service.hasher.Verify(password, author.PasswordHash) {
		return nil, apperr.Forbidden("wrong password")
	}

	// 3. Reuse a live session if the caller already holds one
	if presentedToken != "" {
		if principal, err := service.sessions.Resolve(ctx, presentedToken); err == nil && principal.AuthorID == author.ID {
			return principal, nil
		}
	}

	// 4. Otherwise mint a fresh session
	return service.sessions.Issue(ctx, author.ID)
}

// Logout terminates the presented session. Unknown tokens succeed silently.
func (service *Service) Logout(ctx context.Context, token string) error {
	return service.sessions.Invalidate(ctx, token)
}

// # Invite Flow

// IssueInvite spends one unit of the issuer's quota on a new open invite.
func (service *Service) IssueInvite(ctx context.Context, issuerID, code string) (*Invite, error) {
	invite, err := service.invites.Issue(ctx, issuerID, code)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuotaExhausted):
			return nil, apperr.Forbidden("Invite quota exhausted")
		case errors.Is(err, ErrDuplicateCode):
			return nil, apperr.Conflict("Invite code already exists")
		default:
			return nil, err
		}
	}
	return invite, nil
}

// # Author Status

// Status is the authenticated author's account snapshot.
type Status struct {
	// Author is the account behind the live session.
	Author *Author `json:"author"`
	// InvitesRemaining is the unspent invite allowance.
	InvitesRemaining int `json:"invites_remaining"`
	// SessionExpiresAt is the fixed end of the current session window.
	SessionExpiresAt time.Time `json:"session_expires_at"`
}

// AuthorStatus returns the account snapshot for a live principal.
func (service *Service) AuthorStatus(ctx context.Context, principal *sec.Principal) (*Status, error) {
	author, err := service.authors.FindByID(ctx, principal.AuthorID)
	if err != nil {
		return nil, err
	}

	remaining, err := service.invites.RemainingQuota(ctx, principal.AuthorID)
	if err != nil {
		return nil, err
	}

	return &Status{
		Author:           author,
		InvitesRemaining: remaining,
		SessionExpiresAt: principal.ExpiresAt,
	}, nil
}
