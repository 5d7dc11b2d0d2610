// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backalley/backalley/internal/platform/dberr"
	"github.com/backalley/backalley/pkg/uuidv7"
)

// # Author Repository

// PostgresAuthorRepository implements [AuthorRepository] using pgx.
type PostgresAuthorRepository struct {
	pool *pgxpool.Pool
}

// NewAuthorRepository creates a PostgreSQL implementation of [AuthorRepository].
func NewAuthorRepository(pool *pgxpool.Pool) *PostgresAuthorRepository {
	return &PostgresAuthorRepository{pool: pool}
}

/*
FindByID retrieves an author by primary key.

Parameters:
  - ctx: context.Context
  - id: string (UUIDv7 of the author)

Returns:
  - *Author: The found entity.
  - error: NOT_FOUND if no row matches, otherwise wrapped storage errors.
*/
func (repository *PostgresAuthorRepository) FindByID(ctx context.Context, id string) (*Author, error) {
	const query = `
		SELECT id, name, passwordhash, createdat
		FROM authors.author
		WHERE id = $1`

	author := &Author{}
	err := repository.pool.QueryRow(ctx, query, id).
		Scan(&author.ID, &author.Name, &author.PasswordHash, &author.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "find author by id")
	}

	return author, nil
}

// FindByName retrieves an author by their unique handle.
func (repository *PostgresAuthorRepository) FindByName(ctx context.Context, name string) (*Author, error) {
	const query = `
		SELECT id, name, passwordhash, createdat
		FROM authors.author
		WHERE name = $1`

	author := &Author{}
	err := repository.pool.QueryRow(ctx, query, name).
		Scan(&author.ID, &author.Name, &author.PasswordHash, &author.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "find author by name")
	}

	return author, nil
}

// # Invite Ledger

// PostgresInviteLedger implements [InviteLedger] using pgx transactions.
//
// # Concurrency
//
// Database transactions are the only serialization mechanism. Quota decrement
// and code redemption are guarded row updates whose WHERE clauses make the
// hot paths single-winner under concurrency, with no advisory locks and no
// application-side mutexes.
type PostgresInviteLedger struct {
	pool *pgxpool.Pool
}

// NewInviteLedger creates a PostgreSQL implementation of [InviteLedger].
func NewInviteLedger(pool *pgxpool.Pool) *PostgresInviteLedger {
	return &PostgresInviteLedger{pool: pool}
}

/*
Issue creates a new open invite after decrementing the issuer's quota.

Description: Runs a single transaction. The quota decrement only matches rows
with remaining allowance, so two racing issuers on the last slot produce
exactly one invite; the loser observes zero affected rows and gets
[ErrQuotaExhausted].

Parameters:
  - ctx: context.Context
  - issuerID: string (author spending quota)
  - code: string (caller-chosen redemption string)

Returns:
  - *Invite: The open invite as persisted.
  - error: [ErrQuotaExhausted], [ErrDuplicateCode], or wrapped storage errors.
*/
func (ledger *PostgresInviteLedger) Issue(ctx context.Context, issuerID, code string) (*Invite, error) {
	tx, err := ledger.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("invite ledger: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Spend one unit of quota. Zero affected rows means no allowance left.
	const decrementQuery = `
		UPDATE authors.invitequota
		SET remaining = remaining - 1
		WHERE authorid = $1 AND remaining > 0`

	tag, err := tx.Exec(ctx, decrementQuery, issuerID)
	if err != nil {
		return nil, dberr.Wrap(err, "decrement invite quota")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrQuotaExhausted
	}

	// 2. Persist the open invite under the unique code.
	const insertQuery = `
		INSERT INTO authors.invite (id, code, issuedby, createdat)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, issuedby, createdat`

	invite := &Invite{}
	err = tx.QueryRow(ctx, insertQuery, uuidv7.Must(), code, issuerID, time.Now().UTC()).
		Scan(&invite.ID, &invite.Code, &invite.IssuedBy, &invite.CreatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			// Rollback also restores the quota unit spent above.
			return nil, ErrDuplicateCode
		}
		return nil, dberr.Wrap(err, "insert invite")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("invite ledger: failed to commit issue: %w", err)
	}

	return invite, nil
}

/*
RedeemAndCreateAuthor atomically redeems an invite and creates its author.

Description: One transaction covers the whole admission: the author row is
inserted first so the redemption can reference it, the invite is then marked
redeemed only if still open, and finally the new author's own quota row is
seeded. Any failure rolls the entire admission back.

Parameters:
  - ctx: context.Context
  - code: string (invite code being redeemed)
  - author: *Author (fully populated entity to persist)
  - quota: int (invite allowance seeded for the new author)

Returns:
  - error: [ErrNameTaken], [ErrCodeInvalid], or wrapped storage errors.
*/
func (ledger *PostgresInviteLedger) RedeemAndCreateAuthor(ctx context.Context, code string, author *Author, quota int) error {
	tx, err := ledger.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("invite ledger: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Create the author row. The name's unique constraint arbitrates
	// concurrent registrations of the same handle.
	const insertAuthorQuery = `
		INSERT INTO authors.author (id, name, passwordhash, createdat)
		VALUES ($1, $2, $3, $4)`

	if _, err := tx.Exec(ctx, insertAuthorQuery,
		author.ID, author.Name, author.PasswordHash, author.CreatedAt); err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrNameTaken
		}
		return dberr.Wrap(err, "insert author")
	}

	// 2. Consume the invite. The IS NULL guard makes redemption single-winner:
	// a second transaction racing on the same code matches zero rows.
	const redeemQuery = `
		UPDATE authors.invite
		SET redeemedby = $2, redeemedat = $3
		WHERE code = $1 AND redeemedby IS NULL`

	tag, err := tx.Exec(ctx, redeemQuery, code, author.ID, time.Now().UTC())
	if err != nil {
		return dberr.Wrap(err, "redeem invite")
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeInvalid
	}

	// 3. Seed the new author's invite allowance.
	const seedQuotaQuery = `
		INSERT INTO authors.invitequota (authorid, remaining)
		VALUES ($1, $2)`

	if _, err := tx.Exec(ctx, seedQuotaQuery, author.ID, quota); err != nil {
		return dberr.Wrap(err, "seed invite quota")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("invite ledger: failed to commit redemption: %w", err)
	}

	return nil
}

// RemainingQuota reports the author's unspent invite allowance.
func (ledger *PostgresInviteLedger) RemainingQuota(ctx context.Context, authorID string) (int, error) {
	const query = `SELECT remaining FROM authors.invitequota WHERE authorid = $1`

	var remaining int
	err := ledger.pool.QueryRow(ctx, query, authorID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Pre-quota rows (the bootstrap author) read as zero allowance.
			return 0, nil
		}
		return 0, dberr.Wrap(err, "read invite quota")
	}

	return remaining, nil
}
