// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backalley/backalley/internal/platform/apperr"
)

// # PostgreSQL Session Store

// PostgresSessionStore implements [SessionStore] on the authors.session table.
//
// This is the default backend: sessions survive restarts and are shared by
// every API replica pointing at the same database.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionStore creates a PostgreSQL-backed session store.
func NewPostgresSessionStore(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

/*
Write upserts the payload under the given token.

Description: Uses ON CONFLICT so re-writing an existing token replaces its
payload atomically, satisfying the upsert rule of the [SessionStore] contract.

Parameters:
  - ctx: context.Context
  - token: string (opaque session token, primary key)
  - payload: []byte (opaque session payload)

Returns:
  - error: Connectivity or constraint errors.
*/
func (store *PostgresSessionStore) Write(ctx context.Context, token string, payload []byte) error {
	const query = `
		INSERT INTO authors.session (token, payload, createdat)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET payload = EXCLUDED.payload`

	if _, err := store.pool.Exec(ctx, query, token, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("session store: failed to write session: %w", err)
	}

	return nil
}

// Read returns the payload stored under token, or NOT_FOUND.
func (store *PostgresSessionStore) Read(ctx context.Context, token string) ([]byte, error) {
	const query = `SELECT payload FROM authors.session WHERE token = $1`

	var payload []byte
	err := store.pool.QueryRow(ctx, query, token).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("session store: failed to read session: %w", err)
	}

	return payload, nil
}

// Invalidate deletes the token's row. Deleting an absent token is a no-op.
func (store *PostgresSessionStore) Invalidate(ctx context.Context, token string) error {
	const query = `DELETE FROM authors.session WHERE token = $1`

	if _, err := store.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("session store: failed to invalidate session: %w", err)
	}

	return nil
}
