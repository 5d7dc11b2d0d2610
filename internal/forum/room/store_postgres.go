// Copyright (c) 2026 Backalley. All rights reserved.

package room

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backalley/backalley/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns all rooms, newest first.
func (repository *PostgresRepository) List(ctx context.Context) ([]*Room, error) {
	const query = `
		SELECT id, name, createdby, createdat
		FROM forum.room
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list rooms")
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		room := &Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedBy, &room.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan room")
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate rooms")
	}

	return rooms, nil
}

// FindByName retrieves a room by its unique name.
func (repository *PostgresRepository) FindByName(ctx context.Context, name string) (*Room, error) {
	const query = `
		SELECT id, name, createdby, createdat
		FROM forum.room
		WHERE name = $1`

	room := &Room{}
	err := repository.pool.QueryRow(ctx, query, name).
		Scan(&room.ID, &room.Name, &room.CreatedBy, &room.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "find room by name")
	}

	return room, nil
}

// Create persists a new room.
func (repository *PostgresRepository) Create(ctx context.Context, room *Room) error {
	const query = `
		INSERT INTO forum.room (id, name, createdby, createdat)
		VALUES ($1, $2, $3, $4)`

	if _, err := repository.pool.Exec(ctx, query,
		room.ID, room.Name, room.CreatedBy, room.CreatedAt); err != nil {
		return dberr.Wrap(err, "create room")
	}

	return nil
}
