// Copyright (c) 2026 Backalley. All rights reserved.

package image

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

// CountByAuthor returns how many upload slots the author has claimed.
func (repository *PostgresRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	const query = `SELECT COUNT(*) FROM forum.image WHERE authorid = $1`

	var count int
	if err := repository.pool.QueryRow(ctx, query, authorID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count author images")
	}

	return count, nil
}

// Create records a claimed upload slot.
func (repository *PostgresRepository) Create(ctx context.Context, image *Image) error {
	const query = `
		INSERT INTO forum.image (id, authorid, objectkey, contenttype, filesize, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := repository.pool.Exec(ctx, query,
		image.ID, image.AuthorID, image.ObjectKey, image.ContentType, image.FileSize, image.CreatedAt); err != nil {
		return dberr.Wrap(err, "create image record")
	}

	return nil
}
