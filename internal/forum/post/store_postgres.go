// Copyright (c) 2026 Backalley. All rights reserved.

package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backalley/backalley/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// # Concurrency
//
// The throttle check and the insert share one transaction. The duplicate
// probe locks the latest matching row with FOR UPDATE, so a racing duplicate
// of existing content waits and then observes the fresh timestamp. This is
// the only serialization mechanism; there are no application-side locks.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Reads

// ListByRoom returns a room's posts, newest first, with replies attached.
func (repository *PostgresRepository) ListByRoom(ctx context.Context, roomID string) ([]*Post, error) {
	const postsQuery = `
		SELECT p.id, p.roomid, p.authorid, a.name, p.text, p.imageurl, p.createdat
		FROM forum.post p
		JOIN authors.author a ON a.id = p.authorid
		WHERE p.roomid = $1
		ORDER BY p.createdat DESC`

	rows, err := repository.pool.Query(ctx, postsQuery, roomID)
	if err != nil {
		return nil, dberr.Wrap(err, "list posts")
	}
	defer rows.Close()

	var posts []*Post
	byID := make(map[string]*Post)

	for rows.Next() {
		post := &Post{}
		if err := rows.Scan(&post.ID, &post.RoomID, &post.AuthorID, &post.AuthorName, &post.Text, &post.ImageURL, &post.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan post")
		}
		posts = append(posts, post)
		byID[post.ID] = post
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate posts")
	}

	if len(posts) == 0 {
		return posts, nil
	}

	// Attach replies in one query for the whole room.
	const repliesQuery = `
		SELECT r.id, r.postid, r.authorid, a.name, r.text, r.imageurl, r.createdat
		FROM forum.reply r
		JOIN authors.author a ON a.id = r.authorid
		JOIN forum.post p ON p.id = r.postid
		WHERE p.roomid = $1
		ORDER BY r.createdat ASC`

	replyRows, err := repository.pool.Query(ctx, repliesQuery, roomID)
	if err != nil {
		return nil, dberr.Wrap(err, "list replies")
	}
	defer replyRows.Close()

	for replyRows.Next() {
		reply := &Reply{}
		if err := replyRows.Scan(&reply.ID, &reply.PostID, &reply.AuthorID, &reply.AuthorName, &reply.Text, &reply.ImageURL, &reply.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan reply")
		}
		if parent, found := byID[reply.PostID]; found {
			parent.Replies = append(parent.Replies, reply)
		}
	}
	if err := replyRows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate replies")
	}

	return posts, nil
}

// FindByID retrieves a single post with its replies.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	const postQuery = `
		SELECT p.id, p.roomid, p.authorid, a.name, p.text, p.imageurl, p.createdat
		FROM forum.post p
		JOIN authors.author a ON a.id = p.authorid
		WHERE p.id = $1`

	post := &Post{}
	err := repository.pool.QueryRow(ctx, postQuery, id).
		Scan(&post.ID, &post.RoomID, &post.AuthorID, &post.AuthorName, &post.Text, &post.ImageURL, &post.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "find post by id")
	}

	const repliesQuery = `
		SELECT r.id, r.postid, r.authorid, a.name, r.text, r.imageurl, r.createdat
		FROM forum.reply r
		JOIN authors.author a ON a.id = r.authorid
		WHERE r.postid = $1
		ORDER BY r.createdat ASC`

	rows, err := repository.pool.Query(ctx, repliesQuery, id)
	if err != nil {
		return nil, dberr.Wrap(err, "list post replies")
	}
	defer rows.Close()

	for rows.Next() {
		reply := &Reply{}
		if err := rows.Scan(&reply.ID, &reply.PostID, &reply.AuthorID, &reply.AuthorName, &reply.Text, &reply.ImageURL, &reply.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan reply")
		}
		post.Replies = append(post.Replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate post replies")
	}

	return post, nil
}

// # Throttled Writes

/*
CreatePost inserts a post unless the cooldown throttle suppresses it.

Description: Within one transaction, probes for the author's latest identical
text in the same room, locking the row. If that row falls inside the cooldown
window the insert is skipped and [ErrSuppressed] is returned; the rolled-back
transaction leaves no trace of the attempt.

Parameters:
  - ctx: context.Context
  - post: *Post (fully populated entity to persist)
  - cooldown: time.Duration (suppression window)

Returns:
  - error: [ErrSuppressed] or wrapped storage errors.
*/
func (repository *PostgresRepository) CreatePost(ctx context.Context, post *Post, cooldown time.Duration) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("post store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const probeQuery = `
		SELECT createdat
		FROM forum.post
		WHERE authorid = $1 AND roomid = $2 AND text = $3
		ORDER BY createdat DESC
		LIMIT 1
		FOR UPDATE`

	suppressed, err := withinCooldown(ctx, tx, probeQuery, cooldown, post.AuthorID, post.RoomID, post.Text)
	if err != nil {
		return err
	}
	if suppressed {
		return ErrSuppressed
	}

	const insertQuery = `
		INSERT INTO forum.post (id, roomid, authorid, text, imageurl, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.Exec(ctx, insertQuery,
		post.ID, post.RoomID, post.AuthorID, post.Text, post.ImageURL, post.CreatedAt); err != nil {
		return dberr.Wrap(err, "insert post")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("post store: failed to commit post: %w", err)
	}

	return nil
}

// CreateReply inserts a reply unless the cooldown throttle suppresses it.
// The throttle scope for replies is the parent post.
func (repository *PostgresRepository) CreateReply(ctx context.Context, reply *Reply, cooldown time.Duration) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("post store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Verify the parent exists inside the same transaction.
	const parentQuery = `SELECT 1 FROM forum.post WHERE id = $1`
	var one int
	if err := tx.QueryRow(ctx, parentQuery, reply.PostID).Scan(&one); err != nil {
		return dberr.Wrap(err, "find parent post")
	}

	const probeQuery = `
		SELECT createdat
		FROM forum.reply
		WHERE authorid = $1 AND postid = $2 AND text = $3
		ORDER BY createdat DESC
		LIMIT 1
		FOR UPDATE`

	suppressed, err := withinCooldown(ctx, tx, probeQuery, cooldown, reply.AuthorID, reply.PostID, reply.Text)
	if err != nil {
		return err
	}
	if suppressed {
		return ErrSuppressed
	}

	const insertQuery = `
		INSERT INTO forum.reply (id, postid, authorid, text, imageurl, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.Exec(ctx, insertQuery,
		reply.ID, reply.PostID, reply.AuthorID, reply.Text, reply.ImageURL, reply.CreatedAt); err != nil {
		return dberr.Wrap(err, "insert reply")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("post store: failed to commit reply: %w", err)
	}

	return nil
}

// withinCooldown runs a latest-duplicate probe and reports whether the most
// recent match falls inside the cooldown window. No match means no throttle.
func withinCooldown(ctx context.Context, tx pgx.Tx, probeQuery string, cooldown time.Duration, args ...any) (bool, error) {
	var latest time.Time
	err := tx.QueryRow(ctx, probeQuery, args...).Scan(&latest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, dberr.Wrap(err, "probe duplicate content")
	}

	// The window is inclusive: a duplicate landing exactly at the cooldown
	// boundary is still suppressed.
	return time.Since(latest) <= cooldown, nil
}
