// Copyright (c) 2026 Backalley. All rights reserved.

/*
Package post manages forum posts, their replies, and the content throttle.

The throttle is the forum's core anti-abuse mechanism: an author repeating
identical text into the same scope (room for posts, post for replies) within
the cooldown window is silently suppressed. Suppression is decided and
enforced inside the same database transaction that would insert the content,
so two racing duplicates cannot both land.
*/
package post

import (
	"context"
	"errors"
	"time"
)

// ErrSuppressed indicates the content was dropped by the cooldown throttle.
var ErrSuppressed = errors.New("post: duplicate content suppressed by cooldown")

// TextMaxLength bounds post and reply bodies.
const TextMaxLength = 200

// Post is a top-level message in a room.
type Post struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`

	// RoomID is the containing room.
	RoomID string `json:"room_id"`

	// AuthorID is the posting author.
	AuthorID string `json:"author_id"`

	// AuthorName is the author's handle, joined at read time. Not stored.
	AuthorName string `json:"author_name,omitempty"`

	// Text is the message body.
	Text string `json:"text"`

	// ImageURL optionally links an uploaded image to the post.
	ImageURL *string `json:"image_url,omitempty"`

	// CreatedAt is the posting timestamp.
	CreatedAt time.Time `json:"created_at"`

	// Replies are the post's replies, chronological. Populated on reads.
	Replies []*Reply `json:"replies,omitempty"`
}

// Reply is a message attached to a post.
type Reply struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`

	// PostID is the parent post.
	PostID string `json:"post_id"`

	// AuthorID is the replying author.
	AuthorID string `json:"author_id"`

	// AuthorName is the author's handle, joined at read time. Not stored.
	AuthorName string `json:"author_name,omitempty"`

	// Text is the message body.
	Text string `json:"text"`

	// ImageURL optionally links an uploaded image to the reply.
	ImageURL *string `json:"image_url,omitempty"`

	// CreatedAt is the reply timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines persistence operations for posts and replies.
//
// # Throttle Contract
//
// CreatePost and CreateReply take the cooldown window and enforce it inside
// their transaction: if the same author wrote identical text into the same
// scope within the window, the insert is skipped and [ErrSuppressed] is
// returned.
type Repository interface {
	// ListByRoom returns a room's posts (newest first) with replies attached.
	ListByRoom(ctx context.Context, roomID string) ([]*Post, error)

	// FindByID retrieves a single post with its replies.
	FindByID(ctx context.Context, id string) (*Post, error)

	// CreatePost inserts a post unless the throttle suppresses it.
	CreatePost(ctx context.Context, post *Post, cooldown time.Duration) error

	// CreateReply inserts a reply unless the throttle suppresses it.
	CreateReply(ctx context.Context, reply *Reply, cooldown time.Duration) error
}
