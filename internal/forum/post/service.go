// Copyright (c) 2026 Backalley. All rights reserved.

package post

import (
	"context"
	"errors"
	"time"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/dberr"
	"github.com/backalley/backalley/pkg/uuidv7"
)

// Service implements post and reply use cases.
type Service struct {
	posts    Repository
	cooldown time.Duration
}

// NewService constructs the post [Service] with its throttle window.
func NewService(posts Repository, cooldown time.Duration) *Service {
	return &Service{posts: posts, cooldown: cooldown}
}

// ListByRoom returns a room's posts with replies attached.
func (service *Service) ListByRoom(ctx context.Context, roomID string) ([]*Post, error) {
	return service.posts.ListByRoom(ctx, roomID)
}

// FindByID retrieves a single post with its replies.
func (service *Service) FindByID(ctx context.Context, id string) (*Post, error) {
	post, err := service.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Post")
		}
		return nil, err
	}
	return post, nil
}

// CreatePost writes a new post into the room.
//
// A suppressed duplicate is not an error to the caller: the throttle drops
// the content and the request reports success, so abusers learn nothing.
// The returned post is nil in that case.
func (service *Service) CreatePost(ctx context.Context, authorID, roomID, text string, imageURL *string) (*Post, error) {
	created := &Post{
		ID:        uuidv7.Must(),
		RoomID:    roomID,
		AuthorID:  authorID,
		Text:      text,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}

	err := service.posts.CreatePost(ctx, created, service.cooldown)
	if err != nil {
		if errors.Is(err, ErrSuppressed) {
			return nil, nil
		}
		return nil, err
	}

	return created, nil
}

// CreateReply writes a new reply under the post.
//
// Suppressed duplicates report success with a nil reply, same as CreatePost.
func (service *Service) CreateReply(ctx context.Context, authorID, postID, text string, imageURL *string) (*Reply, error) {
	created := &Reply{
		ID:        uuidv7.Must(),
		PostID:    postID,
		AuthorID:  authorID,
		Text:      text,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}

	err := service.posts.CreateReply(ctx, created, service.cooldown)
	if err != nil {
		switch {
		case errors.Is(err, ErrSuppressed):
			return nil, nil
		case errors.Is(err, dberr.ErrNotFound):
			return nil, apperr.NotFound("Post")
		default:
			return nil, err
		}
	}

	return created, nil
}
