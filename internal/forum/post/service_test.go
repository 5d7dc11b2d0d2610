// Copyright (c) 2026 Backalley. All rights reserved.

package post_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/forum/post"
	"github.com/backalley/backalley/internal/platform/dberr"
)

// # Test Double

// fakeRepo mimics the store's transactional throttle with in-memory slices.
type fakeRepo struct {
	posts   []*post.Post
	replies []*post.Reply
}

func (f *fakeRepo) ListByRoom(_ context.Context, roomID string) ([]*post.Post, error) {
	var out []*post.Post
	for _, p := range f.posts {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*post.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepo) CreatePost(_ context.Context, created *post.Post, cooldown time.Duration) error {
	for _, existing := range f.posts {
		if existing.AuthorID == created.AuthorID &&
			existing.RoomID == created.RoomID &&
			existing.Text == created.Text &&
			time.Since(existing.CreatedAt) <= cooldown {
			return post.ErrSuppressed
		}
	}
	f.posts = append(f.posts, created)
	return nil
}

func (f *fakeRepo) CreateReply(_ context.Context, created *post.Reply, cooldown time.Duration) error {
	if _, err := f.FindByID(context.Background(), created.PostID); err != nil {
		return err
	}
	for _, existing := range f.replies {
		if existing.AuthorID == created.AuthorID &&
			existing.PostID == created.PostID &&
			existing.Text == created.Text &&
			time.Since(existing.CreatedAt) <= cooldown {
			return post.ErrSuppressed
		}
	}
	f.replies = append(f.replies, created)
	return nil
}

// # Throttle Behavior

/*
TestService_CreatePost_ThrottleWalk runs the canonical suppression scenario:
identical text twice inside the window creates one row, and the duplicate
reports success with no created post. After the window elapses the same text
lands again.
*/
func TestService_CreatePost_ThrottleWalk(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	service := post.NewService(repo, 30*time.Second)

	first, err := service.CreatePost(ctx, "author-a", "room-r", "hello", nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Identical content inside the window: silent no-op, one row total.
	second, err := service.CreatePost(ctx, "author-a", "room-r", "hello", nil)
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Len(t, repo.posts, 1)

	// Different text is never throttled.
	third, err := service.CreatePost(ctx, "author-a", "room-r", "hello again", nil)
	require.NoError(t, err)
	require.NotNil(t, third)

	// Another author repeating the same text is not throttled either.
	fourth, err := service.CreatePost(ctx, "author-b", "room-r", "hello", nil)
	require.NoError(t, err)
	require.NotNil(t, fourth)

	// Backdate the original so the cooldown has elapsed.
	first.CreatedAt = first.CreatedAt.Add(-31 * time.Second)

	fifth, err := service.CreatePost(ctx, "author-a", "room-r", "hello", nil)
	require.NoError(t, err)
	require.NotNil(t, fifth)
	assert.Len(t, repo.posts, 4)
}

/*
TestService_CreateReply_Throttle verifies the reply throttle is scoped to the
parent post, not the room.
*/
func TestService_CreateReply_Throttle(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	service := post.NewService(repo, 30*time.Second)

	parentOne, err := service.CreatePost(ctx, "author-a", "room-r", "thread one", nil)
	require.NoError(t, err)
	parentTwo, err := service.CreatePost(ctx, "author-a", "room-r", "thread two", nil)
	require.NoError(t, err)

	first, err := service.CreateReply(ctx, "author-a", parentOne.ID, "me too", nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Same text under the same post: suppressed.
	second, err := service.CreateReply(ctx, "author-a", parentOne.ID, "me too", nil)
	require.NoError(t, err)
	assert.Nil(t, second)

	// Same text under a different post: allowed.
	third, err := service.CreateReply(ctx, "author-a", parentTwo.ID, "me too", nil)
	require.NoError(t, err)
	require.NotNil(t, third)
}

/*
TestService_Create_AttachesImageURL carries the optional image link through
post and reply creation, and leaves it nil when the caller omits it.
*/
func TestService_Create_AttachesImageURL(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	service := post.NewService(repo, 30*time.Second)

	imageURL := "https://img.backalley.club/images/author-a/pic.png"

	created, err := service.CreatePost(ctx, "author-a", "room-r", "look at this", &imageURL)
	require.NoError(t, err)
	require.NotNil(t, created.ImageURL)
	assert.Equal(t, imageURL, *created.ImageURL)

	reply, err := service.CreateReply(ctx, "author-a", created.ID, "same picture", &imageURL)
	require.NoError(t, err)
	require.NotNil(t, reply.ImageURL)
	assert.Equal(t, imageURL, *reply.ImageURL)

	plain, err := service.CreatePost(ctx, "author-a", "room-r", "no picture", nil)
	require.NoError(t, err)
	assert.Nil(t, plain.ImageURL)
}

/*
TestService_CreateReply_UnknownParent maps a missing parent to NOT_FOUND.
*/
func TestService_CreateReply_UnknownParent(t *testing.T) {
	ctx := context.Background()
	service := post.NewService(&fakeRepo{}, 30*time.Second)

	_, err := service.CreateReply(ctx, "author-a", "no-such-post", "hello", nil)
	require.Error(t, err)
}

/*
TestService_FindByID_NotFound maps a missing post to NOT_FOUND.
*/
func TestService_FindByID_NotFound(t *testing.T) {
	ctx := context.Background()
	service := post.NewService(&fakeRepo{}, 30*time.Second)

	_, err := service.FindByID(ctx, "missing")
	require.Error(t, err)
}
