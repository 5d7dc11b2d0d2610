// Copyright (c) 2026 Backalley. All rights reserved.

package image_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/forum/image"
	"github.com/backalley/backalley/internal/platform/apperr"
)

// fakeImages counts slots per author in memory.
type fakeImages struct {
	records []*image.Image
}

func (f *fakeImages) CountByAuthor(_ context.Context, authorID string) (int, error) {
	count := 0
	for _, record := range f.records {
		if record.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (f *fakeImages) Create(_ context.Context, record *image.Image) error {
	f.records = append(f.records, record)
	return nil
}

// fakeSigner returns a deterministic URL.
type fakeSigner struct{ calls int }

func (f *fakeSigner) SignUpload(_ context.Context, key, _ string, _ int64) (string, error) {
	f.calls++
	return "https://bucket.example/" + key + "?signed", nil
}

/*
TestService_RequestUpload_GrantsSlot covers the happy path: type and size
accepted, slot recorded, URLs assembled.
*/
func TestService_RequestUpload_GrantsSlot(t *testing.T) {
	ctx := context.Background()
	repo := &fakeImages{}
	signer := &fakeSigner{}
	service := image.NewService(repo, signer, "https://cdn.backalley.club/")

	slot, err := service.RequestUpload(ctx, "author-a", "image/png", 1024)
	require.NoError(t, err)

	assert.Contains(t, slot.UploadURL, "?signed")
	assert.Contains(t, slot.ObjectKey, "images/author-a/")
	assert.Contains(t, slot.ObjectKey, ".png")
	assert.Equal(t, "https://cdn.backalley.club/"+slot.ObjectKey, slot.PublicURL)
	assert.Equal(t, 1, signer.calls)
	require.Len(t, repo.records, 1)
	assert.Equal(t, int64(1024), repo.records[0].FileSize)
}

/*
TestService_RequestUpload_Rejections covers the validation gates.
*/
func TestService_RequestUpload_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		contentType string
		fileSize    int64
	}{
		{"disallowed_type", "application/pdf", 1024},
		{"svg_not_allowed", "image/svg+xml", 1024},
		{"zero_size", "image/png", 0},
		{"negative_size", "image/png", -1},
		{"over_size_cap", "image/png", image.MaxFileSizeBytes + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeImages{}
			service := image.NewService(repo, &fakeSigner{}, "https://cdn.backalley.club")

			_, err := service.RequestUpload(ctx, "author-a", tt.contentType, tt.fileSize)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Empty(t, repo.records, "rejected requests must not spend a slot")
		})
	}

	t.Run("size_cap_is_inclusive", func(t *testing.T) {
		repo := &fakeImages{}
		service := image.NewService(repo, &fakeSigner{}, "https://cdn.backalley.club")

		_, err := service.RequestUpload(ctx, "author-a", "image/png", image.MaxFileSizeBytes)
		require.NoError(t, err)
	})
}

/*
TestService_RequestUpload_SlotCap verifies the per-author allowance.
*/
func TestService_RequestUpload_SlotCap(t *testing.T) {
	ctx := context.Background()
	repo := &fakeImages{}
	service := image.NewService(repo, &fakeSigner{}, "https://cdn.backalley.club")

	// Fill the allowance directly.
	for i := 0; i < image.MaxImagesPerAuthor; i++ {
		repo.records = append(repo.records, &image.Image{AuthorID: "author-a"})
	}

	_, err := service.RequestUpload(ctx, "author-a", "image/png", 1024)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 403, ae.HTTPStatus)

	// Another author is unaffected.
	_, err = service.RequestUpload(ctx, "author-b", "image/png", 1024)
	require.NoError(t, err)
}
