// Copyright (c) 2026 Backalley. All rights reserved.

/*
Package image manages author image uploads via pre-signed object storage URLs.

The API never proxies image bytes. An authenticated author asks for an upload
slot, the service checks their allowance and the declared file, and the
response carries a short-lived pre-signed PUT URL pointing at the bucket. The
client uploads directly; the recorded row counts against the author's cap
immediately, whether or not the upload completes.
*/
package image

import (
	"context"
	"time"
)

// # Upload Policy

const (
	// MaxFileSizeBytes caps a single declared upload at 5 MiB.
	MaxFileSizeBytes = 5 * 1024 * 1024

	// MaxImagesPerAuthor caps the number of upload slots an author may claim.
	MaxImagesPerAuthor = 100

	// PresignTTL is how long a pre-signed PUT URL stays valid.
	PresignTTL = 10 * time.Minute
)

// AllowedContentTypes is the accepted image MIME allowlist.
var AllowedContentTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Image records a claimed upload slot.
type Image struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`

	// AuthorID is the claiming author.
	AuthorID string `json:"author_id"`

	// ObjectKey is the bucket key the pre-signed URL targets.
	ObjectKey string `json:"object_key"`

	// ContentType is the declared MIME type.
	ContentType string `json:"content_type"`

	// FileSize is the declared size in bytes.
	FileSize int64 `json:"file_size"`

	// CreatedAt is when the slot was claimed.
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines persistence operations for upload slots.
type Repository interface {
	// CountByAuthor returns how many slots the author has claimed.
	CountByAuthor(ctx context.Context, authorID string) (int, error)

	// Create records a claimed slot.
	Create(ctx context.Context, image *Image) error
}
