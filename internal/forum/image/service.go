// Copyright (c) 2026 Backalley. All rights reserved.

package image

import (
	"context"
	"strings"
	"time"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/pkg/uuidv7"
)

// UploadSlot is the response to a granted upload request.
type UploadSlot struct {
	// UploadURL is the pre-signed PUT URL the client uploads to.
	UploadURL string `json:"upload_url"`

	// PublicURL is where the object becomes reachable after upload.
	PublicURL string `json:"public_url"`

	// ObjectKey is the bucket key, returned for client bookkeeping.
	ObjectKey string `json:"object_key"`

	// ExpiresAt is when the pre-signed URL stops working.
	ExpiresAt time.Time `json:"expires_at"`
}

// Service implements upload slot issuance.
type Service struct {
	images        Repository
	signer        URLSigner
	publicBaseURL string
}

// NewService constructs the image [Service].
func NewService(images Repository, signer URLSigner, publicBaseURL string) *Service {
	return &Service{
		images:        images,
		signer:        signer,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

/*
RequestUpload grants an upload slot to the author.

Description: Validates the declared content type and size, checks the
author's slot allowance, records the claim, and signs the upload URL. The
claim is recorded before the client uploads anything: an abandoned upload
still spends a slot.

Parameters:
  - ctx: context.Context
  - authorID: string (claiming author)
  - contentType: string (declared MIME type, must be in the allowlist)
  - fileSize: int64 (declared size in bytes)

Returns:
  - *UploadSlot: The signed upload grant.
  - error: Validation or allowance rejections, or signing failures.
*/
func (service *Service) RequestUpload(ctx context.Context, authorID, contentType string, fileSize int64) (*UploadSlot, error) {

	// 1. Declared file must be an allowed image type within the size cap
	if !isAllowedContentType(contentType) {
		return nil, apperr.ValidationError("Unsupported image type", apperr.FieldError{
			Field:   FieldContentType,
			Message: "Must be one of: " + strings.Join(AllowedContentTypes, ", "),
		})
	}
	if fileSize <= 0 || fileSize > MaxFileSizeBytes {
		return nil, apperr.ValidationError("File too large", apperr.FieldError{
			Field:   FieldFileSize,
			Message: "Maximum 5 MiB",
		})
	}

	// 2. Enforce the per-author slot cap
	count, err := service.images.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if count >= MaxImagesPerAuthor {
		return nil, apperr.Forbidden("Image limit reached")
	}

	// 3. Record the claim under a fresh object key
	record := &Image{
		ID:          uuidv7.Must(),
		AuthorID:    authorID,
		ContentType: contentType,
		FileSize:    fileSize,
		CreatedAt:   time.Now().UTC(),
	}
	record.ObjectKey = "images/" + authorID + "/" + record.ID + extensionFor(contentType)

	if err := service.images.Create(ctx, record); err != nil {
		return nil, err
	}

	// 4. Sign the upload URL last, once the claim is durable
	uploadURL, err := service.signer.SignUpload(ctx, record.ObjectKey, contentType, fileSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &UploadSlot{
		UploadURL: uploadURL,
		PublicURL: service.publicBaseURL + "/" + record.ObjectKey,
		ObjectKey: record.ObjectKey,
		ExpiresAt: time.Now().UTC().Add(PresignTTL),
	}, nil
}

// isAllowedContentType checks the MIME allowlist.
func isAllowedContentType(contentType string) bool {
	for _, allowed := range AllowedContentTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
