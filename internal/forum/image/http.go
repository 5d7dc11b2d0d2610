// Copyright (c) 2026 Backalley. All rights reserved.

package image

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/backalley/backalley/internal/platform/middleware"
	requestutil "github.com/backalley/backalley/internal/platform/request"
	"github.com/backalley/backalley/internal/platform/respond"
	"github.com/backalley/backalley/internal/platform/validate"
)

// Query parameter identifiers.
const (
	FieldContentType = "contentType"
	FieldFileSize    = "fileSize"
)

// Handler implements the HTTP delivery layer for image uploads.
type Handler struct {
	imageService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{imageService: service}
}

// Routes returns a [chi.Router] configured with image routes.
//
// # Endpoints
//   - GET /upload : Claim a pre-signed upload slot (authenticated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/upload", handler.upload)
	})

	return router
}

/*
Upload claims a pre-signed upload slot.

GET /api/v1/image/upload?contentType=image/png&fileSize=12345

Response:
  - 200: UploadSlot: Pre-signed PUT URL and public URL
  - 400: VALIDATION_ERROR: Bad content type or size
  - 403: FORBIDDEN: Image limit reached or no live session
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contentType := request.URL.Query().Get(FieldContentType)
	if contentType == "" {
		respond.Error(writer, request, validate.RequiredError(FieldContentType, "This field is required"))
		return
	}

	fileSize, err := strconv.ParseInt(request.URL.Query().Get(FieldFileSize), 10, 64)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldFileSize, "Must be a byte count"))
		return
	}

	slot, err := handler.imageService.RequestUpload(request.Context(), authorID, contentType, fileSize)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, slot)
}
