// Copyright (c) 2026 Backalley. All rights reserved.

package post

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/backalley/backalley/internal/forum/room"
	requestutil "github.com/backalley/backalley/internal/platform/request"
	"github.com/backalley/backalley/internal/platform/respond"
	"github.com/backalley/backalley/internal/platform/validate"
)

// FieldText is the JSON field identifier for message bodies.
const FieldText = "text"

// RoomResolver resolves the room name used in post URLs.
type RoomResolver interface {
	FindByName(ctx context.Context, name string) (*room.Room, error)
}

// Handler implements the HTTP delivery layer for posts and replies.
//
// # Response Shape
//
// The write endpoints answer with the same generic acknowledgement whether
// the content landed, was throttled, was empty, or came from a dead session.
// Clients cannot distinguish a suppressed write from a successful one, which
// is what keeps the throttle unprobeable.
type Handler struct {
	postService *Service
	rooms       RoomResolver
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, rooms RoomResolver) *Handler {
	return &Handler{postService: service, rooms: rooms}
}

// Routes returns a [chi.Router] configured with post routes.
//
// # Endpoints
//   - GET  /{room}      : List a room's posts with replies.
//   - POST /{room}      : Write a post (silent no-op without a session).
//   - GET  /{room}/{id} : Fetch one post with replies.
//   - POST /{room}/{id} : Write a reply (silent no-op without a session).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{room}", handler.listByRoom)
	router.Post("/{room}", handler.createPost)
	router.Get("/{room}/{id}", handler.findByID)
	router.Post("/{room}/{id}", handler.createReply)

	return router
}

type writeRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

/*
ListByRoom returns a room's posts.

GET /api/v1/posts/{room}

Response:
  - 200: []Post: Posts newest first, replies chronological
  - 404: NOT_FOUND: Unknown room
*/
func (handler *Handler) listByRoom(writer http.ResponseWriter, request *http.Request) {
	target, err := handler.rooms.FindByName(request.Context(), requestutil.Param(request, "room"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	posts, err := handler.postService.ListByRoom(request.Context(), target.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if posts == nil {
		posts = []*Post{}
	}
	respond.OK(writer, posts)
}

/*
FindByID returns one post with its replies.

GET /api/v1/posts/{room}/{id}

Response:
  - 200: Post: The post with replies
  - 404: NOT_FOUND: Unknown room or post
*/
func (handler *Handler) findByID(writer http.ResponseWriter, request *http.Request) {
	if _, err := handler.rooms.FindByName(request.Context(), requestutil.Param(request, "room")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.postService.FindByID(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
CreatePost writes a post into the room.

POST /api/v1/posts/{room}

Description: Requires a live session, but an absent or expired session is
answered with the same generic acknowledgement as a successful write. Empty
text and throttled duplicates are likewise dropped silently.

Request:
  - Body: writeRequest (Text, optional ImageURL)

Response:
  - 200: "ok": Generic acknowledgement (whether or not a row was created)
  - 400: VALIDATION_ERROR: Text over the length limit
  - 404: NOT_FOUND: Unknown room
*/
func (handler *Handler) createPost(writer http.ResponseWriter, request *http.Request) {
	target, err := handler.rooms.FindByName(request.Context(), requestutil.Param(request, "room"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	text, imageURL, principal, err := handler.decodeWrite(writer, request)
	if err != nil {
		return
	}

	// Dead session or empty text: acknowledge without writing.
	if principal == "" || text == "" {
		respond.OK(writer, "ok")
		return
	}

	if _, err := handler.postService.CreatePost(request.Context(), principal, target.ID, text, imageURL); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "ok")
}

/*
CreateReply writes a reply under a post.

POST /api/v1/posts/{room}/{id}

Description: Same silent-drop semantics as CreatePost.

Request:
  - Body: writeRequest (Text, optional ImageURL)

Response:
  - 200: "ok": Generic acknowledgement (whether or not a row was created)
  - 400: VALIDATION_ERROR: Text over the length limit
  - 404: NOT_FOUND: Unknown room or post
*/
func (handler *Handler) createReply(writer http.ResponseWriter, request *http.Request) {
	if _, err := handler.rooms.FindByName(request.Context(), requestutil.Param(request, "room")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	text, imageURL, principal, err := handler.decodeWrite(writer, request)
	if err != nil {
		return
	}

	if principal == "" || text == "" {
		respond.OK(writer, "ok")
		return
	}

	if _, err := handler.postService.CreateReply(request.Context(), principal, requestutil.Param(request, "id"), text, imageURL); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "ok")
}

// decodeWrite parses a write body and returns the trimmed text, the optional
// image URL (nil when absent), and the requesting author ID ("" when
// unauthenticated). It writes the error response itself and returns a non-nil
// error when the request is malformed.
func (handler *Handler) decodeWrite(writer http.ResponseWriter, request *http.Request) (string, *string, string, error) {
	var input writeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return "", nil, "", err
	}

	text := strings.TrimSpace(input.Text)

	validator := &validate.Validator{}
	validator.MaxLen(FieldText, text, TextMaxLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return "", nil, "", err
	}

	var imageURL *string
	if trimmed := strings.TrimSpace(input.ImageURL); trimmed != "" {
		imageURL = &trimmed
	}

	var authorID string
	if principal := requestutil.Principal(request); principal != nil {
		authorID = principal.AuthorID
	}

	return text, imageURL, authorID, nil
}
