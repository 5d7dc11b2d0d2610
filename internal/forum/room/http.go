// Copyright (c) 2026 Backalley. All rights reserved.

package room

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/backalley/backalley/internal/platform/middleware"
	requestutil "github.com/backalley/backalley/internal/platform/request"
	"github.com/backalley/backalley/internal/platform/respond"
	"github.com/backalley/backalley/internal/platform/validate"
)

// FieldName is the JSON field identifier for the room name.
const FieldName = "name"

// Handler implements the HTTP delivery layer for rooms.
type Handler struct {
	roomService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{roomService: service}
}

// Routes returns a [chi.Router] configured with room routes.
//
// # Endpoints
//   - GET  / : List rooms.
//   - POST / : Open a new room (authenticated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/", handler.create)
	})

	return router
}

type createRequest struct {
	Name string `json:"name"`
}

/*
List returns all rooms.

GET /api/v1/rooms

Response:
  - 200: []Room: All rooms, newest first
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	rooms, err := handler.roomService.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if rooms == nil {
		rooms = []*Room{}
	}
	respond.OK(writer, rooms)
}

/*
Create opens a new room.

POST /api/v1/rooms

Request:
  - Body: createRequest (Name)

Response:
  - 201: Room: The created room
  - 409: CONFLICT: Name already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, NameMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.roomService.Create(request.Context(), authorID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}
