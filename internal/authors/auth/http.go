// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/backalley/backalley/internal/platform/constants"
	"github.com/backalley/backalley/internal/platform/middleware"
	requestutil "github.com/backalley/backalley/internal/platform/request"
	"github.com/backalley/backalley/internal/platform/respond"
	"github.com/backalley/backalley/internal/platform/validate"
)

// # Definitions & Constructors

// JSON field identifiers used in validation messages.
const (
	FieldName       = "name"
	FieldPassword   = "password"
	FieldInviteCode = "invite_code"
	FieldCode       = "code"
)

// Handler implements the HTTP delivery layer for author identity.
//
// # Scope
//
// This handler owns the account lifecycle entry points (registration, login,
// logout, status, invite issuance) and the session cookie transport.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with author identity routes.
//
// # Endpoints
//   - POST /register : Invite-gated account creation.
//   - POST /login    : Credential check plus session cookie issuance.
//   - POST /logout   : Session termination.
//   - GET  /status   : Authenticated account snapshot.
//   - GET  /invite   : Spend quota on a new invite code.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/status", handler.status)
		r.Get("/invite", handler.invite)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

/*
Register admits a new author through an invite code.

POST /api/v1/author/register

Description: Validates input shape, then attempts the atomic admission. All
admission failures surface as one generic 403 so codes and handles cannot be
probed. A successful admission logs the new author in: the session cookie is
set on the 201 response.

Request:
  - Body: registerRequest (Name, Password, InviteCode)

Response:
  - 201: Author: Created account profile, session cookie attached
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 403: REGISTRATION_FAILED: Invite invalid or handle taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MinLen(FieldName, input.Name, NameMinLength).
		MaxLen(FieldName, input.Name, NameMaxLength).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxLen(FieldPassword, input.Password, PasswordMaxLength).
		Required(FieldInviteCode, input.InviteCode)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, principal, err := handler.authService.Register(request.Context(), input.Name, input.Password, input.InviteCode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, principal.SessionToken, principal.ExpiresAt)
	respond.Created(writer, author)
}

/*
Login verifies credentials and sets the session cookie.

POST /api/v1/author/login

Description: Verifies the peppered credential and injects the opaque session
token as a cookie. A request that already carries a live session cookie for
the same author keeps that session instead of minting a new one.

Request:
  - Body: loginRequest (Name, Password)

Response:
  - 200: Principal: Author ID and session expiry
  - 403: FORBIDDEN: Unknown handle or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := handler.authService.Login(request.Context(), input.Name, input.Password, presentedToken(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, principal.SessionToken, principal.ExpiresAt)
	respond.OK(writer, principal)
}

/*
Logout terminates the presented session.

POST /api/v1/author/logout

Description: Invalidates the session behind the cookie (if any) and clears
the cookie. Succeeds even without a live session, so logout is idempotent.

Response:
  - 204: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if token := presentedToken(request); token != "" {
		if err := handler.authService.Logout(request.Context(), token); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	handler.clearSessionCookie(writer)
	respond.NoContent(writer)
}

/*
Status returns the authenticated author's account snapshot.

GET /api/v1/author/status

Response:
  - 200: Status: Profile, remaining invite quota, session expiry
  - 403: FORBIDDEN: No live session
*/
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	status, err := handler.authService.AuthorStatus(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, status)
}

/*
Invite spends one unit of quota on a new invite code.

GET /api/v1/author/invite?code=<code>

Description: The caller supplies the code string; the server only guarantees
uniqueness and quota accounting.

Response:
  - 200: Invite: The open invite as persisted
  - 403: FORBIDDEN: Quota exhausted or no live session
  - 409: CONFLICT: Code already exists
*/
func (handler *Handler) invite(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAuthorID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	code := request.URL.Query().Get(FieldCode)
	if code == "" {
		respond.Error(writer, request, validate.RequiredError(FieldCode, "This field is required"))
		return
	}

	invite, err := handler.authService.IssueInvite(request.Context(), authorID, code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, invite)
}

// # Cookie Transport

// presentedToken extracts the session token from the request cookie.
func presentedToken(request *http.Request) string {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSessionCookie attaches the session token to the response.
//
// SameSite=None plus Secure lets the browser send the cookie from frontends
// hosted on other origins, which is how the club's web client is deployed.
func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
