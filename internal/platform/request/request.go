// Copyright (c) 2026 Backalley. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/ctxutil"
	"github.com/backalley/backalley/internal/platform/sec"
	"github.com/backalley/backalley/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// It returns [validate.ErrInvalidJSON] if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Principal extracts the authenticated principal from the request context.
//
// Returns nil if the request is not authenticated.
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

// RequiredPrincipal ensures the request carries a live session and returns
// its principal.
//
// Gated operations call this first and refuse to proceed on error. The
// message matches the behavior clients already depend on: an absent cookie
// and an expired session are indistinguishable.
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.Forbidden("Session timed out")
	}
	return principal, nil
}

// RequiredAuthorID returns the author ID of the currently authenticated session.
func RequiredAuthorID(request *http.Request) (string, error) {
	principal, err := RequiredPrincipal(request)
	if err != nil {
		return "", err
	}
	return principal.AuthorID, nil
}
