// Copyright (c) 2026 Backalley. All rights reserved.

package middleware

import (
	"context"
	"net/http"

	"github.com/backalley/backalley/internal/platform/constants"
	"github.com/backalley/backalley/internal/platform/ctxutil"
	"github.com/backalley/backalley/internal/platform/sec"
)

// SessionResolver turns an opaque session token into an authenticated
// principal. Implemented by the auth session policy.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*sec.Principal, error)
}

// SessionAuth reads the session cookie and, when the token resolves to a live
// session, injects the principal into the request context.
//
// The middleware never rejects a request on its own. Missing, malformed or
// expired tokens simply leave the context anonymous; RequireAuth decides
// whether that matters for a given route.
func SessionAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Extract the token from the session cookie
			cookie, err := request.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Resolve it against the session backend
			principal, err := resolver.Resolve(request.Context(), cookie.Value)
			if err != nil || principal == nil {
				// Stale or forged token. Continue anonymously.
				next.ServeHTTP(writer, request)
				return
			}

			// 3. Enrich the context with the authenticated principal
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth gates a route to authenticated principals only.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.GetPrincipal(request.Context()) == nil {
				writeError(writer, http.StatusForbidden, "FORBIDDEN", "Session timed out")
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
