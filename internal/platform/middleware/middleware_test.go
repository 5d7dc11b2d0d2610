// Copyright (c) 2026 Backalley. All rights reserved.

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/constants"
	"github.com/backalley/backalley/internal/platform/ctxutil"
	"github.com/backalley/backalley/internal/platform/middleware"
	"github.com/backalley/backalley/internal/platform/sec"
)

// fakeResolver resolves exactly one known token.
type fakeResolver struct {
	token     string
	principal *sec.Principal
}

func (f *fakeResolver) Resolve(_ context.Context, token string) (*sec.Principal, error) {
	if token == f.token {
		return f.principal, nil
	}
	return nil, apperr.Unauthorized("Invalid session")
}

/*
TestSessionAuth_InjectsPrincipal verifies a valid session cookie produces an
authenticated context, and everything else stays anonymous without being
rejected.
*/
func TestSessionAuth_InjectsPrincipal(t *testing.T) {
	resolver := &fakeResolver{
		token:     "live-token",
		principal: &sec.Principal{AuthorID: "author-1", SessionToken: "live-token"},
	}

	var seen *sec.Principal
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.SessionAuth(resolver)(next)

	tests := []struct {
		name          string
		cookie        *http.Cookie
		wantPrincipal bool
	}{
		{"valid_cookie", &http.Cookie{Name: constants.SessionCookieName, Value: "live-token"}, true},
		{"stale_cookie", &http.Cookie{Name: constants.SessionCookieName, Value: "dead-token"}, false},
		{"no_cookie", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				request.AddCookie(tt.cookie)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			// The middleware never rejects on its own.
			assert.Equal(t, http.StatusOK, recorder.Code)
			if tt.wantPrincipal {
				require.NotNil(t, seen)
				assert.Equal(t, "author-1", seen.AuthorID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

/*
TestRequireAuth_RejectsAnonymous verifies gated routes answer 403 with the
session-timeout message when no principal is present.
*/
func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequireAuth()(next)

	t.Run("anonymous", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Session timed out")
	})

	t.Run("authenticated", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{AuthorID: "author-1"})
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request.WithContext(ctx))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestIPRateLimiter_Buckets verifies per-IP isolation and burst exhaustion.
*/
func TestIPRateLimiter_Buckets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tiny refill rate so the burst is effectively the whole budget.
	limiter := middleware.NewIPRateLimiter(ctx, 0.001, 2)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	// A different client has its own bucket.
	assert.True(t, limiter.Allow("10.0.0.2"))
}

/*
TestIPRateLimiter_Middleware verifies the HTTP surface of the limiter.
*/
func TestIPRateLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewIPRateLimiter(ctx, 0.001, 1)
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := limiter.Middleware()(next)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRealIP, "10.0.0.9")

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, request)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, request)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

/*
TestRealIP covers proxy header precedence.
*/
func TestRealIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"x_real_ip_wins", "1.2.3.4", "5.6.7.8", "9.9.9.9:1234", "1.2.3.4"},
		{"forwarded_first_hop", "", "5.6.7.8, 2.2.2.2", "9.9.9.9:1234", "5.6.7.8"},
		{"remote_addr_fallback", "", "", "9.9.9.9:1234", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				request.Header.Set(constants.HeaderXRealIP, tt.realIP)
			}
			if tt.forwarded != "" {
				request.Header.Set(constants.HeaderXForwardedFor, tt.forwarded)
			}

			assert.Equal(t, tt.want, middleware.RealIP(request))
		})
	}
}

/*
TestRequestID_Propagation verifies generation and client passthrough.
*/
func TestRequestID_Propagation(t *testing.T) {
	var fromContext string
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		fromContext = ctxutil.GetRequestID(request.Context())
	})
	handler := middleware.RequestID()(next)

	t.Run("generated_when_absent", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.NotEmpty(t, fromContext)
		assert.Equal(t, fromContext, recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("client_value_kept", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "client-id")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "client-id", fromContext)
	})
}
