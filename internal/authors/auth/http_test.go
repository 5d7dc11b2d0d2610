// Copyright (c) 2026 Backalley. All rights reserved.

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backalley/backalley/internal/authors/auth"
	"github.com/backalley/backalley/internal/platform/constants"
)

func newTestRouter(directory *fakeDirectory) http.Handler {
	return auth.NewHandler(newTestService(directory)).Routes()
}

/*
TestHandler_Register covers the HTTP surface of registration: created on
success, opaque 403 on any admission failure, 400 on bad input shape.
*/
func TestHandler_Register(t *testing.T) {
	directory := newFakeDirectory()
	directory.seedInvite("welcome")
	router := newTestRouter(directory)

	post := func(body string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("success", func(t *testing.T) {
		recorder := post(`{"name":"alice","password":"secret123","invite_code":"welcome"}`)
		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"alice"`)
		assert.NotContains(t, recorder.Body.String(), "secret123")

		// Admission logs the author in: the session cookie rides on the 201.
		cookies := recorder.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, constants.SessionCookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("spent_code_is_opaque", func(t *testing.T) {
		recorder := post(`{"name":"bob","password":"secret123","invite_code":"welcome"}`)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"failed"`)
		assert.NotContains(t, recorder.Body.String(), "invite")
	})

	t.Run("short_password", func(t *testing.T) {
		recorder := post(`{"name":"carol","password":"pw","invite_code":"x"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("malformed_json", func(t *testing.T) {
		recorder := post(`{`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

/*
TestHandler_Login_SetsSessionCookie verifies the cookie transport attributes
the cross-origin web client depends on.
*/
func TestHandler_Login_SetsSessionCookie(t *testing.T) {
	directory := newFakeDirectory()
	directory.seedInvite("welcome")
	router := newTestRouter(directory)

	register := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"name":"alice","password":"secret123","invite_code":"welcome"}`))
	router.ServeHTTP(httptest.NewRecorder(), register)

	login := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"name":"alice","password":"secret123"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, login)

	require.Equal(t, http.StatusOK, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]

	assert.Equal(t, constants.SessionCookieName, cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
}

/*
TestHandler_Login_WrongCredentials verifies the asymmetric login messages.
*/
func TestHandler_Login_WrongCredentials(t *testing.T) {
	directory := newFakeDirectory()
	directory.seedInvite("welcome")
	router := newTestRouter(directory)

	register := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"name":"alice","password":"secret123","invite_code":"welcome"}`))
	router.ServeHTTP(httptest.NewRecorder(), register)

	t.Run("unknown_handle", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"name":"nobody","password":"secret123"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "author not found")
	})

	t.Run("wrong_password", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"name":"alice","password":"nope"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "wrong password")
	})
}

/*
TestHandler_Logout clears the cookie and succeeds without a live session.
*/
func TestHandler_Logout(t *testing.T) {
	directory := newFakeDirectory()
	router := newTestRouter(directory)

	request := httptest.NewRequest(http.MethodPost, "/logout", nil)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "whatever"})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
