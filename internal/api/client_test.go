package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:8000"})
	require.Error(t, err)
	_, err = New(Config{BaseURL: "/api"})
	require.Error(t, err)
}

func TestNewRequestKeepsTrailingSlashAndRejectsQuery(t *testing.T) {
	c, err := New(Config{BaseURL: "http://fleet.test/api"})
	require.NoError(t, err)

	req, err := c.NewRequest(context.Background(), http.MethodGet, "/vehicles/", url.Values{"page": {"2"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://fleet.test/api/vehicles/?page=2", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	_, err = c.NewRequest(context.Background(), http.MethodGet, "/vehicles/?page=2", nil, nil)
	require.Error(t, err)
}

func TestResourcePath(t *testing.T) {
	assert.Equal(t, "/vehicles/", resourcePath("vehicles"))
	assert.Equal(t, "/vehicles/7/", resourcePath("/vehicles/", "7"))
	assert.Equal(t, "/reservations/upcoming/", resourcePath("reservations/upcoming"))
	assert.Equal(t, "/vehicles/3/reports/fuel/", resourcePath("vehicles", "3", "reports", "fuel"))
}

func TestDoTagsRequestsWithRequestID(t *testing.T) {
	var seen string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, c.Delete(context.Background(), "vehicles", 1))
	assert.NotEmpty(t, seen)
}

func TestDoMapsStatusToKind(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
		target error
	}{
		{http.StatusUnauthorized, KindUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, KindForbidden, ErrForbidden},
		{http.StatusNotFound, KindNotFound, ErrNotFound},
		{http.StatusUnprocessableEntity, KindValidation, ErrValidation},
		{http.StatusBadRequest, KindValidation, ErrValidation},
		{http.StatusConflict, KindConflict, ErrConflict},
		{http.StatusInternalServerError, KindServer, ErrServer},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"detail":"nope"}`))
			}))
			_, err := c.Me(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.True(t, errors.Is(err, tc.target))
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, "nope", apiErr.Message)
			assert.Equal(t, "/api/users/me/", apiErr.Path)
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestTransportFailureIsTransportKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c, err := New(Config{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestLoginStoresCookieAndLogoutClearsIt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login/", func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","user":{"id":4,"email":"ann@fleet.test","name":"Ann","role":"manager"}}`))
	})
	mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("token"); err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":4,"email":"ann@fleet.test","name":"Ann","role":"manager"}`))
	})
	mux.HandleFunc("/api/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Login(ctx, "ann@fleet.test", "wrong")
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Contains(t, err.Error(), "Invalid email or password")

	user, err := c.Login(ctx, "ann@fleet.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, 4, user.ID)
	assert.Equal(t, "manager", user.Role.String())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Me(ctx)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}
