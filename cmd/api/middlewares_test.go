package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/proj/internal/domain/fields"
	"reviewhub/proj/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func serveWithUser(t *testing.T, middleware func(http.Handler) http.Handler, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, user))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	middleware(next).ServeHTTP(recorder, request)
	return recorder
}

func TestRequireAuthenticatedUser(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("authenticated", func(t *testing.T) {
		recorder := serveWithUser(t, app.requireAuthenticatedUser, &models.User{
			ID:       1,
			Username: "test",
			Email:    "test@gmail.com",
		})
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := serveWithUser(t, app.requireAuthenticatedUser, models.AnonymousUser)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	app := NewTestApplication(nil, t)
	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"anonymous", models.AnonymousUser, http.StatusUnauthorized},
		{"regular user", &models.User{ID: 1, Username: "test", Role: fields.RoleUser}, http.StatusForbidden},
		{"moderator", &models.User{ID: 1, Username: "mod", Role: fields.RoleModerator}, http.StatusForbidden},
		{"admin", &models.User{ID: 1, Username: "admin", Role: fields.RoleAdmin}, http.StatusOK},
		{"superuser", &models.User{ID: 1, Username: "root", Role: fields.RoleUser, IsSuperuser: true}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := serveWithUser(t, app.requireAdmin, tc.user)
			assert.Equal(t, tc.want, recorder.Code)
		})
	}
}

func TestRequireUserAdmin(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("moderator forbidden", func(t *testing.T) {
		recorder := serveWithUser(t, app.requireUserAdmin, &models.User{ID: 1, Username: "mod", Role: fields.RoleModerator})
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
	t.Run("admin allowed", func(t *testing.T) {
		recorder := serveWithUser(t, app.requireUserAdmin, &models.User{ID: 1, Username: "admin", Role: fields.RoleAdmin})
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRecoverer(t *testing.T) {
	app := NewTestApplication(nil, t)
	cases := []struct {
		name  string
		panic any
	}{
		{"error value", assert.AnError},
		{"string value", "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tc.panic)
			})
			assert.NotPanics(t, func() {
				app.Recoverer(next).ServeHTTP(recorder, request)
			})
			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		})
	}
}

func TestAuthenticateHeaderFormat(t *testing.T) {
	app := NewTestApplication(nil, t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := app.userFromContext(r)
		assert.True(t, user.IsAnonymous())
		w.WriteHeader(http.StatusOK)
	})
	t.Run("no header means anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		app.Authenticate(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("malformed header rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Token abc")
		app.Authenticate(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
