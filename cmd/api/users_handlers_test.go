package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/proj/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestGetMe(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("owner", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, &models.User{
			ID:       1,
			Username: "alice",
			Email:    "alice@example.com",
		}))
		app.getMe(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "alice")
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, models.AnonymousUser))
		app.getMe(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
