package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("with default origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		CORS("")(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates.list", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Empty(t, w.Header().Get("Vary"))
	})

	t.Run("with custom origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		CORS("https://editor.example.com")(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates.list", nil))

		assert.Equal(t, "https://editor.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("preflight does not reach the handler", func(t *testing.T) {
		called := false
		handler := CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/templates.create", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, called)
	})
}
