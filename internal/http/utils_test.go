package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/mailblocks/internal/domain"
	"github.com/Notifuse/mailblocks/pkg/blocks"
)

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "Something went wrong", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Something went wrong", body["error"])
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("bad"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("request: %w", domain.NewValidationError("bad")), http.StatusBadRequest},
		{"template not found", &domain.ErrTemplateNotFound{ID: "x"}, http.StatusNotFound},
		{"section not found", fmt.Errorf("%w: %q", blocks.ErrSectionNotFound, "s1"), http.StatusNotFound},
		{"index out of range", &blocks.IndexOutOfRangeError{Index: 5, Length: 2}, http.StatusUnprocessableEntity},
		{"anything else", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}
