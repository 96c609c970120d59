package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostError_StatusAndUnwrap(t *testing.T) {
	tests := []struct {
		err    *PostError
		status int
	}{
		{NewDecodeError(errors.New("bad json")), http.StatusBadRequest},
		{NewValidationError("nope"), http.StatusBadRequest},
		{NewConflictError("intro", "intro"), http.StatusConflict},
		{NewNotFoundError(), http.StatusNotFound},
		{NewUploadError(errors.New("s3 down")), http.StatusInternalServerError},
		{NewStoreError("create post", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Status(), tt.err.Kind)
	}

	wrapped := fmt.Errorf("outer: %w", NewConflictError("intro", "intro"))
	assert.True(t, errors.Is(wrapped, ErrSlugAlreadyExists))
	assert.Equal(t, KindConflict, AsKind(wrapped))
	assert.True(t, errors.Is(NewNotFoundError(), ErrPostNotFound))
	assert.Equal(t, ErrorKind(""), AsKind(errors.New("plain")))
}

func TestHandlePostError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", NewConflictError("intro", "intro"), http.StatusConflict, `slug "intro" is already in use`},
		{"conflict after normalization", NewConflictError(" A.B ", "ab"), http.StatusConflict, `slug "A.B" normalizes to "ab", which is already in use`},
		{"bare not found sentinel", ErrPostNotFound, http.StatusNotFound, "post not found"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "failed to process request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/blog", nil)

			require.True(t, HandlePostError(c, tt.err))
			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"error": tt.message}, body)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		assert.False(t, HandlePostError(c, nil))
		assert.Equal(t, 0, w.Body.Len())
	})
}
