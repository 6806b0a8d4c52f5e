package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNotFound(rec, "Post not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeNotFound, body.Error.Code)
	assert.Equal(t, "Post not found", body.Error.Message)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Content string `json:"content"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "hi", dst.Content)

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, DecodeJSON(empty, &dst))

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":`))
	assert.Error(t, DecodeJSON(bad, &dst))
}
