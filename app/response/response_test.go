package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, http.StatusCreated, "Post created successfully", Fields{"count": 2, "success": false})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Post created successfully", body["message"])
	assert.Equal(t, 2.0, body["count"])
}

func TestSuccessWithoutMessage(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, http.StatusOK, "", nil)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "message")
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusForbidden, "Not authorized to delete this post")

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not authorized to delete this post", body["message"])
}
