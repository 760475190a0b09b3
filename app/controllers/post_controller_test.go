package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"socialfeed/app/auth"
	"socialfeed/app/logging"
	"socialfeed/app/metrics"
	"socialfeed/app/models"
	"socialfeed/app/repositories"
	"socialfeed/app/repositories/mock"
	"socialfeed/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type result struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Count   int              `json:"count"`
	Liked   bool             `json:"liked"`
	Post    *models.PostView `json:"post"`
}

func setupTestPostController(t *testing.T, postRepo repositories.PostRepository) (*PostController, *models.User, *models.User, string) {
	userRepo := mock.NewUserRepository()
	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	bob := &models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "hash"}
	require.NoError(t, userRepo.Create(alice))
	require.NoError(t, userRepo.Create(bob))

	dir := t.TempDir()
	controller := NewPostController(
		services.NewPostService(postRepo, userRepo),
		NewUploader(dir, 1<<20),
		logging.Discard(),
		metrics.New(),
	)
	return controller, alice, bob, dir
}

func setupPostRouter(controller *PostController) *mux.Router {
	router := mux.NewRouter()

	// Register routes manually
	router.HandleFunc("/posts", controller.Index).Methods("GET")
	router.HandleFunc("/posts", controller.Create).Methods("POST")
	router.HandleFunc("/posts/{id}", controller.Show).Methods("GET")
	router.HandleFunc("/posts/{id}", controller.Delete).Methods("DELETE")
	router.HandleFunc("/posts/{id}/like", controller.Like).Methods("PATCH")
	router.HandleFunc("/posts/{id}/comment", controller.Comment).Methods("POST")

	return router
}

func asUser(req *http.Request, user *models.User) *http.Request {
	if user == nil {
		return req
	}
	return req.WithContext(auth.WithUser(req.Context(), user))
}

func perform(t *testing.T, router http.Handler, req *http.Request) (int, result) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var res result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPostController(t *testing.T) {
	controller, alice, bob, _ := setupTestPostController(t, mock.NewPostRepository())
	router := setupPostRouter(controller)

	code, res := perform(t, router, asUser(jsonRequest("POST", "/posts", `{"text":"hello"}`), alice))
	require.Equal(t, http.StatusCreated, code)
	require.NotNil(t, res.Post)
	id := res.Post.ID.String()

	tests := []struct {
		name         string
		req          *http.Request
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "Index",
			req:          httptest.NewRequest("GET", "/posts", nil),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Show",
			req:          httptest.NewRequest("GET", "/posts/"+id, nil),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Show missing",
			req:          httptest.NewRequest("GET", "/posts/123", nil),
			expectedCode: http.StatusNotFound,
			expectedMsg:  "Post not found",
		},
		{
			name:         "Create from form",
			req:          asUser(formRequest("/posts", url.Values{"text": {"from a form"}}), bob),
			expectedCode: http.StatusCreated,
			expectedMsg:  "Post created successfully",
		},
		{
			name:         "Create with bad JSON",
			req:          asUser(jsonRequest("POST", "/posts", `{"text":`), bob),
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Invalid JSON body",
		},
		{
			name:         "Create without user",
			req:          jsonRequest("POST", "/posts", `{"text":"hi"}`),
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Not authorized",
		},
		{
			name:         "Like",
			req:          asUser(httptest.NewRequest("PATCH", "/posts/"+id+"/like", nil), bob),
			expectedCode: http.StatusOK,
			expectedMsg:  "Post liked",
		},
		{
			name:         "Comment from form",
			req:          asUser(formRequest("/posts/"+id+"/comment", url.Values{"text": {"nice"}}), bob),
			expectedCode: http.StatusCreated,
			expectedMsg:  "Comment added successfully",
		},
		{
			name:         "Comment too long",
			req:          asUser(jsonRequest("POST", "/posts/"+id+"/comment", `{"text":"`+strings.Repeat("x", 501)+`"}`), bob),
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Text cannot exceed 500 characters",
		},
		{
			name:         "Delete by non-owner",
			req:          asUser(httptest.NewRequest("DELETE", "/posts/"+id, nil), bob),
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Not authorized to delete this post",
		},
		{
			name:         "Delete by owner",
			req:          asUser(httptest.NewRequest("DELETE", "/posts/"+id, nil), alice),
			expectedCode: http.StatusOK,
			expectedMsg:  "Post deleted successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := perform(t, router, tt.req)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectedCode < 400, res.Success)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, res.Message)
			}
		})
	}
}

func TestPostControllerLikeToggle(t *testing.T) {
	controller, alice, bob, _ := setupTestPostController(t, mock.NewPostRepository())
	router := setupPostRouter(controller)

	_, res := perform(t, router, asUser(jsonRequest("POST", "/posts", `{"text":"hello"}`), alice))
	path := "/posts/" + res.Post.ID.String() + "/like"

	_, res = perform(t, router, asUser(httptest.NewRequest("PATCH", path, nil), bob))
	assert.True(t, res.Liked)
	require.Len(t, res.Post.Likes, 1)
	assert.Equal(t, bob.ID, res.Post.Likes[0].ID)

	_, res = perform(t, router, asUser(httptest.NewRequest("PATCH", path, nil), bob))
	assert.False(t, res.Liked)
	assert.Equal(t, "Post unliked", res.Message)
	assert.Empty(t, res.Post.Likes)
}

func TestPostControllerRemovesOrphanedUpload(t *testing.T) {
	controller, alice, _, dir := setupTestPostController(t, mock.NewPostRepository())
	router := setupPostRouter(controller)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", strings.Repeat("a", models.MaxPostTextLength+1)))
	part, err := mw.CreateFormFile("image", "cat.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	code, _ := perform(t, router, asUser(req, alice))
	assert.Equal(t, http.StatusBadRequest, code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostControllerStoreFailure(t *testing.T) {
	controller, alice, _, _ := setupTestPostController(t, mock.NewFailingPostRepository())
	var logs bytes.Buffer
	controller.logger = logging.NewWithOutput(&logs, logrus.InfoLevel)
	router := setupPostRouter(controller)

	code, res := perform(t, router, httptest.NewRequest("GET", "/posts", nil))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server error while fetching posts", res.Message)
	assert.NotContains(t, res.Message, "disk on fire")
	assert.Contains(t, logs.String(), "disk on fire")

	code, res = perform(t, router, asUser(jsonRequest("POST", "/posts", `{"text":"hello"}`), alice))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server error while creating post", res.Message)
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
