package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialfeed/app/config"
	"socialfeed/app/logging"
	"socialfeed/app/metrics"
	"socialfeed/app/repositories"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Liked   *bool           `json:"liked"`
	Token   string          `json:"token"`
	Post    json.RawMessage `json:"post"`
	Posts   json.RawMessage `json:"posts"`
	User    json.RawMessage `json:"user"`
}

type postBody struct {
	ID   string `json:"id"`
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Image    string `json:"image"`
	Likes    []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"likes"`
	Comments []struct {
		User     string `json:"user"`
		Username string `json:"username"`
		Text     string `json:"text"`
	} `json:"comments"`
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:           0,
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
		CORSOrigin:     "http://localhost:3000",
		LogLevel:       logrus.InfoLevel,
	}
}

func setupTestStore(t *testing.T) *repositories.Store {
	store, err := repositories.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func setupTestRouter(t *testing.T) (*mux.Router, *config.Config, *metrics.Metrics) {
	store := setupTestStore(t)
	cfg := testConfig(t)
	m := metrics.New()
	router := SetupRoutes(Dependencies{
		Config:  cfg,
		Posts:   store.Posts(),
		Users:   store.Users(),
		Logger:  logging.Discard(),
		Metrics: m,
	})
	return router, cfg, m
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(t, router, req, token)
}

func doMultipart(t *testing.T, router http.Handler, path, token string, fields map[string]string, filename string, file []byte) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return serve(t, router, req, token)
}

func serve(t *testing.T, router http.Handler, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// signup registers a user and returns its bearer token.
func signup(t *testing.T, router http.Handler, username string) string {
	w, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotEmpty(t, env.Token)
	return env.Token
}

func decodePost(t *testing.T, raw json.RawMessage) postBody {
	var p postBody
	require.NoError(t, json.Unmarshal(raw, &p))
	return p
}
