package routes

import (
	"net/http"
	"strings"

	"socialfeed/app/auth"
	"socialfeed/app/config"
	"socialfeed/app/controllers"
	"socialfeed/app/metrics"
	"socialfeed/app/middleware"
	"socialfeed/app/repositories"
	"socialfeed/app/response"
	"socialfeed/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Dependencies are the long-lived collaborators the router is built from.
type Dependencies struct {
	Config  *config.Config
	Posts   repositories.PostRepository
	Users   repositories.UserRepository
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	cfg, logger := deps.Config, deps.Logger

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, deps.Users)
	postService := services.NewPostService(deps.Posts, deps.Users)
	authService := services.NewAuthService(deps.Users, tokens)

	postController := controllers.NewPostController(postService, controllers.NewUploader(cfg.UploadDir, cfg.MaxUploadBytes), logger, deps.Metrics)
	authController := controllers.NewAuthController(authService, logger)
	requireAuth := middleware.RequireAuth(tokens, logger, deps.Metrics)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Apply global middleware
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(middleware.CORS(cfg.CORSOrigin))

	router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/uploads/").
		Handler(http.StripPrefix("/uploads/", serveUploads(http.FileServer(http.Dir(cfg.UploadDir))))).
		Methods(http.MethodGet, http.MethodHead)

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/health", health).Methods(http.MethodGet, http.MethodOptions)

	// Auth API endpoints
	authAPI := api.PathPrefix("/auth").Subrouter()
	authAPI.HandleFunc("/signup", authController.Signup).Methods(http.MethodPost, http.MethodOptions)
	authAPI.HandleFunc("/login", authController.Login).Methods(http.MethodPost, http.MethodOptions)
	authAPI.Handle("/me", requireAuth(http.HandlerFunc(authController.Me))).Methods(http.MethodGet, http.MethodOptions)

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods(http.MethodGet, http.MethodOptions)
	posts.Handle("", requireAuth(http.HandlerFunc(postController.Create))).Methods(http.MethodPost)
	posts.HandleFunc("/{id}", postController.Show).Methods(http.MethodGet, http.MethodOptions)
	posts.Handle("/{id}", requireAuth(http.HandlerFunc(postController.Delete))).Methods(http.MethodDelete)
	posts.Handle("/{id}/like", requireAuth(http.HandlerFunc(postController.Like))).Methods(http.MethodPatch, http.MethodOptions)
	posts.Handle("/{id}/comment", requireAuth(http.HandlerFunc(postController.Comment))).Methods(http.MethodPost, http.MethodOptions)

	return router
}

func health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Social feed API is running", nil)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		response.Error(w, http.StatusNotFound, "Route not found")
		return
	}
	http.NotFound(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// serveUploads hides directory indexes of the upload directory and stops
// browsers from second-guessing the served content type.
func serveUploads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewServer builds an http.Server for addr serving router.
func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: router,
	}
}
