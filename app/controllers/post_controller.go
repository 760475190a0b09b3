package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"socialfeed/app/auth"
	"socialfeed/app/metrics"
	"socialfeed/app/response"
	"socialfeed/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// PostController handles HTTP requests for feed posts
type PostController struct {
	postService *services.PostService
	uploads     *Uploader
	logger      *logrus.Logger
	metrics     *metrics.Metrics
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, uploads *Uploader, logger *logrus.Logger, m *metrics.Metrics) *PostController {
	return &PostController{
		postService: postService,
		uploads:     uploads,
		logger:      logger,
		metrics:     m,
	}
}

type textBody struct {
	Text string `json:"text"`
}

// Index lists every post, newest first
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts()
	if err != nil {
		sendError(w, r, pc.logger, err, "Server error while fetching posts")
		return
	}

	response.Success(w, http.StatusOK, "", response.Fields{
		"count": len(posts),
		"posts": posts,
	})
}

// Show displays a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, pc.logger, err, "Server error while fetching post")
		return
	}

	response.Success(w, http.StatusOK, "", response.Fields{"post": post})
}

// Create handles creating a new post from JSON or a multipart form with
// an optional image attachment
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var text, image string
	switch contentType := r.Header.Get("Content-Type"); {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		var err error
		image, err = pc.uploads.Save(w, r, "image")
		if err != nil {
			sendError(w, r, pc.logger, err, "Server error while saving image")
			return
		}
		text = r.FormValue("text")
	case strings.HasPrefix(contentType, "application/json"):
		var body textBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		text = body.Text
	default:
		if err := r.ParseForm(); err != nil {
			response.Error(w, http.StatusBadRequest, "Failed to parse form")
			return
		}
		text = r.FormValue("text")
	}

	post, err := pc.postService.CreatePost(user, text, image)
	if err != nil {
		if rmErr := pc.uploads.Remove(image); rmErr != nil {
			pc.logger.WithError(rmErr).WithField("image", image).Warn("Failed to remove orphaned upload")
		}
		sendError(w, r, pc.logger, err, "Server error while creating post")
		return
	}

	pc.metrics.PostsCreated.Inc()
	response.Success(w, http.StatusCreated, "Post created successfully", response.Fields{"post": post})
}

// Like toggles the caller's like on a post
func (pc *PostController) Like(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	post, liked, err := pc.postService.ToggleLike(mux.Vars(r)["id"], user)
	if err != nil {
		sendError(w, r, pc.logger, err, "Server error while updating like")
		return
	}

	pc.metrics.LikeToggled(liked)
	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	response.Success(w, http.StatusOK, message, response.Fields{
		"post":  post,
		"liked": liked,
	})
}

// Comment appends the caller's comment to a post
func (pc *PostController) Comment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var body textBody
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	} else {
		body.Text = r.FormValue("text")
	}

	post, err := pc.postService.AddComment(mux.Vars(r)["id"], user, body.Text)
	if err != nil {
		sendError(w, r, pc.logger, err, "Server error while adding comment")
		return
	}

	pc.metrics.Comments.Inc()
	response.Success(w, http.StatusCreated, "Comment added successfully", response.Fields{"post": post})
}

// Delete removes a post owned by the caller
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := pc.postService.DeletePost(mux.Vars(r)["id"], user); err != nil {
		sendError(w, r, pc.logger, err, "Server error while deleting post")
		return
	}

	pc.metrics.PostsDeleted.Inc()
	response.Success(w, http.StatusOK, "Post deleted successfully", nil)
}
