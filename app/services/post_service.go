package services

import (
	"errors"
	"fmt"
	"strings"

	"socialfeed/app/models"
	"socialfeed/app/repositories"

	"github.com/google/uuid"
)

// PostService handles business logic for feed posts
type PostService struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// CreatePost stores a new post owned by author. At least one of text and
// image must be given.
func (s *PostService) CreatePost(author *models.User, text, image string) (*models.PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == "" {
		return nil, newValidationError(models.ErrEmptyPost.Error())
	}

	post := &models.Post{
		UserID:   author.ID,
		Username: author.Username,
		Text:     text,
		Image:    image,
	}
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", asValidationError(err))
	}
	return s.view(post)
}

// ListPosts returns every post, newest first
func (s *PostService) ListPosts() ([]*models.PostView, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var ids []uuid.UUID
	for _, post := range posts {
		ids = append(ids, post.ReferencedUsers()...)
	}
	users, err := s.resolve(ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, post.View(users))
	}
	return views, nil
}

// GetPost retrieves a post by ID. A malformed id is reported as not found.
func (s *PostService) GetPost(id string) (*models.PostView, error) {
	postID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.view(post)
}

// ToggleLike likes the post for user, or unlikes it if user already likes
// it. The returned flag is true when the post ends up liked.
func (s *PostService) ToggleLike(id string, user *models.User) (*models.PostView, bool, error) {
	postID, err := parseID(id)
	if err != nil {
		return nil, false, err
	}

	var liked bool
	post, err := s.postRepo.Mutate(postID, func(p *models.Post) error {
		liked = p.ToggleLike(user.ID)
		return nil
	})
	if err != nil {
		return nil, false, notFound(err)
	}

	view, err := s.view(post)
	if err != nil {
		return nil, false, err
	}
	return view, liked, nil
}

// AddComment appends a comment by user to the post
func (s *PostService) AddComment(id string, user *models.User, text string) (*models.PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newValidationError(models.ErrEmptyComment.Error())
	}
	comment := &models.Comment{
		UserID:   user.ID,
		Username: user.Username,
		Text:     text,
	}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	postID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.Mutate(postID, func(p *models.Post) error {
		return p.AddComment(comment)
	})
	if err != nil {
		return nil, notFound(asValidationError(err))
	}
	return s.view(post)
}

// DeletePost removes a post. Only its owner may do so.
func (s *PostService) DeletePost(id string, user *models.User) error {
	postID, err := parseID(id)
	if err != nil {
		return err
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return notFound(err)
	}
	if !post.IsOwnedBy(user.ID) {
		return ErrForbidden
	}

	if err := s.postRepo.Delete(postID); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *PostService) view(post *models.Post) (*models.PostView, error) {
	users, err := s.resolve(post.ReferencedUsers())
	if err != nil {
		return nil, err
	}
	return post.View(users), nil
}

func (s *PostService) resolve(ids []uuid.UUID) (map[uuid.UUID]models.PublicUser, error) {
	found, err := s.userRepo.GetMany(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}

	users := make(map[uuid.UUID]models.PublicUser, len(found))
	for id, user := range found {
		users[id] = user.Public()
	}
	return users, nil
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return parsed, nil
}

func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
