package repositories

import (
	"socialfeed/app/models"

	"github.com/google/uuid"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uuid.UUID) (*models.Post, error)
	// List returns every post, newest first.
	List() ([]*models.Post, error)
	// Mutate loads a post, applies fn and saves the result as one atomic
	// step. If fn returns an error nothing is written.
	Mutate(id uuid.UUID, fn func(post *models.Post) error) (*models.Post, error)
	Delete(id uuid.UUID) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	// GetMany returns the users that exist among ids, keyed by id.
	GetMany(ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}
