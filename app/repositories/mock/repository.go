package mock

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"socialfeed/app/models"
	"socialfeed/app/repositories"

	"github.com/google/uuid"
)

// PostRepository is an in-memory repositories.PostRepository. Stored posts
// are copied in and out so callers never share state with the store.
type PostRepository struct {
	posts map[uuid.UUID]*models.Post
	mutex sync.RWMutex

	// Calls counts every method invocation, letting tests assert that the
	// store was never reached.
	Calls atomic.Int64
}

// UserRepository is an in-memory repositories.UserRepository.
type UserRepository struct {
	users map[uuid.UUID]*models.User
	mutex sync.RWMutex
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[uuid.UUID]*models.Post)}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[uuid.UUID]*models.Post)
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*models.User)}
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Calls.Add(1)

	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return err
	}
	if _, exists := m.posts[post.ID]; exists {
		return repositories.ErrDuplicate
	}
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) GetByID(id uuid.UUID) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	m.Calls.Add(1)

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return clonePost(post), nil
}

func (m *PostRepository) List() ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	m.Calls.Add(1)

	posts := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, clonePost(post))
	}
	repositories.SortNewestFirst(posts)
	return posts, nil
}

func (m *PostRepository) Mutate(id uuid.UUID, fn func(post *models.Post) error) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Calls.Add(1)

	stored, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	post := clonePost(stored)
	if err := fn(post); err != nil {
		return nil, err
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	m.posts[id] = clonePost(post)
	return post, nil
}

func (m *PostRepository) Delete(id uuid.UUID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Calls.Add(1)

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return err
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *UserRepository) GetByEmail(email string) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return strings.EqualFold(u.Email, strings.TrimSpace(email))
	})
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return strings.EqualFold(u.Username, strings.TrimSpace(username))
	})
}

func (m *UserRepository) GetMany(ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make(map[uuid.UUID]*models.User, len(ids))
	for _, id := range ids {
		if user, exists := m.users[id]; exists {
			u := *user
			users[id] = &u
		}
	}
	return users, nil
}

// Rename changes a stored username, as an account settings page would.
func (m *UserRepository) Rename(id uuid.UUID, username string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	user, exists := m.users[id]
	if !exists {
		return repositories.ErrNotFound
	}
	user.Username = username
	return nil
}

// Remove deletes a user outright.
func (m *UserRepository) Remove(id uuid.UUID) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.users, id)
}

func (m *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if match(user) {
			u := *user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// FailingPostRepository fails every call with Err.
type FailingPostRepository struct {
	Err error
}

func NewFailingPostRepository() *FailingPostRepository {
	return &FailingPostRepository{Err: errors.New("disk on fire")}
}

func (f *FailingPostRepository) Create(*models.Post) error { return f.Err }

func (f *FailingPostRepository) GetByID(uuid.UUID) (*models.Post, error) { return nil, f.Err }

func (f *FailingPostRepository) List() ([]*models.Post, error) { return nil, f.Err }

func (f *FailingPostRepository) Mutate(uuid.UUID, func(*models.Post) error) (*models.Post, error) {
	return nil, f.Err
}

func (f *FailingPostRepository) Delete(uuid.UUID) error { return f.Err }

func clonePost(p *models.Post) *models.Post {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out models.Post
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}
