package repositories

import (
	"errors"
	"fmt"

	"socialfeed/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// BadgerPostRepository implements PostRepository using BadgerDB. Each post
// is one JSON document with its comments and likes embedded.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(post.ID)
		_, err := txn.Get(key)
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id uuid.UUID) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List retrieves every post, newest first
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", it.Item().Key(), err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortNewestFirst(posts)
	return posts, nil
}

// maxMutateAttempts bounds retries of a Mutate that lost a write conflict.
const maxMutateAttempts = 5

// Mutate applies fn to the stored post inside a single transaction. A
// transaction that conflicts with a concurrent writer is replayed against
// the fresh document.
func (r *BadgerPostRepository) Mutate(id uuid.UUID, fn func(post *models.Post) error) (*models.Post, error) {
	var (
		post *models.Post
		err  error
	)
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		post, err = r.mutateOnce(id, fn)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *BadgerPostRepository) mutateOnce(id uuid.UUID, fn func(post *models.Post) error) (*models.Post, error) {
	var post *models.Post
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		if err != nil {
			return err
		}

		if err := fn(post); err != nil {
			return err
		}
		if err := post.Validate(); err != nil {
			return err
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(id), data)
	})
	return post, err
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(id uuid.UUID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(id)

		// Verify post exists
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return txn.Delete(key)
	})
}

func getPost(txn *badger.Txn, id uuid.UUID) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}
