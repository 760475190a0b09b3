package repositories

import (
	"errors"

	"socialfeed/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// BadgerUserRepository implements UserRepository using BadgerDB. Usernames
// and emails are kept unique through index keys holding the user id.
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user and claims its username and email
func (r *BadgerUserRepository) Create(user *models.User) error {
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return err
	}

	data, err := marshalEntity(user)
	if err != nil {
		return err
	}

	// A conflict means a concurrent Create touched one of the claimed keys.
	// The replay sees its commit and reports the duplicate.
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		err = r.createOnce(user, data)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return ErrDuplicate
}

func (r *BadgerUserRepository) createOnce(user *models.User, data []byte) error {
	return r.db.Update(func(txn *badger.Txn) error {
		for _, key := range [][]byte{usernameKey(user.Username), emailKey(user.Email), userKey(user.ID)} {
			_, err := txn.Get(key)
			if err == nil {
				return ErrDuplicate
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		id := []byte(user.ID.String())
		if err := txn.Set(usernameKey(user.Username), id); err != nil {
			return err
		}
		if err := txn.Set(emailKey(user.Email), id); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user through the email index
func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getByIndex(emailKey(email))
}

// GetByUsername retrieves a user through the username index
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getByIndex(usernameKey(username))
}

// GetMany retrieves the existing users among ids
func (r *BadgerUserRepository) GetMany(ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	users := make(map[uuid.UUID]*models.User, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if _, seen := users[id]; seen {
				continue
			}
			user, err := getUser(txn, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users[id] = user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *BadgerUserRepository) getByIndex(key []byte) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id, err := uuid.ParseBytes(raw)
		if err != nil {
			return err
		}

		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func getUser(txn *badger.Txn, id uuid.UUID) (*models.User, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = item.Value(func(val []byte) error {
		return unmarshalEntity(val, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
