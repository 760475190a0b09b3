package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"socialfeed/app/models"

	"github.com/google/uuid"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix = "post:"
	UserKeyPrefix = "user:"

	// Unique index prefixes pointing at a user id
	UserEmailKeyPrefix    = "user_email:"
	UserUsernameKeyPrefix = "user_name:"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

func postKey(id uuid.UUID) []byte {
	return []byte(PostKeyPrefix + id.String())
}

func userKey(id uuid.UUID) []byte {
	return []byte(UserKeyPrefix + id.String())
}

func emailKey(email string) []byte {
	return []byte(UserEmailKeyPrefix + strings.ToLower(strings.TrimSpace(email)))
}

func usernameKey(username string) []byte {
	return []byte(UserUsernameKeyPrefix + strings.ToLower(strings.TrimSpace(username)))
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// SortNewestFirst orders posts by creation time, newest first. Ties are
// broken by id so the order is stable across calls.
func SortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID.String() > posts[j].ID.String()
	})
}
