package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxPostTextLength    = 1000
	MaxCommentTextLength = 500
)

// User is an account that can author posts, like them and comment on them.
type User struct {
	ID           uuid.UUID `json:"id" validate:"required"`
	Username     string    `json:"username" validate:"required,min=3,max=30,username"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	PasswordHash string    `json:"passwordHash" validate:"required"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the part of a user that is safe to show to other users.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Post is a feed item. Username is a snapshot taken when the post was
// written and is never refreshed afterwards.
type Post struct {
	ID        uuid.UUID   `json:"id" validate:"required"`
	UserID    uuid.UUID   `json:"user" validate:"required"`
	Username  string      `json:"username" validate:"required"`
	Text      string      `json:"text" validate:"max=1000"`
	Image     string      `json:"image,omitempty" validate:"max=255"`
	Likes     []uuid.UUID `json:"likes" validate:"-"`
	Comments  []*Comment  `json:"comments" validate:"dive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Comment is embedded in its post and identified by its position there.
type Comment struct {
	UserID    uuid.UUID `json:"user" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	Text      string    `json:"text" validate:"required,max=500"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostView is a post with the owner and likers resolved for display.
type PostView struct {
	ID        uuid.UUID    `json:"id"`
	User      PublicUser   `json:"user"`
	Username  string       `json:"username"`
	Text      string       `json:"text"`
	Image     string       `json:"image,omitempty"`
	Likes     []PublicUser `json:"likes"`
	Comments  []*Comment   `json:"comments"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
