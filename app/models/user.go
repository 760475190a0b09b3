package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validate checks the user against its field rules.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// BeforeCreate assigns an id, normalizes the email and stamps timestamps.
func (u *User) BeforeCreate() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// Public strips everything but the id and username.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// Profile is what a user sees about their own account.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile returns the account details owned by the user.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}
