package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyPost = errors.New("either text or image is required")

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if !p.HasContent() {
		return ErrEmptyPost
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// HasContent reports whether the post carries text or an image.
func (p *Post) HasContent() bool {
	return strings.TrimSpace(p.Text) != "" || p.Image != ""
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	if p.Likes == nil {
		p.Likes = []uuid.UUID{}
	}
	if p.Comments == nil {
		p.Comments = []*Comment{}
	}
}

// IsOwnedBy reports whether userID created the post.
func (p *Post) IsOwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

// IsLikedBy reports whether userID is in the post's likes.
func (p *Post) IsLikedBy(userID uuid.UUID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike flips userID's membership in the likes set and reports whether
// the user likes the post afterwards.
func (p *Post) ToggleLike(userID uuid.UUID) bool {
	defer p.touch()

	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			return false
		}
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// AddComment appends a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return err
	}

	p.Comments = append(p.Comments, comment)
	p.touch()
	return nil
}

func (p *Post) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// View resolves the owner and likers of the post against users. A missing
// owner falls back to the username snapshot; missing likers are left out.
func (p *Post) View(users map[uuid.UUID]PublicUser) *PostView {
	owner, ok := users[p.UserID]
	if !ok {
		owner = PublicUser{ID: p.UserID, Username: p.Username}
	}

	likes := make([]PublicUser, 0, len(p.Likes))
	for _, id := range p.Likes {
		if u, ok := users[id]; ok {
			likes = append(likes, u)
		}
	}

	comments := p.Comments
	if comments == nil {
		comments = []*Comment{}
	}

	return &PostView{
		ID:        p.ID,
		User:      owner,
		Username:  p.Username,
		Text:      p.Text,
		Image:     p.Image,
		Likes:     likes,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ReferencedUsers lists the owner and every liker of the post.
func (p *Post) ReferencedUsers() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Likes)+1)
	ids = append(ids, p.UserID)
	return append(ids, p.Likes...)
}
