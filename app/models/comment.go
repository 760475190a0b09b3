package models

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyComment = errors.New("comment text is required")

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyComment
	}

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate trims the text and stamps the creation time.
func (c *Comment) BeforeCreate() {
	c.Text = strings.TrimSpace(c.Text)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}
