package models

import (
	"time"
)

// Comment represents a comment on an article. A nil ParentID marks a top-level comment.
type Comment struct {
	ID           string     `json:"id" db:"id"`
	ArticleID    string     `json:"article_id" db:"article_id"`
	ParentID     *string    `json:"parent_id" db:"parent_id"`
	AuthorUserID *string    `json:"author_user_id,omitempty" db:"author_user_id"`
	AuthorName   *string    `json:"author_name,omitempty" db:"author_name"`
	Content      string     `json:"content" db:"content"`
	IsRead       bool       `json:"is_read" db:"is_read"`
	ReadAt       *time.Time `json:"read_at,omitempty" db:"read_at"`
	ReadBy       *string    `json:"read_by,omitempty" db:"read_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// IsGuest reports whether the comment was left without an account
func (c *Comment) IsGuest() bool {
	return c.AuthorUserID == nil
}

// CreateCommentRequest is the request body for posting a comment
type CreateCommentRequest struct {
	Content    string  `json:"content"`
	AuthorName string  `json:"author_name,omitempty"`
	ParentID   *string `json:"parent_id,omitempty"`
}

// Default comment limits
const (
	MaxCommentLength    = 5000
	MaxAuthorNameLength = 100
)
