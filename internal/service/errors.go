package service

import (
	"errors"
	"strings"

	"github.com/personal-blog-api/internal/validation"
)

var (
	ErrArticleNotFound       = errors.New("article not found")
	ErrParentCommentNotFound = errors.New("parent comment not found")
	ErrInvalidParentArticle  = errors.New("parent comment belongs to a different article")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrAuthorNotFound        = errors.New("author not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrSlugTaken             = errors.New("slug already in use")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrUnknownResource       = errors.New("unknown resource")
)

// InvalidInputError carries field-level validation failures
type InvalidInputError struct {
	Errors []validation.ValidationError
}

func (e *InvalidInputError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		parts = append(parts, ve.String())
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
