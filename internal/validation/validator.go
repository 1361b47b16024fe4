package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/slug"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) String() string {
	return e.Field + ": " + e.Message
}

// Limits bounds user-submitted text
type Limits struct {
	MaxCommentLength    int
	MaxAuthorNameLength int
}

// DefaultLimits returns the built-in comment limits
func DefaultLimits() Limits {
	return Limits{
		MaxCommentLength:    models.MaxCommentLength,
		MaxAuthorNameLength: models.MaxAuthorNameLength,
	}
}

// Validator provides validation methods
type Validator struct {
	limits Limits
}

// NewValidator creates a new validator instance
func NewValidator(limits Limits) *Validator {
	if limits.MaxCommentLength <= 0 {
		limits.MaxCommentLength = models.MaxCommentLength
	}
	if limits.MaxAuthorNameLength <= 0 {
		limits.MaxAuthorNameLength = models.MaxAuthorNameLength
	}
	return &Validator{limits: limits}
}

// ValidateUser validates a user record
func (v *Validator) ValidateUser(user *models.User) []ValidationError {
	var errors []ValidationError

	// Validate email
	if user.Email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(user.Email) {
		errors = append(errors, ValidationError{Field: "email", Message: "invalid email format", Value: user.Email})
	}

	// Validate name
	if strings.TrimSpace(user.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}

	// Validate role
	if user.Role == "" {
		errors = append(errors, ValidationError{Field: "role", Message: "role is required"})
	} else if !models.ValidRoles[user.Role] {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "invalid role, must be one of: admin, user",
			Value:   user.Role,
		})
	}

	return errors
}

// ValidateComment validates a comment submission. Content is expected to be
// sanitized already. Guests must give a name, signed-in users must not.
func (v *Validator) ValidateComment(req *models.CreateCommentRequest, guest bool) []ValidationError {
	var errors []ValidationError

	// Validate content
	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	} else if n := utf8.RuneCountInString(req.Content); n > v.limits.MaxCommentLength {
		errors = append(errors, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content exceeds maximum of %d characters (has %d)", v.limits.MaxCommentLength, n),
		})
	}

	// Validate author name
	name := strings.TrimSpace(req.AuthorName)
	switch {
	case guest && name == "":
		errors = append(errors, ValidationError{Field: "author_name", Message: "author_name is required for guest comments"})
	case !guest && name != "":
		errors = append(errors, ValidationError{Field: "author_name", Message: "author_name must be empty for signed-in users", Value: req.AuthorName})
	case utf8.RuneCountInString(name) > v.limits.MaxAuthorNameLength:
		errors = append(errors, ValidationError{
			Field:   "author_name",
			Message: fmt.Sprintf("author_name exceeds maximum of %d characters", v.limits.MaxAuthorNameLength),
		})
	}

	// Validate parent_id format
	if req.ParentID != nil && !isValidUUID(*req.ParentID) {
		errors = append(errors, ValidationError{Field: "parent_id", Message: "invalid UUID format", Value: *req.ParentID})
	}

	return errors
}

// ValidateArticle validates an article submission
func (v *Validator) ValidateArticle(input *models.ArticleInput) []ValidationError {
	var errors []ValidationError

	// Validate title
	if strings.TrimSpace(input.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(input.Title) > models.MaxTitleLength {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title exceeds maximum of %d characters", models.MaxTitleLength),
		})
	}

	// Validate slug if given
	if input.Slug != "" && !slug.Valid(input.Slug) {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: input.Slug})
	}

	// Validate body
	if strings.TrimSpace(input.Body) == "" {
		errors = append(errors, ValidationError{Field: "body", Message: "body is required"})
	}

	// Validate tags
	if len(input.Tags) > models.MaxTags {
		errors = append(errors, ValidationError{
			Field:   "tags",
			Message: fmt.Sprintf("at most %d tags are allowed (has %d)", models.MaxTags, len(input.Tags)),
		})
	}
	for _, tag := range input.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			errors = append(errors, ValidationError{Field: "tags", Message: "tags must not be empty"})
			break
		}
		if utf8.RuneCountInString(tag) > models.MaxTagLength {
			errors = append(errors, ValidationError{
				Field:   "tags",
				Message: fmt.Sprintf("tag exceeds maximum of %d characters", models.MaxTagLength),
				Value:   tag,
			})
			break
		}
	}

	// Validate cover image URL
	if input.CoverImageURL != "" && !isValidHTTPURL(input.CoverImageURL) {
		errors = append(errors, ValidationError{Field: "cover_image_url", Message: "cover_image_url must be an absolute http(s) URL", Value: input.CoverImageURL})
	}

	return errors
}

// ValidateFilter validates listing parameters
func (v *Validator) ValidateFilter(filter *models.ArticleFilter) []ValidationError {
	var errors []ValidationError

	if filter.Status != "" && !models.ValidStatuses[filter.Status] {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, published",
			Value:   filter.Status,
		})
	}
	if filter.Page < 0 {
		errors = append(errors, ValidationError{Field: "page", Message: "page must not be negative", Value: filter.Page})
	}
	if filter.PageSize < 0 {
		errors = append(errors, ValidationError{Field: "page_size", Message: "page_size must not be negative", Value: filter.PageSize})
	}

	return errors
}

// IsValidID checks if a string is a valid record identifier
func IsValidID(s string) bool {
	return isValidUUID(s)
}

// isValidUUID checks if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func isValidHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
