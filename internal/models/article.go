package models

import (
	"time"
)

// ArticleStatus is the publishing state of an article
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article represents an article in the system
type Article struct {
	ID            string        `json:"id" db:"id"`
	Slug          string        `json:"slug" db:"slug"`
	Title         string        `json:"title" db:"title"`
	Summary       string        `json:"summary" db:"summary"`
	Body          string        `json:"body" db:"body"`
	AuthorID      string        `json:"author_id" db:"author_id"`
	Category      string        `json:"category,omitempty" db:"category"`
	Tags          []string      `json:"tags" db:"tags"`
	Status        ArticleStatus `json:"status" db:"status"`
	CoverImageURL string        `json:"cover_image_url,omitempty" db:"cover_image_url"`
	PublishedAt   *time.Time    `json:"published_at,omitempty" db:"published_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// IsPublished reports whether the article is publicly visible
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[ArticleStatus]bool{
	ArticleStatusDraft:     true,
	ArticleStatusPublished: true,
}

// ArticleInput is the request body for creating or updating an article
type ArticleInput struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug,omitempty"`
	Summary       string   `json:"summary"`
	Body          string   `json:"body"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	Publish       bool     `json:"publish,omitempty"`
}

// ArticleFilter narrows an article listing
type ArticleFilter struct {
	Status   ArticleStatus
	Tag      string
	Category string
	Query    string
	Page     int
	PageSize int
}

// TaxonomyCount is a tag or category with the number of published articles using it
type TaxonomyCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Article field limits
const (
	MaxTitleLength = 200
	MaxTags        = 10
	MaxTagLength   = 40
)
