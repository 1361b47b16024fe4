package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/cache"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/metrics"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/sanitize"
	"github.com/personal-blog-api/internal/slug"
	"github.com/personal-blog-api/internal/thumbnail"
	"github.com/personal-blog-api/internal/validation"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos      *repository.Repositories
	trees      cache.TreeCache
	validator  *validation.Validator
	metrics    *metrics.Metrics
	pagination config.PaginationConfig
	log        zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, trees cache.TreeCache, validator *validation.Validator,
	m *metrics.Metrics, pagination config.PaginationConfig, log zerolog.Logger) *articleService {
	return &articleService{
		repos:      repos,
		trees:      trees,
		validator:  validator,
		metrics:    m,
		pagination: pagination,
		log:        log.With().Str("service", "article").Logger(),
	}
}

// Create stores a new article for the given author
func (s *articleService) Create(ctx context.Context, authorID string, input *models.ArticleInput) (*models.Article, error) {
	if errs := s.validator.ValidateArticle(input); len(errs) > 0 {
		return nil, &InvalidInputError{Errors: errs}
	}

	author, err := s.repos.User.GetByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	if author == nil {
		return nil, ErrAuthorNotFound
	}

	base := input.Slug
	if base == "" {
		base = slug.Make(input.Title)
	}
	articleSlug, err := slug.Unique(ctx, base, s.repos.Article.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate slug: %w", err)
	}

	article := &models.Article{
		ID:       uuid.NewString(),
		Slug:     articleSlug,
		AuthorID: author.ID,
		Status:   models.ArticleStatusDraft,
	}
	applyInput(article, input)
	if input.Publish {
		markPublished(article)
	}

	if err := s.repos.Article.Create(ctx, article); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	if article.IsPublished() {
		s.metrics.RecordArticlePublished()
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("status", string(article.Status)).
		Msg("Article created")

	return article, nil
}

// Update overwrites the editable fields of an article. The slug only changes
// when a new one is given explicitly.
func (s *articleService) Update(ctx context.Context, id string, input *models.ArticleInput) (*models.Article, error) {
	if errs := s.validator.ValidateArticle(input); len(errs) > 0 {
		return nil, &InvalidInputError{Errors: errs}
	}

	article, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Slug != "" && input.Slug != article.Slug {
		newSlug, err := slug.Unique(ctx, input.Slug, s.repos.Article.SlugExists)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate slug: %w", err)
		}
		article.Slug = newSlug
	}
	applyInput(article, input)

	if err := s.repos.Article.Update(ctx, article); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	s.log.Info().Str("article_id", article.ID).Msg("Article updated")
	return article, nil
}

// Publish makes a draft publicly visible. Publishing a published article is a no-op.
func (s *articleService) Publish(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.IsPublished() {
		return article, nil
	}

	markPublished(article)
	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to publish article: %w", err)
	}
	s.metrics.RecordArticlePublished()

	s.log.Info().Str("article_id", article.ID).Msg("Article published")
	return article, nil
}

// Unpublish turns an article back into a draft
func (s *articleService) Unpublish(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished() {
		return article, nil
	}

	article.Status = models.ArticleStatusDraft
	article.PublishedAt = nil
	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to unpublish article: %w", err)
	}

	s.log.Info().Str("article_id", article.ID).Msg("Article unpublished")
	return article, nil
}

// Delete removes an article and its comments
func (s *articleService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repos.Article.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if !deleted {
		return ErrArticleNotFound
	}

	if err := s.trees.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("article_id", id).Msg("Failed to invalidate comment tree")
	}

	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return nil
}

// GetByID returns an article regardless of its status
func (s *articleService) GetByID(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// GetBySlug returns an article by slug. Drafts are reported as not found
// unless includeDrafts is set.
func (s *articleService) GetBySlug(ctx context.Context, articleSlug string, includeDrafts bool) (*models.Article, error) {
	return findArticle(ctx, s.repos.Article, articleSlug, includeDrafts)
}

// List returns one page of articles matching the filter
func (s *articleService) List(ctx context.Context, filter models.ArticleFilter, includeDrafts bool) (models.Page[*models.Article], error) {
	if errs := s.validator.ValidateFilter(&filter); len(errs) > 0 {
		return models.Page[*models.Article]{}, &InvalidInputError{Errors: errs}
	}
	if !includeDrafts {
		filter.Status = models.ArticleStatusPublished
	}
	filter.Tag = normalizeTag(filter.Tag)
	filter.Query = strings.TrimSpace(filter.Query)

	page, size, offset := models.NormalizePage(filter.Page, filter.PageSize,
		s.pagination.DefaultPageSize, s.pagination.MaxPageSize)

	articles, total, err := s.repos.Article.List(ctx, filter, size, offset)
	if err != nil {
		return models.Page[*models.Article]{}, fmt.Errorf("failed to list articles: %w", err)
	}

	return models.NewPage(articles, total, page, size), nil
}

// Tags returns every tag used by a published article
func (s *articleService) Tags(ctx context.Context) ([]models.TaxonomyCount, error) {
	tags, err := s.repos.Article.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Categories returns every category used by a published article
func (s *articleService) Categories(ctx context.Context) ([]models.TaxonomyCount, error) {
	categories, err := s.repos.Article.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Thumbnail returns the article's cover URL, or a placeholder image when it has none
func (s *articleService) Thumbnail(ctx context.Context, articleSlug string, includeDrafts bool) (string, []byte, error) {
	article, err := findArticle(ctx, s.repos.Article, articleSlug, includeDrafts)
	if err != nil {
		return "", nil, err
	}
	if article.CoverImageURL != "" {
		return article.CoverImageURL, nil, nil
	}
	return "", thumbnail.SVG(article.Title), nil
}

// findArticle resolves a slug, hiding drafts from the public
func findArticle(ctx context.Context, repo repository.ArticleRepository, articleSlug string, includeDrafts bool) (*models.Article, error) {
	article, err := repo.GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil || (!includeDrafts && !article.IsPublished()) {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

func applyInput(article *models.Article, input *models.ArticleInput) {
	article.Title = sanitize.Line(input.Title)
	article.Summary = sanitize.Line(sanitize.PlainText(input.Summary))
	article.Body = input.Body
	article.Category = sanitize.Line(input.Category)
	article.Tags = normalizeTags(input.Tags)
	article.CoverImageURL = strings.TrimSpace(input.CoverImageURL)
}

func markPublished(article *models.Article) {
	now := time.Now().UTC()
	article.Status = models.ArticleStatusPublished
	article.PublishedAt = &now
}

// normalizeTags lowercases and de-duplicates tags, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = normalizeTag(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
