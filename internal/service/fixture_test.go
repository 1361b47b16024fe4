package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/cache"
	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/metrics"
	"github.com/personal-blog-api/internal/mocks"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
)

// fixture wires real services to in-memory repositories
type fixture struct {
	svc      *service.Services
	users    *mocks.MockUserRepository
	articles *mocks.MockArticleRepository
	comments *mocks.MockCommentRepository
	cache    *recordingCache
	metrics  *metrics.Metrics

	admin     *models.User
	reader    *models.User
	published *models.Article
	draft     *models.Article
	other     *models.Article
}

func testConfig() *config.Config {
	return &config.Config{
		Comments: config.CommentsConfig{
			MaxDepth:      commenttree.DefaultMaxDepth,
			MaxLength:     models.MaxCommentLength,
			MaxNameLength: models.MaxAuthorNameLength,
		},
		Pagination: config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos, users, articles, comments := mocks.NewRepositories()
	f := &fixture{
		users:    users,
		articles: articles,
		comments: comments,
		cache:    newRecordingCache(),
		metrics:  metrics.NewWithRegistry(prometheus.NewRegistry()),
	}
	f.svc = service.NewServices(service.Deps{
		Repos:     repos,
		TreeCache: f.cache,
		Metrics:   f.metrics,
		Config:    testConfig(),
		Log:       zerolog.Nop(),
	})

	ctx := context.Background()
	f.admin = &models.User{ID: uuid.NewString(), Email: "admin@blog.test", Name: "Admin", Role: models.RoleAdmin, Active: true}
	f.reader = &models.User{ID: uuid.NewString(), Email: "reader@blog.test", Name: "Reader", Role: models.RoleUser, Active: true}
	users.Create(ctx, f.admin)
	users.Create(ctx, f.reader)

	f.published = f.seedArticle("hello-world", models.ArticleStatusPublished, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	f.draft = f.seedArticle("secret-draft", models.ArticleStatusDraft, time.Time{})
	f.other = f.seedArticle("other-post", models.ArticleStatusPublished, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))

	return f
}

func (f *fixture) seedArticle(slug string, status models.ArticleStatus, publishedAt time.Time) *models.Article {
	a := &models.Article{
		ID:       uuid.NewString(),
		Slug:     slug,
		Title:    "Title of " + slug,
		Body:     "Body of " + slug,
		AuthorID: f.admin.ID,
		Tags:     []string{"go"},
		Status:   status,
	}
	if status == models.ArticleStatusPublished {
		a.PublishedAt = &publishedAt
	}
	f.articles.Create(context.Background(), a)
	return a
}

// seedComment stores a comment directly, bypassing validation
func (f *fixture) seedComment(article *models.Article, parent *models.Comment, minute int) *models.Comment {
	name := "Guest"
	c := &models.Comment{
		ID:         uuid.NewString(),
		ArticleID:  article.ID,
		AuthorName: &name,
		Content:    "comment",
		CreatedAt:  time.Date(2024, 1, 1, 10, minute, 0, 0, time.UTC),
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	f.comments.Create(context.Background(), c)
	return c
}

// seedChain stores c0..c(n-1), each replying to the previous one
func (f *fixture) seedChain(article *models.Article, n int) []*models.Comment {
	chain := make([]*models.Comment, 0, n)
	var parent *models.Comment
	for i := 0; i < n; i++ {
		parent = f.seedComment(article, parent, i)
		chain = append(chain, parent)
	}
	return chain
}

func (f *fixture) adminPrincipal() *models.Principal {
	return &models.Principal{UserID: f.admin.ID, Role: models.RoleAdmin}
}

func (f *fixture) readerPrincipal() *models.Principal {
	return &models.Principal{UserID: f.reader.ID, Role: models.RoleUser}
}

func strPtr(s string) *string { return &s }

// recordingCache is an in-memory TreeCache that counts invalidations.
// The invalidation count doubles as the article's generation.
type recordingCache struct {
	mu            sync.Mutex
	trees         map[string][]*commenttree.Node
	invalidations map[string]int
	// beforeSet, when set, runs at the start of every Set
	beforeSet func()
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		trees:         make(map[string][]*commenttree.Node),
		invalidations: make(map[string]int),
	}
}

func generationKey(articleID string, generation int64) string {
	return fmt.Sprintf("%s#%d", articleID, generation)
}

func (c *recordingCache) Get(_ context.Context, articleID string) (cache.Lookup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	generation := int64(c.invalidations[articleID])
	tree, ok := c.trees[generationKey(articleID, generation)]
	return cache.Lookup{Tree: tree, Hit: ok, Generation: generation}, nil
}

func (c *recordingCache) Set(_ context.Context, articleID string, generation int64, tree []*commenttree.Node) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees[generationKey(articleID, generation)] = tree
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, articleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations[articleID]++
	return nil
}

// cached reports whether a tree is stored for the article's current generation
func (c *recordingCache) cached(articleID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.trees[generationKey(articleID, int64(c.invalidations[articleID]))]
	return ok
}
