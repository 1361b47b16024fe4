package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.ArticleRepository = (*MockArticleRepository)(nil)
	_ repository.CommentRepository = (*MockCommentRepository)(nil)
)

// NewRepositories returns repositories backed by fresh in-memory mocks
func NewRepositories() (*repository.Repositories, *MockUserRepository, *MockArticleRepository, *MockCommentRepository) {
	users := NewMockUserRepository()
	articles := NewMockArticleRepository()
	comments := NewMockCommentRepository()
	articles.Comments = comments
	return &repository.Repositories{User: users, Article: articles, Comment: comments}, users, articles, comments
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	EmailToUser map[string]*models.User
	InsertError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:       make(map[string]*models.User),
		EmailToUser: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	m.Users[user.ID] = user
	m.EmailToUser[user.Email] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Users[id], nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.Users[id]
	return exists, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	mu          sync.Mutex
	Articles    map[string]*models.Article
	SlugToID    map[string]string
	InsertError error
	ListError   error
	// Comments, when set, loses the comments of deleted articles
	Comments *MockCommentRepository
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
		SlugToID: make(map[string]string),
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now
	m.Articles[article.ID] = article
	m.SlugToID[article.Slug] = article.ID
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.Articles[article.ID]
	if !ok {
		return nil
	}
	delete(m.SlugToID, old.Slug)
	article.UpdatedAt = time.Now().UTC()
	m.Articles[article.ID] = article
	m.SlugToID[article.Slug] = article.ID
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	article, ok := m.Articles[id]
	if ok {
		delete(m.Articles, id)
		delete(m.SlugToID, article.Slug)
	}
	m.mu.Unlock()

	if ok && m.Comments != nil {
		m.Comments.deleteArticle(id)
	}
	return ok, nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneArticle(m.Articles[id]), nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneArticle(m.Articles[m.SlugToID[slug]]), nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.SlugToID[slug]
	return exists, nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter models.ArticleFilter, limit, offset int) ([]*models.Article, int, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	matched := m.sorted(func(a *models.Article) bool {
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		if filter.Category != "" && !strings.EqualFold(a.Category, filter.Category) {
			return false
		}
		if filter.Tag != "" && !containsTag(a.Tags, filter.Tag) {
			return false
		}
		if q := strings.ToLower(filter.Query); q != "" {
			text := strings.ToLower(a.Title + "\n" + a.Summary + "\n" + a.Body)
			if !strings.Contains(text, q) {
				return false
			}
		}
		return true
	})

	total := len(matched)
	if offset >= total {
		return []*models.Article{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MockArticleRepository) Tags(ctx context.Context) ([]models.TaxonomyCount, error) {
	return m.taxonomy(func(a *models.Article) []string { return a.Tags }), nil
}

func (m *MockArticleRepository) Categories(ctx context.Context) ([]models.TaxonomyCount, error) {
	return m.taxonomy(func(a *models.Article) []string {
		if a.Category == "" {
			return nil
		}
		return []string{a.Category}
	}), nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	for _, a := range m.sorted(func(*models.Article) bool { return true }) {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// sorted returns matching articles, newest first like the SQL listing
func (m *MockArticleRepository) sorted(keep func(*models.Article) bool) []*models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		if keep(a) {
			out = append(out, cloneArticle(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortTime(out[i]).After(sortTime(out[j]))
	})
	return out
}

func (m *MockArticleRepository) taxonomy(names func(*models.Article) []string) []models.TaxonomyCount {
	counts := make(map[string]int)
	for _, a := range m.sorted(func(a *models.Article) bool { return a.IsPublished() }) {
		for _, name := range names(a) {
			counts[name]++
		}
	}
	out := make([]models.TaxonomyCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.TaxonomyCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortTime(a *models.Article) time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func cloneArticle(a *models.Article) *models.Article {
	if a == nil {
		return nil
	}
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	return &c
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mu          sync.Mutex
	Comments    map[string]*models.Comment
	InsertError error
	LookupError error
	// Lookups counts GetByID calls
	Lookups int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.Comment),
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	c := *comment
	m.Comments[comment.ID] = &c
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups++
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommentRepository) FindByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	return m.list(func(c *models.Comment) bool { return c.ArticleID == articleID }), nil
}

// DeleteSubtree removes the comment and, transitively, all of its replies
func (m *MockCommentRepository) DeleteSubtree(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Comments[id]; !ok {
		return 0, nil
	}

	doomed := map[string]bool{id: true}
	for grew := true; grew; {
		grew = false
		for cid, c := range m.Comments {
			if !doomed[cid] && c.ParentID != nil && doomed[*c.ParentID] {
				doomed[cid] = true
				grew = true
			}
		}
	}
	for cid := range doomed {
		delete(m.Comments, cid)
	}
	return len(doomed), nil
}

func (m *MockCommentRepository) MarkRead(ctx context.Context, id, readBy string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || c.IsRead {
		return false, nil
	}
	c.IsRead = true
	c.ReadAt = &at
	c.ReadBy = &readBy
	return true, nil
}

func (m *MockCommentRepository) ListUnread(ctx context.Context, limit int) ([]*models.Comment, error) {
	unread := m.list(func(c *models.Comment) bool { return !c.IsRead })
	if len(unread) > limit {
		unread = unread[:limit]
	}
	return unread, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	for _, c := range m.list(func(*models.Comment) bool { return true }) {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// list returns matching comments oldest first
func (m *MockCommentRepository) list(keep func(*models.Comment) bool) []*models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *MockCommentRepository) deleteArticle(articleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.Comments {
		if c.ArticleID == articleID {
			delete(m.Comments, id)
		}
	}
}
