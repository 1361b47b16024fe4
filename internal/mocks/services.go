package mocks

import (
	"context"
	"net/http"

	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
)

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	TreeFunc     func(ctx context.Context, slug string, includeDrafts bool) ([]*commenttree.Node, error)
	CreateFunc   func(ctx context.Context, slug string, principal *models.Principal, req *models.CreateCommentRequest) (*models.Comment, error)
	DeleteFunc   func(ctx context.Context, id string) (int, error)
	MarkReadFunc func(ctx context.Context, id, adminID string) (*models.Comment, error)
	Unreads      []*models.Comment
	Created      []*models.CreateCommentRequest
}

// Verify interface compliance
var _ service.CommentService = (*MockCommentService)(nil)

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{}
}

func (m *MockCommentService) Tree(ctx context.Context, slug string, includeDrafts bool) ([]*commenttree.Node, error) {
	if m.TreeFunc != nil {
		return m.TreeFunc(ctx, slug, includeDrafts)
	}
	return []*commenttree.Node{}, nil
}

func (m *MockCommentService) Create(ctx context.Context, slug string, principal *models.Principal, req *models.CreateCommentRequest) (*models.Comment, error) {
	m.Created = append(m.Created, req)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, slug, principal, req)
	}
	return &models.Comment{ID: "test-comment-id", Content: req.Content, ParentID: req.ParentID}, nil
}

func (m *MockCommentService) Delete(ctx context.Context, id string) (int, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return 1, nil
}

func (m *MockCommentService) MarkRead(ctx context.Context, id, adminID string) (*models.Comment, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id, adminID)
	}
	return &models.Comment{ID: id, IsRead: true, ReadBy: &adminID}, nil
}

func (m *MockCommentService) Unread(ctx context.Context, limit int) ([]*models.Comment, error) {
	if m.Unreads == nil {
		return []*models.Comment{}, nil
	}
	return m.Unreads, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamArticlesFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	StreamCommentsFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Counts             map[string]int
	CountError         error
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"users":    0,
			"articles": 0,
			"comments": 0,
		},
	}
}

func (m *MockExportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamArticlesFunc != nil {
		return m.StreamArticlesFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) StreamComments(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamCommentsFunc != nil {
		return m.StreamCommentsFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error {
	switch resource {
	case "articles":
		return m.StreamArticles(ctx, w, format)
	case "comments":
		return m.StreamComments(ctx, w, format)
	default:
		return service.ErrUnknownResource
	}
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	return m.Counts[resource], nil
}
