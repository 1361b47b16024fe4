package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/cache"
	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/metrics"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/validation"
)

// ArticleService defines the interface for article operations
type ArticleService interface {
	Create(ctx context.Context, authorID string, input *models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, id string, input *models.ArticleInput) (*models.Article, error)
	Publish(ctx context.Context, id string) (*models.Article, error)
	Unpublish(ctx context.Context, id string) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter, includeDrafts bool) (models.Page[*models.Article], error)
	Tags(ctx context.Context) ([]models.TaxonomyCount, error)
	Categories(ctx context.Context) ([]models.TaxonomyCount, error)
	// Thumbnail returns the cover image URL when one is set, otherwise a generated SVG
	Thumbnail(ctx context.Context, slug string, includeDrafts bool) (coverURL string, svg []byte, err error)
}

// CommentService defines the interface for comment operations
type CommentService interface {
	Tree(ctx context.Context, slug string, includeDrafts bool) ([]*commenttree.Node, error)
	Create(ctx context.Context, slug string, principal *models.Principal, req *models.CreateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, id string) (int, error)
	MarkRead(ctx context.Context, id, adminID string) (*models.Comment, error)
	Unread(ctx context.Context, limit int) ([]*models.Comment, error)
}

// UserService defines the interface for account administration
type UserService interface {
	Create(ctx context.Context, email, name string, role models.Role) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
	StreamComments(ctx context.Context, w http.ResponseWriter, format string) error
	StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Comment CommentService
	User    UserService
	Export  ExportService
}

// Deps are the collaborators shared by the services
type Deps struct {
	Repos     *repository.Repositories
	TreeCache cache.TreeCache
	Metrics   *metrics.Metrics
	Config    *config.Config
	Log       zerolog.Logger
}

// NewServices creates all services
func NewServices(deps Deps) *Services {
	if deps.TreeCache == nil {
		deps.TreeCache = cache.Nop{}
	}

	limits := validation.DefaultLimits()
	pagination := config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50}
	maxDepth := commenttree.DefaultMaxDepth
	if deps.Config != nil {
		limits = validation.Limits{
			MaxCommentLength:    deps.Config.Comments.MaxLength,
			MaxAuthorNameLength: deps.Config.Comments.MaxNameLength,
		}
		pagination = deps.Config.Pagination
		maxDepth = deps.Config.Comments.MaxDepth
	}
	validator := validation.NewValidator(limits)

	return &Services{
		Article: newArticleService(deps.Repos, deps.TreeCache, validator, deps.Metrics, pagination, deps.Log),
		Comment: newCommentService(deps.Repos, deps.TreeCache, validator, deps.Metrics, maxDepth, deps.Log),
		User:    newUserService(deps.Repos, validator, deps.Log),
		Export:  newExportService(deps.Repos, deps.Log),
	}
}
