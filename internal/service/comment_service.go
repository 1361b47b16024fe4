package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/cache"
	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/metrics"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/sanitize"
	"github.com/personal-blog-api/internal/validation"
)

const maxUnreadLimit = 200

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos     *repository.Repositories
	trees     cache.TreeCache
	validator *validation.Validator
	metrics   *metrics.Metrics
	maxDepth  int
	log       zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(repos *repository.Repositories, trees cache.TreeCache, validator *validation.Validator,
	m *metrics.Metrics, maxDepth int, log zerolog.Logger) *commentService {
	if maxDepth < 1 {
		maxDepth = commenttree.DefaultMaxDepth
	}
	return &commentService{
		repos:     repos,
		trees:     trees,
		validator: validator,
		metrics:   m,
		maxDepth:  maxDepth,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// Tree returns the threaded comments of an article
func (s *commentService) Tree(ctx context.Context, slug string, includeDrafts bool) ([]*commenttree.Node, error) {
	article, err := findArticle(ctx, s.repos.Article, slug, includeDrafts)
	if err != nil {
		return nil, err
	}

	lookup, err := s.trees.Get(ctx, article.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Comment tree cache read failed")
	}
	s.metrics.RecordTreeCache(lookup.Hit)
	if lookup.Hit {
		return lookup.Tree, nil
	}

	comments, err := s.repos.Comment.FindByArticle(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	start := time.Now()
	tree := commenttree.BuildTree(comments)
	s.metrics.ObserveTreeBuild(time.Since(start))

	// stored under the generation read above; a write since then has moved
	// the article on and this tree will not be served
	if err := s.trees.Set(ctx, article.ID, lookup.Generation, tree); err != nil {
		s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Comment tree cache write failed")
	}

	return tree, nil
}

// Create stores a new comment or reply. Nothing is written unless every check passes.
func (s *commentService) Create(ctx context.Context, slug string, principal *models.Principal, req *models.CreateCommentRequest) (*models.Comment, error) {
	guest := principal == nil
	input := &models.CreateCommentRequest{
		Content:    sanitize.PlainText(req.Content),
		AuthorName: sanitize.Line(req.AuthorName),
		ParentID:   req.ParentID,
	}
	if errs := s.validator.ValidateComment(input, guest); len(errs) > 0 {
		s.metrics.RecordCommentRejected(metrics.ReasonValidation)
		return nil, &InvalidInputError{Errors: errs}
	}

	article, err := findArticle(ctx, s.repos.Article, slug, principal.IsAdmin())
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
	}

	if guest {
		name := input.AuthorName
		comment.AuthorName = &name
	} else {
		exists, err := s.repos.User.Exists(ctx, principal.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check author: %w", err)
		}
		if !exists {
			return nil, ErrAuthorNotFound
		}
		userID := principal.UserID
		comment.AuthorUserID = &userID
	}

	if input.ParentID != nil {
		parentID, err := s.checkParent(ctx, article.ID, *input.ParentID)
		if err != nil {
			return nil, err
		}
		comment.ParentID = &parentID
	}

	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.invalidate(ctx, article.ID)
	s.metrics.RecordCommentCreated(guest, comment.ParentID != nil)

	s.log.Info().
		Str("comment_id", comment.ID).
		Str("article_id", article.ID).
		Bool("guest", guest).
		Bool("reply", comment.ParentID != nil).
		Msg("Comment created")

	return comment, nil
}

// checkParent verifies the parent exists, belongs to the same article and
// leaves room for one more level of nesting
func (s *commentService) checkParent(ctx context.Context, articleID, parentID string) (string, error) {
	parent, err := s.repos.Comment.GetByID(ctx, parentID)
	if err != nil {
		return "", fmt.Errorf("failed to load parent comment: %w", err)
	}
	if parent == nil {
		s.metrics.RecordCommentRejected(metrics.ReasonParentMissing)
		return "", ErrParentCommentNotFound
	}
	if parent.ArticleID != articleID {
		s.metrics.RecordCommentRejected(metrics.ReasonParentArticle)
		return "", ErrInvalidParentArticle
	}

	if err := commenttree.CheckReply(ctx, parent, s.repos.Comment.GetByID, s.maxDepth); err != nil {
		var depthErr *commenttree.MaxDepthError
		if errors.As(err, &depthErr) {
			s.metrics.RecordCommentRejected(metrics.ReasonMaxDepth)
			s.log.Debug().
				Str("parent_id", parent.ID).
				Int("depth", depthErr.Depth).
				Int("limit", depthErr.Limit).
				Msg("Reply rejected: too deep")
		}
		return "", err
	}

	return parent.ID, nil
}

// Delete removes a comment and all of its replies and returns how many were removed
func (s *commentService) Delete(ctx context.Context, id string) (int, error) {
	comment, err := s.repos.Comment.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return 0, ErrCommentNotFound
	}

	deleted, err := s.repos.Comment.DeleteSubtree(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	if deleted == 0 {
		return 0, ErrCommentNotFound
	}

	s.invalidate(ctx, comment.ArticleID)
	s.metrics.RecordCommentsDeleted(deleted)

	s.log.Info().
		Str("comment_id", id).
		Str("article_id", comment.ArticleID).
		Int("deleted", deleted).
		Msg("Comment subtree deleted")

	return deleted, nil
}

// MarkRead flags a comment as seen by an administrator. Marking an already
// read comment keeps the original reader and time.
func (s *commentService) MarkRead(ctx context.Context, id, adminID string) (*models.Comment, error) {
	updated, err := s.repos.Comment.MarkRead(ctx, id, adminID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to mark comment read: %w", err)
	}

	comment, err := s.repos.Comment.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}

	if updated {
		s.invalidate(ctx, comment.ArticleID)
		s.log.Info().Str("comment_id", id).Str("read_by", adminID).Msg("Comment marked read")
	}
	return comment, nil
}

// Unread returns the moderation queue, oldest first
func (s *commentService) Unread(ctx context.Context, limit int) ([]*models.Comment, error) {
	if limit < 1 || limit > maxUnreadLimit {
		limit = maxUnreadLimit
	}
	comments, err := s.repos.Comment.ListUnread(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread comments: %w", err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *commentService) invalidate(ctx context.Context, articleID string) {
	if err := s.trees.Invalidate(ctx, articleID); err != nil {
		s.log.Warn().Err(err).Str("article_id", articleID).Msg("Failed to invalidate comment tree")
	}
}
