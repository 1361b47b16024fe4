package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/models"
)

const commentColumns = `id, article_id, parent_id, author_user_id, author_name, content, is_read, read_at, read_by, created_at`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, article_id, parent_id, author_user_id, author_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.ParentID, comment.AuthorUserID, comment.AuthorName,
		comment.Content, comment.CreatedAt,
	)
	return err
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// FindByArticle returns every comment of an article in creation order
func (r *commentRepo) FindByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE article_id = $1 ORDER BY created_at`
	return r.list(ctx, query, articleID)
}

// DeleteSubtree removes a comment and all of its descendants in one statement
func (r *commentRepo) DeleteSubtree(ctx context.Context, id string) (int, error) {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM comments WHERE id = $1
			UNION ALL
			SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
		)
		DELETE FROM comments WHERE id IN (SELECT id FROM subtree)
	`
	return affected(r.db.ExecContext(ctx, query, id))
}

// MarkRead flags an unread comment as read by a moderator
func (r *commentRepo) MarkRead(ctx context.Context, id, readBy string, at time.Time) (bool, error) {
	query := `
		UPDATE comments SET is_read = TRUE, read_at = $2, read_by = $3
		WHERE id = $1 AND NOT is_read
	`
	rows, err := affected(r.db.ExecContext(ctx, query, id, at, readBy))
	return rows > 0, err
}

// ListUnread returns the oldest unread comments first
func (r *commentRepo) ListUnread(ctx context.Context, limit int) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE NOT is_read ORDER BY created_at LIMIT $1`
	return r.list(ctx, query, limit)
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

// StreamAll streams all comments for export
func (r *commentRepo) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return err
		}
		if err := callback(comment); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *commentRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var parentID, authorUserID, authorName, readBy sql.NullString
	var readAt sql.NullTime

	err := row.Scan(
		&comment.ID, &comment.ArticleID, &parentID, &authorUserID, &authorName,
		&comment.Content, &comment.IsRead, &readAt, &readBy, &comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	comment.ParentID = stringPtr(parentID)
	comment.AuthorUserID = stringPtr(authorUserID)
	comment.AuthorName = stringPtr(authorName)
	comment.ReadAt = timePtr(readAt)
	comment.ReadBy = stringPtr(readBy)
	return &comment, nil
}
