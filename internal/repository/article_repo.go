package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/models"
)

const articleColumns = `id, slug, title, summary, body, author_id, category, tags, status, cover_image_url, published_at, created_at, updated_at`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Summary, article.Body, article.AuthorID,
		article.Category, pq.Array(nonNilTags(article.Tags)), string(article.Status), article.CoverImageURL,
		article.PublishedAt, article.CreatedAt, article.UpdatedAt,
	)
	return err
}

// Update overwrites the mutable fields of an article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles
		SET slug = $2, title = $3, summary = $4, body = $5, category = $6, tags = $7,
		    status = $8, cover_image_url = $9, published_at = $10, updated_at = $11
		WHERE id = $1
	`
	article.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Summary, article.Body, article.Category,
		pq.Array(nonNilTags(article.Tags)), string(article.Status), article.CoverImageURL,
		article.PublishedAt, article.UpdatedAt,
	)
	return err
}

// Delete removes an article together with its comments
func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE article_id = $1", id); err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		rows, err := affected(tx.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id))
		if err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	return deleted, err
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *articleRepo) getOne(ctx context.Context, column, value string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE ` + column + ` = $1`

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// SlugExists checks if an article with the given slug exists
func (r *articleRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)", slug).Scan(&exists)
	return exists, err
}

// List returns one page of articles matching the filter and the total match count
func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter, limit, offset int) ([]*models.Article, int, error) {
	where, args := articleWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}
	if total == 0 {
		return []*models.Article{}, 0, nil
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM articles%s
		ORDER BY COALESCE(published_at, created_at) DESC, id
		LIMIT $%d OFFSET $%d`, articleColumns, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]*models.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}

	return articles, total, rows.Err()
}

// articleWhere builds the WHERE clause and positional arguments for a filter
func articleWhere(f models.ArticleFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(args))))
	}

	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.Tag != "" {
		add("? = ANY(tags)", f.Tag)
	}
	if f.Category != "" {
		add("category = ?", f.Category)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add("(title ILIKE ? OR summary ILIKE ? OR body ILIKE ?)", "%"+escapeLike(q)+"%")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Tags returns every tag used by published articles with its usage count
func (r *articleRepo) Tags(ctx context.Context) ([]models.TaxonomyCount, error) {
	return r.taxonomy(ctx, `
		SELECT tag, COUNT(*) FROM articles, unnest(tags) AS tag
		WHERE status = 'published'
		GROUP BY tag ORDER BY COUNT(*) DESC, tag
	`)
}

// Categories returns every category used by published articles with its usage count
func (r *articleRepo) Categories(ctx context.Context) ([]models.TaxonomyCount, error) {
	return r.taxonomy(ctx, `
		SELECT category, COUNT(*) FROM articles
		WHERE status = 'published' AND category <> ''
		GROUP BY category ORDER BY COUNT(*) DESC, category
	`)
}

func (r *articleRepo) taxonomy(ctx context.Context, query string) ([]models.TaxonomyCount, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.TaxonomyCount{}
	for rows.Next() {
		var tc models.TaxonomyCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// StreamAll streams all articles for export
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return err
		}
		if err := callback(article); err != nil {
			return err
		}
	}

	return rows.Err()
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var status string
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID, &article.Slug, &article.Title, &article.Summary, &article.Body, &article.AuthorID,
		&article.Category, pq.Array(&article.Tags), &status, &article.CoverImageURL,
		&publishedAt, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Status = models.ArticleStatus(status)
	article.Tags = nonNilTags(article.Tags)
	article.PublishedAt = timePtr(publishedAt)
	return &article, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
