package benchmark

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/mocks"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/slug"
	"github.com/personal-blog-api/internal/validation"
)

// generateThread builds n comments on one article where every fifth comment
// starts a new thread and the rest reply to the previous comment
func generateThread(n int) []*models.Comment {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	comments := make([]*models.Comment, n)
	for i := 0; i < n; i++ {
		c := &models.Comment{
			ID:        fmt.Sprintf("c-%06d", i),
			ArticleID: "article-1",
			Content:   "comment body",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if i%5 != 0 {
			parent := comments[i-1].ID
			c.ParentID = &parent
		}
		comments[i] = c
	}
	return comments
}

// BenchmarkBuildTree benchmarks tree assembly for an article's comments
func BenchmarkBuildTree(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		comments := generateThread(n)
		b.Run(fmt.Sprintf("comments=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				commenttree.BuildTree(comments)
			}
			b.ReportMetric(float64(n*b.N)/b.Elapsed().Seconds(), "comments/sec")
		})
	}
}

// BenchmarkComputeDepth benchmarks the parent-chain walk at the default limit
func BenchmarkComputeDepth(b *testing.B) {
	comments := generateThread(5)
	byID := make(map[string]*models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	lookup := func(ctx context.Context, id string) (*models.Comment, error) {
		return byID[id], nil
	}
	leaf := comments[len(comments)-1].ID
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		commenttree.ComputeDepth(ctx, &leaf, lookup, commenttree.DefaultMaxDepth)
	}
}

// BenchmarkValidateComment benchmarks validation of a guest comment
func BenchmarkValidateComment(b *testing.B) {
	validator := validation.NewValidator(validation.DefaultLimits())
	parent := "550e8400-e29b-41d4-a716-446655440000"
	req := &models.CreateCommentRequest{
		Content:    "Thanks for the write-up, the part about channels helped a lot.",
		AuthorName: "Guest Reader",
		ParentID:   &parent,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validator.ValidateComment(req, true)
	}
}

// BenchmarkSlugMake benchmarks slug generation from accented titles
func BenchmarkSlugMake(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		slug.Make("Crème Brûlée: A Déjà Vu Story, Part 2")
	}
}

// BenchmarkStreamComments benchmarks streaming export performance
func BenchmarkStreamComments(b *testing.B) {
	repos, _, _, comments := mocks.NewRepositories()
	for _, c := range generateThread(1000) {
		comments.Create(context.Background(), c)
	}
	services := service.NewServices(service.Deps{Repos: repos, Log: zerolog.Nop()})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		if err := services.Export.StreamComments(context.Background(), w, "ndjson"); err != nil {
			b.Fatalf("StreamComments failed: %v", err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
