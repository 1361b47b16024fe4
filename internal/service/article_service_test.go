package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
)

func TestArticleService_CreateAllocatesUniqueSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	article, err := f.svc.Article.Create(ctx, f.admin.ID, &models.ArticleInput{
		Title: "Hello, World!",
		Body:  "Second take",
		Tags:  []string{"Go", "go", " Testing "},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if article.Slug != "hello-world-2" {
		t.Errorf("Expected slug 'hello-world-2', got %q", article.Slug)
	}
	if article.Status != models.ArticleStatusDraft || article.PublishedAt != nil {
		t.Errorf("Expected unpublished draft, got %s / %v", article.Status, article.PublishedAt)
	}
	if strings.Join(article.Tags, ",") != "go,testing" {
		t.Errorf("Expected normalized tags [go testing], got %v", article.Tags)
	}
}

func TestArticleService_CreatePublished(t *testing.T) {
	f := newFixture(t)

	article, err := f.svc.Article.Create(context.Background(), f.admin.ID, &models.ArticleInput{
		Title:   "Café Society",
		Slug:    "cafe",
		Body:    "Body",
		Publish: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if article.Slug != "cafe" {
		t.Errorf("Expected explicit slug 'cafe', got %q", article.Slug)
	}
	if !article.IsPublished() || article.PublishedAt == nil {
		t.Error("Expected published article with published_at set")
	}
}

func TestArticleService_CreateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Article.Create(ctx, f.admin.ID, &models.ArticleInput{Title: "", Body: ""})
	var inputErr *service.InvalidInputError
	if !errors.As(err, &inputErr) || len(inputErr.Errors) != 2 {
		t.Errorf("Expected 2 validation errors, got %v", err)
	}

	_, err = f.svc.Article.Create(ctx, uuid.NewString(), &models.ArticleInput{Title: "T", Body: "B"})
	if !errors.Is(err, service.ErrAuthorNotFound) {
		t.Errorf("Expected ErrAuthorNotFound, got %v", err)
	}
}

func TestArticleService_PublishLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Article.GetBySlug(ctx, "secret-draft", false); !errors.Is(err, service.ErrArticleNotFound) {
		t.Fatalf("Draft should be hidden, got %v", err)
	}

	published, err := f.svc.Article.Publish(ctx, f.draft.ID)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !published.IsPublished() || published.PublishedAt == nil {
		t.Fatal("Expected article to be published")
	}
	stamp := *published.PublishedAt

	again, err := f.svc.Article.Publish(ctx, f.draft.ID)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !again.PublishedAt.Equal(stamp) {
		t.Error("Publishing twice must not restamp published_at")
	}

	if _, err := f.svc.Article.GetBySlug(ctx, "secret-draft", false); err != nil {
		t.Errorf("Published article should be visible, got %v", err)
	}

	draft, err := f.svc.Article.Unpublish(ctx, f.draft.ID)
	if err != nil {
		t.Fatalf("Unpublish failed: %v", err)
	}
	if draft.IsPublished() || draft.PublishedAt != nil {
		t.Error("Draft must not carry published_at")
	}

	if _, err := f.svc.Article.Publish(ctx, uuid.NewString()); !errors.Is(err, service.ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleService_UpdateKeepsSlugUnlessGiven(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.svc.Article.Update(ctx, f.published.ID, &models.ArticleInput{Title: "Renamed", Body: "New body"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Slug != "hello-world" || updated.Title != "Renamed" {
		t.Errorf("Expected slug kept and title changed, got %q / %q", updated.Slug, updated.Title)
	}

	updated, err = f.svc.Article.Update(ctx, f.published.ID, &models.ArticleInput{Title: "Renamed", Slug: "other-post", Body: "x"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Slug != "other-post-2" {
		t.Errorf("Expected colliding slug to get a suffix, got %q", updated.Slug)
	}
	if ok, _ := f.articles.SlugExists(ctx, "hello-world"); ok {
		t.Error("Old slug should be released")
	}
}

func TestArticleService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.Article.List(ctx, models.ArticleFilter{}, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Expected 2 published articles, got %d", page.Total)
	}
	if page.Items[0].Slug != "other-post" {
		t.Errorf("Expected newest first, got %s", page.Items[0].Slug)
	}

	all, _ := f.svc.Article.List(ctx, models.ArticleFilter{}, true)
	if all.Total != 3 {
		t.Errorf("Expected 3 articles including drafts, got %d", all.Total)
	}

	paged, _ := f.svc.Article.List(ctx, models.ArticleFilter{Page: 2, PageSize: 1}, false)
	if len(paged.Items) != 1 || paged.TotalPages != 2 || paged.HasNext {
		t.Errorf("Unexpected page: %+v", paged)
	}

	found, _ := f.svc.Article.List(ctx, models.ArticleFilter{Query: "BODY OF HELLO"}, false)
	if found.Total != 1 || found.Items[0].Slug != "hello-world" {
		t.Errorf("Expected search to find hello-world, got %+v", found.Items)
	}

	tagged, _ := f.svc.Article.List(ctx, models.ArticleFilter{Tag: " GO "}, false)
	if tagged.Total != 2 {
		t.Errorf("Expected 2 articles tagged go, got %d", tagged.Total)
	}

	_, err = f.svc.Article.List(ctx, models.ArticleFilter{Status: "archived"}, true)
	var inputErr *service.InvalidInputError
	if !errors.As(err, &inputErr) {
		t.Errorf("Expected InvalidInputError, got %v", err)
	}
}

func TestArticleService_Taxonomy(t *testing.T) {
	f := newFixture(t)

	tags, err := f.svc.Article.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "go" || tags[0].Count != 2 {
		t.Errorf("Expected go x2 over published articles, got %v", tags)
	}
}

func TestArticleService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.seedComment(f.published, nil, 0)
	f.seedComment(f.published, root, 1)
	f.seedComment(f.other, nil, 2)

	if err := f.svc.Article.Delete(ctx, f.published.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n, _ := f.comments.Count(ctx); n != 1 {
		t.Errorf("Expected only the other article's comment to remain, got %d", n)
	}
	if f.cache.invalidations[f.published.ID] != 1 {
		t.Error("Expected tree cache invalidation")
	}
	if err := f.svc.Article.Delete(ctx, f.published.ID); !errors.Is(err, service.ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleService_Thumbnail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cover, svg, err := f.svc.Article.Thumbnail(ctx, "hello-world", false)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if cover != "" || !strings.HasPrefix(string(svg), "<svg") {
		t.Errorf("Expected generated svg, got cover %q", cover)
	}

	f.published.CoverImageURL = "https://cdn.example.com/c.png"
	f.articles.Update(ctx, f.published)

	cover, svg, err = f.svc.Article.Thumbnail(ctx, "hello-world", false)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if cover != "https://cdn.example.com/c.png" || svg != nil {
		t.Errorf("Expected cover redirect, got %q", cover)
	}
}
