package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/metrics"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
)

func TestCommentService_CreateGuestComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.svc.Comment.Create(ctx, "hello-world", nil, &models.CreateCommentRequest{
		Content:    "<script>alert(1)</script>Great <b>post</b>!",
		AuthorName: "  Ann  ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if comment.Content != "Great post!" {
		t.Errorf("Expected sanitized content, got %q", comment.Content)
	}
	if comment.AuthorName == nil || *comment.AuthorName != "Ann" {
		t.Errorf("Expected author name 'Ann', got %v", comment.AuthorName)
	}
	if comment.AuthorUserID != nil {
		t.Error("Guest comment must not carry a user id")
	}
	if comment.ParentID != nil {
		t.Error("Top-level comment must not have a parent")
	}
	if comment.ArticleID != f.published.ID {
		t.Errorf("Expected article %s, got %s", f.published.ID, comment.ArticleID)
	}
	if n, _ := f.comments.Count(ctx); n != 1 {
		t.Errorf("Expected 1 stored comment, got %d", n)
	}
	if f.cache.invalidations[f.published.ID] != 1 {
		t.Errorf("Expected tree cache to be invalidated once, got %d", f.cache.invalidations[f.published.ID])
	}
	if got := testutil.ToFloat64(f.metrics.CommentsCreatedTotal.WithLabelValues("guest", "top_level")); got != 1 {
		t.Errorf("Expected 1 guest comment recorded, got %v", got)
	}
}

func TestCommentService_CreateUserReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.seedComment(f.published, nil, 0)

	reply, err := f.svc.Comment.Create(ctx, "hello-world", f.readerPrincipal(), &models.CreateCommentRequest{
		Content:  "Agreed",
		ParentID: strPtr(root.ID),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if reply.AuthorUserID == nil || *reply.AuthorUserID != f.reader.ID {
		t.Errorf("Expected author user %s, got %v", f.reader.ID, reply.AuthorUserID)
	}
	if reply.AuthorName != nil {
		t.Error("Signed-in comment must not carry an author name")
	}
	if reply.ParentID == nil || *reply.ParentID != root.ID {
		t.Errorf("Expected parent %s, got %v", root.ID, reply.ParentID)
	}
}

func TestCommentService_CreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	otherRoot := f.seedComment(f.other, nil, 0)

	tests := []struct {
		name      string
		slug      string
		principal *models.Principal
		req       *models.CreateCommentRequest
		wantErr   error
		wantInput bool
	}{
		{
			name:      "markup only content",
			slug:      "hello-world",
			req:       &models.CreateCommentRequest{Content: "<b></b>", AuthorName: "Ann"},
			wantInput: true,
		},
		{
			name:      "guest without name",
			slug:      "hello-world",
			req:       &models.CreateCommentRequest{Content: "Hi"},
			wantInput: true,
		},
		{
			name:      "content too long",
			slug:      "hello-world",
			req:       &models.CreateCommentRequest{Content: strings.Repeat("x", models.MaxCommentLength+1), AuthorName: "Ann"},
			wantInput: true,
		},
		{
			name:    "unknown article",
			slug:    "no-such-post",
			req:     &models.CreateCommentRequest{Content: "Hi", AuthorName: "Ann"},
			wantErr: service.ErrArticleNotFound,
		},
		{
			name:    "guest on draft",
			slug:    "secret-draft",
			req:     &models.CreateCommentRequest{Content: "Hi", AuthorName: "Ann"},
			wantErr: service.ErrArticleNotFound,
		},
		{
			name:    "missing parent",
			slug:    "hello-world",
			req:     &models.CreateCommentRequest{Content: "Hi", AuthorName: "Ann", ParentID: strPtr(uuid.NewString())},
			wantErr: service.ErrParentCommentNotFound,
		},
		{
			name:    "parent on another article",
			slug:    "hello-world",
			req:     &models.CreateCommentRequest{Content: "Hi", AuthorName: "Ann", ParentID: strPtr(otherRoot.ID)},
			wantErr: service.ErrInvalidParentArticle,
		},
		{
			name:      "unknown signed-in author",
			slug:      "hello-world",
			principal: &models.Principal{UserID: uuid.NewString(), Role: models.RoleUser},
			req:       &models.CreateCommentRequest{Content: "Hi"},
			wantErr:   service.ErrAuthorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := f.comments.Count(ctx)

			comment, err := f.svc.Comment.Create(ctx, tt.slug, tt.principal, tt.req)
			if err == nil {
				t.Fatalf("Expected error, got comment %+v", comment)
			}

			if tt.wantInput {
				var inputErr *service.InvalidInputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("Expected InvalidInputError, got %v", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}

			if after, _ := f.comments.Count(ctx); after != before {
				t.Errorf("Rejected comment was stored: %d -> %d", before, after)
			}
		})
	}
}

func TestCommentService_AdminMayCommentOnDraft(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Comment.Create(context.Background(), "secret-draft", f.adminPrincipal(),
		&models.CreateCommentRequest{Content: "Note to self"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestCommentService_MaxDepth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chain := f.seedChain(f.published, 5) // c0..c4, c4 sits at depth 4

	before, _ := f.comments.Count(ctx)
	_, err := f.svc.Comment.Create(ctx, "hello-world", nil, &models.CreateCommentRequest{
		Content:    "too deep",
		AuthorName: "Ann",
		ParentID:   strPtr(chain[4].ID),
	})

	var depthErr *commenttree.MaxDepthError
	if !errors.As(err, &depthErr) {
		t.Fatalf("Expected MaxDepthError, got %v", err)
	}
	if !errors.Is(err, commenttree.ErrMaxDepthExceeded) {
		t.Error("Expected error to match ErrMaxDepthExceeded")
	}
	if depthErr.Limit != commenttree.DefaultMaxDepth {
		t.Errorf("Expected limit %d, got %d", commenttree.DefaultMaxDepth, depthErr.Limit)
	}
	if !strings.Contains(err.Error(), "5") {
		t.Errorf("Expected message to name the limit, got %q", err.Error())
	}
	if after, _ := f.comments.Count(ctx); after != before {
		t.Errorf("Rejected reply was stored: %d -> %d", before, after)
	}
	if got := testutil.ToFloat64(f.metrics.CommentsRejectedTotal.WithLabelValues(metrics.ReasonMaxDepth)); got != 1 {
		t.Errorf("Expected 1 depth rejection recorded, got %v", got)
	}

	// the parent is loaded once; the depth walk continues from its parent
	f.comments.Lookups = 0
	reply, err := f.svc.Comment.Create(ctx, "hello-world", nil, &models.CreateCommentRequest{
		Content:    "just deep enough",
		AuthorName: "Ann",
		ParentID:   strPtr(chain[3].ID),
	})
	if err != nil {
		t.Fatalf("Reply to c3 should succeed, got %v", err)
	}
	if *reply.ParentID != chain[3].ID {
		t.Errorf("Expected parent %s, got %s", chain[3].ID, *reply.ParentID)
	}
	if f.comments.Lookups != 4 {
		t.Errorf("Expected 4 comment lookups for a reply at depth 4, got %d", f.comments.Lookups)
	}
}

func TestCommentService_Tree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seedComment(f.published, nil, 0)
	b := f.seedComment(f.published, nil, 5)
	c := f.seedComment(f.published, nil, 2)
	a2 := f.seedComment(f.published, a, 3)
	a1 := f.seedComment(f.published, a, 1)
	f.seedComment(f.other, nil, 9)

	tree, err := f.svc.Comment.Tree(ctx, "hello-world", false)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}

	if len(tree) != 3 {
		t.Fatalf("Expected 3 roots, got %d", len(tree))
	}
	wantRoots := []string{b.ID, c.ID, a.ID}
	for i, id := range wantRoots {
		if tree[i].ID != id {
			t.Errorf("Root %d: expected %s, got %s", i, id, tree[i].ID)
		}
	}
	replies := tree[2].Replies
	if len(replies) != 2 || replies[0].ID != a1.ID || replies[1].ID != a2.ID {
		t.Errorf("Expected replies [a1 a2], got %v", replies)
	}
	if commenttree.Count(tree) != 5 {
		t.Errorf("Expected 5 nodes, got %d", commenttree.Count(tree))
	}
	if !f.cache.cached(f.published.ID) {
		t.Error("Expected tree to be cached")
	}

	// second read is served from the cache
	if _, err := f.svc.Comment.Tree(ctx, "hello-world", false); err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if got := testutil.ToFloat64(f.metrics.TreeCacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}
}

func TestCommentService_TreeFillRacingCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedComment(f.published, nil, 0)

	// a comment lands after the reader loaded its rows but before it fills the cache
	var created *models.Comment
	f.cache.beforeSet = func() {
		f.cache.beforeSet = nil
		c, err := f.svc.Comment.Create(ctx, "hello-world", f.readerPrincipal(), &models.CreateCommentRequest{Content: "late"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		created = c
	}

	stale, err := f.svc.Comment.Tree(ctx, "hello-world", false)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if commenttree.Count(stale) != 1 {
		t.Fatalf("Expected the racing read to see 1 comment, got %d", commenttree.Count(stale))
	}

	tree, err := f.svc.Comment.Tree(ctx, "hello-world", false)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if commenttree.Count(tree) != 2 {
		t.Fatalf("Expected 2 comments after the write, got %d", commenttree.Count(tree))
	}
	if tree[0].ID != created.ID {
		t.Errorf("Expected newest root %s, got %s", created.ID, tree[0].ID)
	}
	if got := testutil.ToFloat64(f.metrics.TreeCacheLookups.WithLabelValues("hit")); got != 0 {
		t.Errorf("Expected no cache hits, got %v", got)
	}
}

func TestCommentService_TreeHidesDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Comment.Tree(ctx, "secret-draft", false); !errors.Is(err, service.ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound, got %v", err)
	}

	tree, err := f.svc.Comment.Tree(ctx, "secret-draft", true)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if tree == nil || len(tree) != 0 {
		t.Errorf("Expected empty non-nil tree, got %v", tree)
	}
}

func TestCommentService_DeleteSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.seedComment(f.published, nil, 0)
	child := f.seedComment(f.published, root, 1)
	f.seedComment(f.published, child, 2)
	keep := f.seedComment(f.published, nil, 3)

	deleted, err := f.svc.Comment.Delete(ctx, root.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 comments deleted, got %d", deleted)
	}
	if n, _ := f.comments.Count(ctx); n != 1 {
		t.Errorf("Expected 1 remaining comment, got %d", n)
	}
	if c, _ := f.comments.GetByID(ctx, keep.ID); c == nil {
		t.Error("Unrelated comment was deleted")
	}
	if f.cache.invalidations[f.published.ID] != 1 {
		t.Error("Expected tree cache to be invalidated")
	}

	if _, err := f.svc.Comment.Delete(ctx, root.ID); !errors.Is(err, service.ErrCommentNotFound) {
		t.Errorf("Expected ErrCommentNotFound, got %v", err)
	}
}

func TestCommentService_MarkReadAndUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.seedComment(f.published, nil, 0)
	second := f.seedComment(f.published, nil, 1)

	unread, err := f.svc.Comment.Unread(ctx, 10)
	if err != nil {
		t.Fatalf("Unread failed: %v", err)
	}
	if len(unread) != 2 || unread[0].ID != first.ID {
		t.Fatalf("Expected oldest unread first, got %v", unread)
	}

	marked, err := f.svc.Comment.MarkRead(ctx, first.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !marked.IsRead || marked.ReadBy == nil || *marked.ReadBy != f.admin.ID || marked.ReadAt == nil {
		t.Errorf("Expected comment marked read by admin, got %+v", marked)
	}
	readAt := *marked.ReadAt

	// marking again keeps the original reader and time
	again, err := f.svc.Comment.MarkRead(ctx, first.ID, f.reader.ID)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if *again.ReadBy != f.admin.ID || !again.ReadAt.Equal(readAt) {
		t.Errorf("Read marker changed: %+v", again)
	}

	unread, _ = f.svc.Comment.Unread(ctx, 10)
	if len(unread) != 1 || unread[0].ID != second.ID {
		t.Errorf("Expected only second comment unread, got %v", unread)
	}

	if _, err := f.svc.Comment.MarkRead(ctx, uuid.NewString(), f.admin.ID); !errors.Is(err, service.ErrCommentNotFound) {
		t.Errorf("Expected ErrCommentNotFound, got %v", err)
	}
}
