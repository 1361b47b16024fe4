package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	maxDepth int
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, maxDepth int, log zerolog.Logger) *CommentHandler {
	if maxDepth < 1 {
		maxDepth = commenttree.DefaultMaxDepth
	}
	return &CommentHandler{
		services: services,
		maxDepth: maxDepth,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// Tree handles GET /v1/articles/:slug/comments
func (h *CommentHandler) Tree(c *gin.Context) {
	tree, err := h.services.Comment.Tree(c.Request.Context(), c.Param("slug"), principalFrom(c).IsAdmin())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":  tree,
		"count":     commenttree.Count(tree),
		"max_depth": h.maxDepth,
	})
}

// Create handles POST /v1/articles/:slug/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), c.Param("slug"), principalFrom(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Unread handles GET /v1/admin/comments/unread?limit=
func (h *CommentHandler) Unread(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	comments, err := h.services.Comment.Unread(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// Delete handles DELETE /v1/admin/comments/:id
// Replies are removed together with the comment.
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.services.Comment.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// MarkRead handles PATCH /v1/admin/comments/:id/read
func (h *CommentHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	comment, err := h.services.Comment.MarkRead(c.Request.Context(), id, principalFrom(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}
