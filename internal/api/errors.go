package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/validation"
)

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var inputErr *service.InvalidInputError
	var depthErr *commenttree.MaxDepthError

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": inputErr.Errors})
	case errors.As(err, &depthErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": depthErr.Error(), "max_depth": depthErr.Limit})
	case errors.Is(err, service.ErrArticleNotFound),
		errors.Is(err, service.ErrParentCommentNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidParentArticle),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrUnknownResource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAuthorNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlugTaken), errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// badRequest responds with a single field error
func badRequest(c *gin.Context, field, message string, value interface{}) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation failed",
		"details": []validation.ValidationError{{Field: field, Message: message, Value: value}},
	})
}

// idParam reads a UUID path parameter, responding 400 when it is malformed
func idParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if !validation.IsValidID(id) {
		badRequest(c, name, "invalid UUID format", id)
		return "", false
	}
	return id, true
}
