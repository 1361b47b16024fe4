package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/thumbnail"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /v1/articles?page=&page_size=&tag=&category=&q=
func (h *ArticleHandler) List(c *gin.Context) {
	h.list(c, false)
}

// AdminList handles GET /v1/admin/articles, which also accepts status=
func (h *ArticleHandler) AdminList(c *gin.Context) {
	h.list(c, true)
}

func (h *ArticleHandler) list(c *gin.Context, admin bool) {
	filter := models.ArticleFilter{
		Tag:      c.Query("tag"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	if admin {
		filter.Status = models.ArticleStatus(c.Query("status"))
	}

	var ok bool
	if filter.Page, ok = intQuery(c, "page"); !ok {
		return
	}
	if filter.PageSize, ok = intQuery(c, "page_size"); !ok {
		return
	}

	page, err := h.services.Article.List(c.Request.Context(), filter, admin)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/articles/:slug
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.services.Article.GetBySlug(c.Request.Context(), c.Param("slug"), principalFrom(c).IsAdmin())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Thumbnail handles GET /v1/articles/:slug/thumbnail.svg
// Redirects to the cover image when the article has one.
func (h *ArticleHandler) Thumbnail(c *gin.Context) {
	cover, svg, err := h.services.Article.Thumbnail(c.Request.Context(), c.Param("slug"), principalFrom(c).IsAdmin())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if cover != "" {
		c.Redirect(http.StatusFound, cover)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, thumbnail.ContentType, svg)
}

// Tags handles GET /v1/tags
func (h *ArticleHandler) Tags(c *gin.Context) {
	tags, err := h.services.Article.Tags(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Categories handles GET /v1/categories
func (h *ArticleHandler) Categories(c *gin.Context) {
	categories, err := h.services.Article.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Create handles POST /v1/admin/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), principalFrom(c).UserID, &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

// Update handles PUT /v1/admin/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /v1/admin/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Article.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Publish handles POST /v1/admin/articles/:id/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	article, err := h.services.Article.Publish(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Unpublish handles POST /v1/admin/articles/:id/unpublish
func (h *ArticleHandler) Unpublish(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	article, err := h.services.Article.Unpublish(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// intQuery parses an optional integer query parameter
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name, name+" must be an integer", raw)
		return 0, false
	}
	return n, true
}
