package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/metrics"
	"github.com/personal-blog-api/internal/service"
)

// RouterOptions carries the optional observability hooks of the router
type RouterOptions struct {
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil
	Gatherer prometheus.Gatherer
	// HealthCheck reports backing store availability on /health
	HealthCheck func(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, opts RouterOptions, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware(opts.Metrics))
	router.Use(corsMiddleware())
	router.Use(Authenticate(cfg.Auth.JWTSecret))

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, cfg.Comments.MaxDepth, log)
	exportHandler := NewExportHandler(services, log)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Health and metrics
	router.GET("/health", healthCheck(opts.HealthCheck))
	router.GET("/stats", statsHandler(services))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1
	v1 := router.Group("/v1")
	{
		// Public endpoints
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.GET("/:slug", articleHandler.Get)
			articles.GET("/:slug/thumbnail.svg", articleHandler.Thumbnail)
			articles.GET("/:slug/comments", commentHandler.Tree)
			articles.POST("/:slug/comments", bodyLimitMiddleware(maxCommentBodyBytes), commentHandler.Create)
		}
		v1.GET("/tags", articleHandler.Tags)
		v1.GET("/categories", articleHandler.Categories)

		// Admin endpoints
		admin := v1.Group("/admin", RequireAdmin())
		{
			adminArticles := admin.Group("/articles")
			{
				adminArticles.GET("", articleHandler.AdminList)
				adminArticles.POST("", articleHandler.Create)
				adminArticles.PUT("/:id", articleHandler.Update)
				adminArticles.DELETE("/:id", articleHandler.Delete)
				adminArticles.POST("/:id/publish", articleHandler.Publish)
				adminArticles.POST("/:id/unpublish", articleHandler.Unpublish)
			}

			adminComments := admin.Group("/comments")
			{
				adminComments.GET("/unread", commentHandler.Unread)
				adminComments.DELETE("/:id", commentHandler.Delete)
				adminComments.PATCH("/:id/read", commentHandler.MarkRead)
			}

			admin.GET("/exports", exportHandler.StreamExport)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if check != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "personal-blog-api",
		})
	}
}

// statsHandler returns record counts
func statsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCount, _ := services.Export.GetCount(ctx, "users")
		articlesCount, _ := services.Export.GetCount(ctx, "articles")
		commentsCount, _ := services.Export.GetCount(ctx, "comments")

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"users":    usersCount,
				"articles": articlesCount,
				"comments": commentsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
