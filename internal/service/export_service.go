package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamArticles streams articles in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	count, err := stream(w, "articles", format, func(emit func(*models.Article) error) error {
		return s.repos.Article.StreamAll(ctx, emit)
	})

	s.log.Info().Int("count", count).Msg("Articles export completed")
	return err
}

// StreamComments streams comments in the specified format
func (s *exportService) StreamComments(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting comments export")

	count, err := stream(w, "comments", format, func(emit func(*models.Comment) error) error {
		return s.repos.Comment.StreamAll(ctx, emit)
	})

	s.log.Info().Int("count", count).Msg("Comments export completed")
	return err
}

// StreamResource streams any resource type
func (s *exportService) StreamResource(ctx context.Context, w http.ResponseWriter, resource, format string) error {
	switch resource {
	case "articles":
		return s.StreamArticles(ctx, w, format)
	case "comments":
		return s.StreamComments(ctx, w, format)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "users":
		return s.repos.User.Count(ctx)
	case "articles":
		return s.repos.Article.Count(ctx)
	case "comments":
		return s.repos.Comment.Count(ctx)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
}

// stream writes every record produced by each as NDJSON or as one JSON array.
// Headers are only written once the format is known to be supported.
func stream[T any](w http.ResponseWriter, name, format string, each func(emit func(T) error) error) (int, error) {
	var prefix, sep, suffix, contentType string
	switch format {
	case "ndjson":
		contentType = "application/x-ndjson"
	case "json":
		contentType, prefix, sep, suffix = "application/json", "[", ",", "]"
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", name, format))

	flusher, _ := w.(http.Flusher)
	count := 0

	if prefix != "" {
		w.Write([]byte(prefix))
	}
	err := each(func(record T) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if count > 0 {
			w.Write([]byte(sep))
		}
		w.Write(data)
		if format == "ndjson" {
			w.Write([]byte("\n"))
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if suffix != "" {
		w.Write([]byte(suffix))
	}

	return count, err
}
