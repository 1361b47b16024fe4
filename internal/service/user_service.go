package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/validation"
)

// userService is the concrete implementation of UserService
type userService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
}

// newUserService creates a new UserService
func newUserService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *userService {
	return &userService{
		repos:     repos,
		validator: validator,
		log:       log.With().Str("service", "user").Logger(),
	}
}

// Create registers a new active account
func (s *userService) Create(ctx context.Context, email, name string, role models.Role) (*models.User, error) {
	user := &models.User{
		ID:     uuid.NewString(),
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Name:   strings.TrimSpace(name),
		Role:   role,
		Active: true,
	}
	if errs := s.validator.ValidateUser(user); len(errs) > 0 {
		return nil, &InvalidInputError{Errors: errs}
	}

	if err := s.repos.User.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// GetByID returns a user by ID
func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
