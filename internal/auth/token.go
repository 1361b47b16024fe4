package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/personal-blog-api/internal/models"
)

const issuer = "personal-blog-api"

var (
	// ErrInvalidToken is returned for any token that fails parsing or validation
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrEmptySecret is returned when signing or verifying without a secret
	ErrEmptySecret = errors.New("token secret is empty")
)

// Claims are the bearer token claims. Subject carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// IssueToken signs an HS256 token for the given user
func IssueToken(secret string, userID string, role models.Role, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if _, err := uuid.Parse(userID); err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	if !models.ValidRoles[role] {
		return "", fmt.Errorf("invalid role %q", role)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the principal it names
func ParseToken(secret, tokenString string) (*models.Principal, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	if !models.ValidRoles[claims.Role] {
		return nil, ErrInvalidToken
	}

	return &models.Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
