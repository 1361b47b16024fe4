// Package slug derives URL slugs from article titles.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds generated slugs, suffix included
const MaxLength = 80

const (
	fallback    = "post"
	maxAttempts = 100
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	pattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ErrExhausted is returned when no free suffix was found
var ErrExhausted = errors.New("no free slug found")

// ExistsFunc reports whether a slug is already taken
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Make turns a title into a kebab-case slug. Accents are folded to their base
// letters; anything else outside [a-z0-9] becomes a separator.
func Make(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	s := nonAlnum.ReplaceAllString(strings.ToLower(folded), "-")
	s = truncate(strings.Trim(s, "-"), MaxLength)
	if s == "" {
		return fallback
	}
	return s
}

// Valid reports whether s is a well-formed slug
func Valid(s string) bool {
	return len(s) <= MaxLength && pattern.MatchString(s)
}

// Unique returns base, or base with the first free numeric suffix (-2, -3, ...)
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			suffix := "-" + strconv.Itoa(attempt)
			candidate = truncate(base, MaxLength-len(suffix)) + suffix
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %q after %d attempts", ErrExhausted, base, maxAttempts)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
