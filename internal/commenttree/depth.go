package commenttree

import (
	"context"
	"errors"
	"fmt"

	"github.com/personal-blog-api/internal/models"
)

// DefaultMaxDepth is the reply nesting limit used when none is configured
const DefaultMaxDepth = 5

// ErrMaxDepthExceeded is matched by every MaxDepthError
var ErrMaxDepthExceeded = errors.New("maximum comment depth exceeded")

// MaxDepthError reports a reply that would be nested too deeply
type MaxDepthError struct {
	Limit int
	Depth int
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("replies can be nested at most %d levels deep", e.Limit)
}

func (e *MaxDepthError) Unwrap() error {
	return ErrMaxDepthExceeded
}

// LookupFunc fetches one comment by id, returning nil when it does not exist
type LookupFunc func(ctx context.Context, id string) (*models.Comment, error)

// ComputeDepth returns the depth a new comment replying to parentID would get.
// Top-level comments have depth 0.
//
// The parent chain is walked with one lookup per hop and the walk stops at a
// root, after maxDepth hops, or at a parent that cannot be resolved. Lookup
// failures end the walk as if the root had been reached.
func ComputeDepth(ctx context.Context, parentID *string, lookup LookupFunc, maxDepth int) int {
	if parentID == nil {
		return 0
	}
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}

	depth := 0
	next := *parentID
	for depth < maxDepth {
		if ctx.Err() != nil {
			break
		}

		parent, err := lookup(ctx, next)
		if err != nil || parent == nil {
			break
		}

		depth++
		if parent.ParentID == nil {
			break
		}
		next = *parent.ParentID
	}

	return depth
}

// CheckDepth rejects a reply whose depth would reach maxDepth.
// It returns a *MaxDepthError, the context error, or nil.
func CheckDepth(ctx context.Context, parentID *string, lookup LookupFunc, maxDepth int) error {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}

	depth := ComputeDepth(ctx, parentID, lookup, maxDepth)
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth >= maxDepth {
		return &MaxDepthError{Limit: maxDepth, Depth: depth}
	}
	return nil
}

// CheckReply is CheckDepth for a parent that has already been loaded. The walk
// starts at the parent's own parent, so it needs one lookup fewer.
func CheckReply(ctx context.Context, parent *models.Comment, lookup LookupFunc, maxDepth int) error {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	if parent == nil {
		return ctx.Err()
	}

	depth := 1
	if parent.ParentID != nil && depth < maxDepth {
		depth += ComputeDepth(ctx, parent.ParentID, lookup, maxDepth-depth)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth >= maxDepth {
		return &MaxDepthError{Limit: maxDepth, Depth: depth}
	}
	return nil
}
