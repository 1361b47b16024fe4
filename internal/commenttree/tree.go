// Package commenttree rebuilds threaded comment hierarchies from flat rows and
// guards reply nesting depth at write time.
package commenttree

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/personal-blog-api/internal/models"
)

// Node is a comment together with its ordered replies.
// Replies is never nil so it always serializes as an array.
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// publicNode is the serialized form of a Node. Moderation state
// (is_read, read_at, read_by) is left out of public threads.
type publicNode struct {
	ID           string    `json:"id"`
	ArticleID    string    `json:"article_id"`
	ParentID     *string   `json:"parent_id"`
	AuthorUserID *string   `json:"author_user_id,omitempty"`
	AuthorName   *string   `json:"author_name,omitempty"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Replies      []*Node   `json:"replies"`
}

// MarshalJSON writes the public projection of the comment and its replies
func (n Node) MarshalJSON() ([]byte, error) {
	replies := n.Replies
	if replies == nil {
		replies = []*Node{}
	}
	return json.Marshal(publicNode{
		ID:           n.ID,
		ArticleID:    n.ArticleID,
		ParentID:     n.ParentID,
		AuthorUserID: n.AuthorUserID,
		AuthorName:   n.AuthorName,
		Content:      n.Content,
		CreatedAt:    n.CreatedAt,
		Replies:      replies,
	})
}

// BuildTree assembles the comments of a single article into a forest.
//
// Roots are ordered newest first, replies at every level oldest first. A comment
// whose parent is missing from the input is promoted to a root, so every input
// comment appears exactly once in the result. Callers must pass comments from
// one article only.
func BuildTree(comments []*models.Comment) []*Node {
	nodes := make(map[string]*Node, len(comments))
	order := make([]*Node, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		n := &Node{Comment: *c, Replies: []*Node{}}
		nodes[c.ID] = n
		order = append(order, n)
	}

	cut := loopLinks(nodes, order)

	roots := make([]*Node, 0)
	for _, n := range order {
		parent := parentOf(n, nodes)
		if parent == nil || cut[n] {
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}

	slices.SortStableFunc(roots, func(a, b *Node) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	for _, root := range roots {
		sortReplies(root)
	}

	return roots
}

// parentOf returns the node n hangs under, or nil when n is a root or an orphan
func parentOf(n *Node, nodes map[string]*Node) *Node {
	if n.ParentID == nil {
		return nil
	}
	return nodes[*n.ParentID]
}

// loopLinks finds parent links that close a cycle (including self-parenting).
// Such rows can only come from corrupted data; the node whose link closes the
// loop is treated as a root so the whole cycle stays reachable.
func loopLinks(nodes map[string]*Node, order []*Node) map[*Node]bool {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[*Node]int, len(order))
	cut := make(map[*Node]bool)

	for _, start := range order {
		if state[start] != unvisited {
			continue
		}

		var path []*Node
		n := start
		for n != nil && state[n] == unvisited {
			state[n] = visiting
			path = append(path, n)
			n = parentOf(n, nodes)
		}
		if n != nil && state[n] == visiting {
			cut[path[len(path)-1]] = true
		}

		for _, p := range path {
			state[p] = done
		}
	}

	return cut
}

func sortReplies(n *Node) {
	slices.SortStableFunc(n.Replies, func(a, b *Node) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	for _, child := range n.Replies {
		sortReplies(child)
	}
}

// Walk visits every node depth-first in display order. Roots have depth 0.
func Walk(roots []*Node, fn func(n *Node, depth int)) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Replies, depth+1)
		}
	}
	visit(roots, 0)
}

// Count returns the total number of nodes in the forest
func Count(roots []*Node) int {
	total := 0
	Walk(roots, func(*Node, int) { total++ })
	return total
}
