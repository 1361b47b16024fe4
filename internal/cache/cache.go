// Package cache keeps rendered comment trees so article pages do not rebuild
// them from the database on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/personal-blog-api/internal/commenttree"
	"github.com/personal-blog-api/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	treePrefix       = "blog:comments:tree:"
	generationPrefix = "blog:comments:gen:"
)

// Lookup is the result of reading a cached tree
type Lookup struct {
	Tree []*commenttree.Node
	Hit  bool
	// Generation is the article's cache generation at read time. A tree built
	// after a miss must be stored with it, so a tree assembled from rows read
	// before a later Invalidate is never served.
	Generation int64
}

// TreeCache stores comment trees per article
type TreeCache interface {
	Get(ctx context.Context, articleID string) (Lookup, error)
	Set(ctx context.Context, articleID string, generation int64, tree []*commenttree.Node) error
	// Invalidate starts a new generation, orphaning every tree stored before it
	Invalidate(ctx context.Context, articleID string) error
}

// RedisTreeCache is a TreeCache backed by Redis. Trees are keyed by article and
// generation; the generation counter is bumped with INCR on every write to the
// article's comments.
type RedisTreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*RedisTreeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisWithClient(client, cfg.TreeTTL), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *RedisTreeCache {
	return &RedisTreeCache{client: client, ttl: ttl}
}

func treeKey(articleID string, generation int64) string {
	return treePrefix + articleID + ":" + strconv.FormatInt(generation, 10)
}

func generationKey(articleID string) string {
	return generationPrefix + articleID
}

// Get returns the cached tree for the article's current generation
func (c *RedisTreeCache) Get(ctx context.Context, articleID string) (Lookup, error) {
	generation, err := c.client.Get(ctx, generationKey(articleID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Lookup{}, err
	}

	lookup := Lookup{Generation: generation}
	data, err := c.client.Get(ctx, treeKey(articleID, generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return lookup, nil
	}
	if err != nil {
		return lookup, err
	}

	if err := json.Unmarshal(data, &lookup.Tree); err != nil {
		return Lookup{Generation: generation}, fmt.Errorf("failed to decode cached tree: %w", err)
	}
	lookup.Hit = true
	return lookup, nil
}

// Set stores the tree under the generation it was read at
func (c *RedisTreeCache) Set(ctx context.Context, articleID string, generation int64, tree []*commenttree.Node) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	return c.client.Set(ctx, treeKey(articleID, generation), data, c.ttl).Err()
}

// Invalidate moves the article to a new generation. Trees stored under older
// generations are never read again and expire with their TTL.
func (c *RedisTreeCache) Invalidate(ctx context.Context, articleID string) error {
	return c.client.Incr(ctx, generationKey(articleID)).Err()
}

// Close releases the Redis connection
func (c *RedisTreeCache) Close() error {
	return c.client.Close()
}

// Nop is a TreeCache that never stores anything
type Nop struct{}

func (Nop) Get(context.Context, string) (Lookup, error)                   { return Lookup{}, nil }
func (Nop) Set(context.Context, string, int64, []*commenttree.Node) error { return nil }
func (Nop) Invalidate(context.Context, string) error                      { return nil }
