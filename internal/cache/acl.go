// Package cache holds the short-TTL ACL decision cache. Keys are namespaced
// per tenant so invalidation on a grant change never touches another
// tenant's entries. The cache is strictly an accelerator: a nil cache or an
// unreachable redis degrades to direct resolution.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docuvault/internal/domain/models"

	"github.com/redis/go-redis/v9"
)

// ACLCache stores resolved (tenant, user, folder) -> access level decisions.
type ACLCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates an ACL cache. A nil client yields a disabled cache whose
// methods are all no-ops.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ACLCache {
	if client == nil {
		return nil
	}
	return &ACLCache{client: client, ttl: ttl, logger: logger}
}

func (c *ACLCache) key(tenantID, userID, folderID int64) string {
	return fmt.Sprintf("acl:%d:%d:%d", tenantID, userID, folderID)
}

// Get returns a cached decision. Cache misses and redis errors both read as
// "not cached".
func (c *ACLCache) Get(ctx context.Context, tenantID, userID, folderID int64) (models.AccessLevel, bool) {
	if c == nil {
		return models.AccessNone, false
	}
	value, err := c.client.Get(ctx, c.key(tenantID, userID, folderID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("acl cache read failed", "error", err)
		}
		return models.AccessNone, false
	}
	if value == "NONE" {
		return models.AccessNone, true
	}
	level, err := models.ParseAccessLevel(value)
	if err != nil {
		return models.AccessNone, false
	}
	return level, true
}

// Set stores a decision. Errors are logged and dropped; the cache never
// fails a request.
func (c *ACLCache) Set(ctx context.Context, tenantID, userID, folderID int64, level models.AccessLevel) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(tenantID, userID, folderID), level.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("acl cache write failed", "error", err)
	}
}

// InvalidateTenant drops every cached decision for a tenant. Called on any
// grant mutation; folder-level precision is not worth tracking inheritance
// fan-out when entries expire within seconds anyway.
func (c *ACLCache) InvalidateTenant(ctx context.Context, tenantID int64) {
	if c == nil {
		return
	}
	pattern := fmt.Sprintf("acl:%d:*", tenantID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("acl cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("acl cache invalidation failed", "error", err)
	}
}
