package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

const (
	defaultPermissionTTL = 5 * time.Minute
	fenceTTL             = 24 * time.Hour
)

// setScript writes the role entry unless the fence key holds a higher
// version. KEYS: entry, fence. ARGV: payload, version, ttl ms.
var setScript = redis.NewScript(`
local fence = redis.call('GET', KEYS[2])
if fence and tonumber(fence) > tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// invalidateScript raises the fence to ARGV[1] and drops the entry.
// KEYS: entry, fence. ARGV: min version, fence ttl ms.
var invalidateScript = redis.NewScript(`
local fence = redis.call('GET', KEYS[2])
if not fence or tonumber(fence) < tonumber(ARGV[1]) then
	redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
end
redis.call('DEL', KEYS[1])
return 1
`)

// PermissionCache caches resolved roles as JSON.
// Key format: rbac:role:<role_id>, fenced by rbac:role:<role_id>:fence.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache creates a PermissionCache wrapping the given Redis client.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	if ttl <= 0 {
		ttl = defaultPermissionTTL
	}
	return &PermissionCache{client: client, ttl: ttl}
}

// Get returns the cached role, or ok=false on a miss.
func (c *PermissionCache) Get(ctx context.Context, roleID string) (*domain.Role, bool, error) {
	raw, err := c.client.Get(ctx, c.key(roleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("permission cache get: %w", err)
	}
	var role domain.Role
	if err := json.Unmarshal(raw, &role); err != nil {
		return nil, false, fmt.Errorf("permission cache decode: %w", err)
	}
	return &role, true, nil
}

// Set stores role until the cache TTL elapses. A role older than the
// current fence is dropped silently.
func (c *PermissionCache) Set(ctx context.Context, role *domain.Role) error {
	raw, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("permission cache encode: %w", err)
	}
	keys := []string{c.key(role.ID), c.fenceKey(role.ID)}
	if err := setScript.Run(ctx, c.client, keys, raw, role.Version, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("permission cache set: %w", err)
	}
	return nil
}

// Invalidate drops the entry for roleID and fences out versions below
// minVersion.
func (c *PermissionCache) Invalidate(ctx context.Context, roleID string, minVersion int64) error {
	keys := []string{c.key(roleID), c.fenceKey(roleID)}
	if err := invalidateScript.Run(ctx, c.client, keys, minVersion, fenceTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("permission cache invalidate: %w", err)
	}
	return nil
}

func (c *PermissionCache) key(roleID string) string {
	return fmt.Sprintf("rbac:role:%s", roleID)
}

func (c *PermissionCache) fenceKey(roleID string) string {
	return c.key(roleID) + ":fence"
}
