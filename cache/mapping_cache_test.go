package cache

import (
	"context"
	"testing"

	"cuefm/model"
)

func TestMappingCacheNoOpWithoutRedis(t *testing.T) {
	if RedisClient != nil {
		t.Skip("redis connected; no-op path not reachable")
	}
	c := NewMappingCache()
	ctx := context.Background()

	// Set must not panic and Get must miss.
	c.Set(ctx, 1, 1, model.Restrictions{"seg": {}})
	if _, ok := c.Get(ctx, 1, 1); ok {
		t.Error("expected a miss without a redis connection")
	}
}

func TestMappingKeyIncludesBothVersions(t *testing.T) {
	if mappingKey(1, 2) == mappingKey(2, 1) {
		t.Error("key must distinguish which document each version belongs to")
	}
	if mappingKey(1, 1) != mappingKey(1, 1) {
		t.Error("key must be stable")
	}
}
