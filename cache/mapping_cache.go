package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cuefm/logger"
	"cuefm/model"
)

// mappingTTL bounds how long a derived mapping lives. Entries are keyed by
// the versions they were derived from, so stale entries are simply never
// read again; the TTL just keeps the keyspace small.
const mappingTTL = 10 * time.Minute

// MappingCache caches the derived segment mapping keyed by the manifest and
// timeline versions it was computed from. The cache is never authoritative:
// a miss recomputes from the documents.
type MappingCache struct{}

// NewMappingCache returns the cache. Works as a no-op when redis is not
// connected.
func NewMappingCache() *MappingCache { return &MappingCache{} }

func mappingKey(manifestVer, timelineVer int64) string {
	return fmt.Sprintf("cuefm:mapping:%d:%d", manifestVer, timelineVer)
}

// Get returns the cached mapping for the version pair, if present.
func (c *MappingCache) Get(ctx context.Context, manifestVer, timelineVer int64) (model.Restrictions, bool) {
	if RedisClient == nil {
		return nil, false
	}
	raw, err := RedisClient.Get(ctx, mappingKey(manifestVer, timelineVer)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("[Cache] Mapping read failed", logger.ErrorField(err))
		}
		return nil, false
	}
	var mapping model.Restrictions
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, false
	}
	return mapping, true
}

// Set stores the mapping for the version pair. Failures only cost a
// recompute, so they are logged and swallowed.
func (c *MappingCache) Set(ctx context.Context, manifestVer, timelineVer int64, mapping model.Restrictions) {
	if RedisClient == nil {
		return
	}
	raw, err := json.Marshal(mapping)
	if err != nil {
		return
	}
	if err := RedisClient.Set(ctx, mappingKey(manifestVer, timelineVer), raw, mappingTTL).Err(); err != nil {
		logger.Warn("[Cache] Mapping write failed", logger.ErrorField(err))
	}
}
