package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tagKeyPrefix namespaces the per-tag key sets in Redis.
const tagKeyPrefix = "pagetag:"

// RedisStore is a Store backed by Redis, for deployments where several
// instances must share one response cache.
//
// Each entry is a JSON blob under its page key with the TTL applied by
// Redis itself. Every tag owns a set of the page keys that carry it, so
// invalidation is two round trips: read the sets, delete the members.
// Tag sets are not expired eagerly; stale members simply miss on read.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection. password may
// be empty; db selects the Redis database number.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Get retrieves and decodes an entry. A missing or undecodable entry is a
// miss.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry - drop it and report a miss.
		_ = s.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &entry, true, nil
}

// Set stores an entry with its TTL and indexes it under its tags.
func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, ttl)
	for _, tag := range entry.Tags {
		pipe.SAdd(ctx, tagKeyPrefix+tag, key)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateTags deletes every page key indexed under any of the tags,
// then the tag sets themselves.
func (s *RedisStore) InvalidateTags(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}

	var doomed []string
	for _, tag := range tags {
		keys, err := s.client.SMembers(ctx, tagKeyPrefix+tag).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		doomed = append(doomed, keys...)
		doomed = append(doomed, tagKeyPrefix+tag)
	}

	if len(doomed) == 0 {
		return nil
	}
	return s.client.Del(ctx, doomed...).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
