// pkg/lookup/redis.go
package lookup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisRecords is a record store kept as one hash per key under
// "<prefix>:<name>:<key>"
type RedisRecords struct {
	client redis.Cmdable
	name   string
	prefix string
}

// NewRedisRecords creates a record store over client
func NewRedisRecords(client redis.Cmdable, keyPrefix, name string) *RedisRecords {
	return &RedisRecords{client: client, name: name, prefix: keyPrefix + ":" + name + ":"}
}

// Name implements Store
func (s *RedisRecords) Name() string { return s.name }

// Get implements Store
func (s *RedisRecords) Get(ctx context.Context, key string) (map[string]string, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%s store: hgetall %s: %w", s.name, key, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	return fields, true, nil
}

// Keys implements Store
func (s *RedisRecords) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s store: scan: %w", s.name, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store. The client is owned by the caller.
func (s *RedisRecords) Close() error { return nil }

// RedisSet is a list store kept as one set under "<prefix>:<name>"
type RedisSet struct {
	client redis.Cmdable
	name   string
	key    string
}

// NewRedisSet creates a list store over client
func NewRedisSet(client redis.Cmdable, keyPrefix, name string) *RedisSet {
	return &RedisSet{client: client, name: name, key: keyPrefix + ":" + name}
}

// Name implements Store
func (s *RedisSet) Name() string { return s.name }

// Get implements Store
func (s *RedisSet) Get(ctx context.Context, key string) (map[string]string, bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key, key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%s list: sismember: %w", s.name, err)
	}
	if !ok {
		return nil, false, nil
	}
	return map[string]string{}, true, nil
}

// Keys implements Store
func (s *RedisSet) Keys(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%s list: smembers: %w", s.name, err)
	}
	sort.Strings(members)
	return members, nil
}

// Close implements Store
func (s *RedisSet) Close() error { return nil }

// PushRecords copies every record of src into redis hashes under
// "<prefix>:<name>:<key>", replacing existing entries
func PushRecords(ctx context.Context, client redis.Cmdable, keyPrefix string, src Store) (int, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, err
	}
	prefix := keyPrefix + ":" + src.Name() + ":"

	pipe := client.TxPipeline()
	for _, k := range keys {
		fields, _, err := src.Get(ctx, k)
		if err != nil {
			return 0, err
		}
		pipe.Del(ctx, prefix+k)
		if len(fields) > 0 {
			values := make(map[string]interface{}, len(fields))
			for f, v := range fields {
				values[f] = v
			}
			pipe.HSet(ctx, prefix+k, values)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to push %s: %w", src.Name(), err)
	}
	return len(keys), nil
}

// PushList replaces the redis set "<prefix>:<name>" with the keys of src
func PushList(ctx context.Context, client redis.Cmdable, keyPrefix string, src Store) (int, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, err
	}
	key := keyPrefix + ":" + src.Name()

	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}

	pipe := client.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.SAdd(ctx, key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to push %s: %w", src.Name(), err)
	}
	return len(keys), nil
}
