package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/artgraph/thesaurus"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding the term cache.
const DefaultRedisKey = "artgraph:terms"

// RedisHash is the part of the Redis client the store uses.
type RedisHash interface {
	HGetAll(ctx context.Context, key string) *goredis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *goredis.IntCmd
}

// RedisStore keeps the term cache in one Redis hash, one field per term.
type RedisStore struct {
	rdb RedisHash
	key string
}

// NewRedisStore creates a store on the hash key.
func NewRedisStore(rdb RedisHash, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

// DialRedis connects to Redis and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// Load reads all terms from the hash.
func (s *RedisStore) Load(ctx context.Context) (map[string]thesaurus.CachedTerm, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", s.key, err)
	}
	terms := make(map[string]thesaurus.CachedTerm, len(fields))
	for id, raw := range fields {
		var term thesaurus.CachedTerm
		if err := json.Unmarshal([]byte(raw), &term); err != nil {
			return nil, fmt.Errorf("unmarshal term %s: %w", id, err)
		}
		if term.ID == "" {
			term.ID = id
		}
		terms[id] = term
	}
	return terms, nil
}

// Save writes all terms in one HSET.
func (s *RedisStore) Save(ctx context.Context, terms map[string]thesaurus.CachedTerm) error {
	if len(terms) == 0 {
		return nil
	}
	values := make(map[string]any, len(terms))
	for id, term := range terms {
		data, err := json.Marshal(term)
		if err != nil {
			return fmt.Errorf("marshal term %s: %w", id, err)
		}
		values[id] = string(data)
	}
	if err := s.rdb.HSet(ctx, s.key, values).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", s.key, err)
	}
	return nil
}
