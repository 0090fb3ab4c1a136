package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/c360studio/artgraph/thesaurus"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket used for the term cache.
const DefaultBucket = "ARTGRAPH_TERMS"

// KVStore keeps one KV entry per term in a JetStream bucket.
type KVStore struct {
	kv jetstream.KeyValue

	mu     sync.Mutex
	loaded map[string][]byte
}

// NewKVStore opens the bucket, creating it if it does not exist.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string) (*KVStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open term bucket: %w", err)
	}
	return NewKVStoreFromBucket(kv), nil
}

// NewKVStoreFromBucket wraps an already opened bucket.
func NewKVStoreFromBucket(kv jetstream.KeyValue) *KVStore {
	return &KVStore{kv: kv, loaded: make(map[string][]byte)}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "artgraph thesaurus term cache",
		History:     1,
	})
}

// Load reads every term in the bucket. Entries that fail to decode are
// skipped; they are overwritten when the term is fetched again.
func (s *KVStore) Load(ctx context.Context) (map[string]thesaurus.CachedTerm, error) {
	terms := make(map[string]thesaurus.CachedTerm)
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return terms, nil
		}
		return nil, fmt.Errorf("list term keys: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var term thesaurus.CachedTerm
		if err := json.Unmarshal(entry.Value(), &term); err != nil {
			continue
		}
		if term.ID == "" {
			term.ID = key
		}
		terms[term.ID] = term
		s.loaded[key] = entry.Value()
	}
	return terms, nil
}

// Term returns a single cached term.
func (s *KVStore) Term(ctx context.Context, id string) (thesaurus.CachedTerm, error) {
	entry, err := s.kv.Get(ctx, kvKey(id))
	if err != nil {
		if isNotFound(err) {
			return thesaurus.CachedTerm{}, ErrNotFound
		}
		return thesaurus.CachedTerm{}, fmt.Errorf("get term: %w", err)
	}
	var term thesaurus.CachedTerm
	if err := json.Unmarshal(entry.Value(), &term); err != nil {
		return thesaurus.CachedTerm{}, fmt.Errorf("unmarshal term: %w", err)
	}
	return term, nil
}

// Save writes terms that are new or changed since Load.
func (s *KVStore) Save(ctx context.Context, terms map[string]thesaurus.CachedTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, term := range terms {
		if term.ID == "" {
			term.ID = id
		}
		data, err := json.Marshal(term)
		if err != nil {
			return fmt.Errorf("marshal term %s: %w", id, err)
		}
		key := kvKey(term.ID)
		if prev, ok := s.loaded[key]; ok && bytes.Equal(prev, data) {
			continue
		}
		if _, err := s.kv.Put(ctx, key, data); err != nil {
			return fmt.Errorf("store term %s: %w", id, err)
		}
		s.loaded[key] = data
	}
	return nil
}

// kvKey maps a term id to a valid KV key. Ids outside the key alphabet are
// hex encoded behind an "x-" prefix.
func kvKey(id string) string {
	for _, r := range id {
		valid := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			r == '-' || r == '_' || r == '='
		if !valid {
			return "x-" + hex.EncodeToString([]byte(id))
		}
	}
	if id == "" || id[0] == 'x' && len(id) > 1 && id[1] == '-' {
		return "x-" + hex.EncodeToString([]byte(id))
	}
	return id
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
