// Package storage persists the thesaurus term cache between runs.
//
// Three backends implement thesaurus.Store: a JSON file compatible with the
// cache files of earlier conversions, a NATS JetStream KV bucket and a Redis
// hash.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/c360studio/artgraph/thesaurus"
)

// FileStore keeps the term cache in a single JSON object keyed by term id.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing or empty file is an empty cache.
func (s *FileStore) Load(_ context.Context) (map[string]thesaurus.CachedTerm, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]thesaurus.CachedTerm{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return map[string]thesaurus.CachedTerm{}, nil
	}

	var terms map[string]thesaurus.CachedTerm
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("parse cache file %s: %w", s.path, err)
	}
	for id, term := range terms {
		if term.ID == "" {
			term.ID = id
			terms[id] = term
		}
	}
	return terms, nil
}

// Save replaces the cache file. The file is written next to the target and
// renamed so a failed save leaves the previous cache intact.
func (s *FileStore) Save(_ context.Context, terms map[string]thesaurus.CachedTerm) error {
	data, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
