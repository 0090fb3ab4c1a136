package thesaurus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	terms   map[string]CachedTerm
	loadErr error
	saved   map[string]CachedTerm
}

func (s *memoryStore) Load(context.Context) (map[string]CachedTerm, error) {
	return s.terms, s.loadErr
}

func (s *memoryStore) Save(_ context.Context, terms map[string]CachedTerm) error {
	s.saved = terms
	return nil
}

func TestCacheLifecycle(t *testing.T) {
	store := &memoryStore{terms: map[string]CachedTerm{
		"1": {Title: LocalizedText{"nl": "een"}},
	}}
	ctx := context.Background()

	cache, err := LoadCache(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	term, ok := cache.Get("1")
	require.True(t, ok)
	assert.Equal(t, "1", term.ID, "id is filled from the key")

	cache.Put(CachedTerm{ID: "2"})
	cache.Put(CachedTerm{ID: "2"})
	assert.Equal(t, 1, cache.Added())

	require.NoError(t, cache.Save(ctx, store))
	assert.Len(t, store.saved, 2)

	snap := cache.Snapshot()
	delete(snap, "1")
	assert.Equal(t, 2, cache.Len(), "snapshot is a copy")
}

func TestLoadCacheError(t *testing.T) {
	_, err := LoadCache(context.Background(), &memoryStore{loadErr: errors.New("boom")})
	assert.ErrorContains(t, err, "load term cache")
}

func TestCachedTermLegacyFormat(t *testing.T) {
	data := `{
		"url": "https://rkd.nl/nl/explore/thesaurus?term=1",
		"title": "portret",
		"description": null,
		"broader": ["2"],
		"narrower": [],
		"related": [],
		"targets": ["9"],
		"aat": "http://vocab.getty.edu/aat/300015637"
	}`

	var term CachedTerm
	require.NoError(t, json.Unmarshal([]byte(data), &term))
	assert.Equal(t, LocalizedText{"nl": "portret"}, term.Title)
	assert.Nil(t, term.Description)
	assert.Equal(t, []string{"2"}, term.Broader)
	assert.Equal(t, []string{"9"}, term.UsedFor)
	assert.Equal(t, "http://vocab.getty.edu/aat/300015637", term.SameAs)
}

func TestCachedTermCurrentFormatRoundTrip(t *testing.T) {
	term := CachedTerm{
		ID:          "1",
		URL:         "u",
		Title:       LocalizedText{"nl": "portret", "en": "portrait"},
		Description: LocalizedText{"en": "a likeness"},
		Broader:     []string{"2"},
		UsedFor:     []string{"3"},
		SameAs:      "aat",
	}
	data, err := json.Marshal(term)
	require.NoError(t, err)

	var decoded CachedTerm
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, term, decoded)
}

func TestCachedTermRejectsBadTitle(t *testing.T) {
	var term CachedTerm
	assert.Error(t, json.Unmarshal([]byte(`{"title": 5}`), &term))
}
