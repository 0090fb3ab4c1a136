package thesaurus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/identity"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves terms from memory and counts calls per locale and id.
type fakeFetcher struct {
	mu    sync.Mutex
	terms map[string]map[string]*TermData // locale -> id -> data
	errs  map[string]error                // locale -> error
	calls map[string]int                  // locale/id -> count
	total int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		terms: make(map[string]map[string]*TermData),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) add(locale, id string, data *TermData) {
	if f.terms[locale] == nil {
		f.terms[locale] = make(map[string]*TermData)
	}
	f.terms[locale][id] = data
}

func (f *fakeFetcher) FetchTerm(_ context.Context, locale, id string) (*TermData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[locale+"/"+id]++
	f.total++
	if err := f.errs[locale]; err != nil {
		return nil, err
	}
	if data, ok := f.terms[locale][id]; ok {
		return data, nil
	}
	return nil, ErrTermNotFound
}

func (f *fakeFetcher) callCount(locale, id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locale+"/"+id]
}

func newTestResolver(f TermFetcher) (*Resolver, *Cache, *Metrics) {
	cache := NewCache()
	metrics := NewMetrics(nil)
	r := NewResolver(cache, f, identity.NewAssigner(identity.Namespaces{}), DefaultConfig(), metrics, nil)
	return r, cache, metrics
}

const conceptNS = "https://rkd.nl/nl/explore/thesaurus?term="

func TestResolveCycleTerminates(t *testing.T) {
	f := newFakeFetcher()
	f.add("nl", "A", &TermData{Title: "a", Broader: []string{"B"}})
	f.add("nl", "B", &TermData{Title: "b", Narrower: []string{"A"}})
	r, _, _ := newTestResolver(f)

	res := r.Resolve(context.Background(), "A", ModeFull, 3)
	require.Equal(t, StatusResolved, res.Status)

	a := res.Concept
	assert.False(t, a.Reference)
	assert.Equal(t, conceptNS+"A", a.ID)
	assert.Equal(t, []entity.LangString{entity.Lang("a", "nl")}, a.PrefLabels)
	require.Len(t, a.Broader, 1)

	b := a.Broader[0]
	assert.False(t, b.Reference)
	assert.Equal(t, conceptNS+"B", b.ID)
	require.Len(t, b.Narrower, 1)

	back := b.Narrower[0]
	assert.True(t, back.Reference)
	assert.Equal(t, conceptNS+"A", back.ID)
	assert.NotSame(t, a, back)
}

func TestResolveBudgetOneIsReference(t *testing.T) {
	f := newFakeFetcher()
	f.add("nl", "A", &TermData{Title: "a"})
	r, _, _ := newTestResolver(f)

	for _, budget := range []int{1, 0, -1} {
		res := r.Resolve(context.Background(), "A", ModeFull, budget)
		assert.Equal(t, StatusReference, res.Status)
		assert.True(t, res.Concept.Reference)
	}
	assert.Zero(t, f.total)
}

func TestResolveReferenceModeDoesNotFetch(t *testing.T) {
	f := newFakeFetcher()
	r, _, _ := newTestResolver(f)

	res := r.ResolveField(context.Background(), " 42 ", ModeReference)
	assert.Equal(t, StatusReference, res.Status)
	assert.Equal(t, conceptNS+"42", res.Concept.ID)
	assert.Zero(t, f.total)
}

func TestResolveMergesLocales(t *testing.T) {
	f := newFakeFetcher()
	f.add("nl", "A", &TermData{
		URL:             conceptNS + "A",
		Title:           "portret",
		Description:     "beschrijving",
		Broader:         []string{"P"},
		ExternalMapping: "http://vocab.getty.edu/aat/300015637",
	})
	f.add("en", "A", &TermData{Title: "portrait", Broader: []string{"ignored"}})
	f.add("nl", "P", &TermData{Title: "genre"})
	r, cache, _ := newTestResolver(f)

	res := r.Resolve(context.Background(), "A", ModeFull, 3)
	require.Equal(t, StatusResolved, res.Status)
	c := res.Concept
	assert.Equal(t, []entity.LangString{entity.Lang("portret", "nl"), entity.Lang("portrait", "en")}, c.PrefLabels)
	assert.Equal(t, []entity.LangString{entity.Lang("beschrijving", "nl")}, c.Notes)
	assert.Equal(t, []string{"http://vocab.getty.edu/aat/300015637"}, c.SameAs)
	require.Len(t, c.Broader, 1)
	assert.Equal(t, conceptNS+"P", c.Broader[0].ID)

	term, ok := cache.Get("A")
	require.True(t, ok)
	assert.Equal(t, LocalizedText{"nl": "portret", "en": "portrait"}, term.Title)
	assert.Equal(t, []string{"P"}, term.Broader)
}

func TestResolveFallsBackToOtherLocaleStructure(t *testing.T) {
	f := newFakeFetcher()
	f.add("en", "A", &TermData{Title: "portrait", Related: []string{"R"}})
	r, cache, _ := newTestResolver(f)

	res := r.Resolve(context.Background(), "A", ModeFull, 2)
	require.Equal(t, StatusResolved, res.Status)
	require.Len(t, res.Concept.Related, 1)
	assert.True(t, res.Concept.Related[0].Reference)

	term, _ := cache.Get("A")
	assert.Equal(t, conceptNS+"A", term.URL)
}

func TestResolveFullModeCopiesExternalMapping(t *testing.T) {
	f := newFakeFetcher()
	f.add("nl", "A", &TermData{Title: "a", ExternalMapping: "http://vocab.getty.edu/aat/1"})
	f.add("nl", "B", &TermData{Title: "b", Related: []string{"A"}})
	r, _, _ := newTestResolver(f)

	res := r.Resolve(context.Background(), "B", ModeFull, 3)
	require.Len(t, res.Concept.Related, 1)
	assert.Equal(t, []string{"http://vocab.getty.edu/aat/1"}, res.Concept.Related[0].SameAs)
}

func TestUnresolvedIsNotCached(t *testing.T) {
	f := newFakeFetcher()
	r, cache, metrics := newTestResolver(f)
	ctx := context.Background()

	res := r.Resolve(ctx, "missing", ModeFull, 3)
	assert.Equal(t, StatusUnresolved, res.Status)
	require.NotNil(t, res.Concept)
	assert.True(t, res.Concept.Reference)
	assert.Zero(t, cache.Len())

	r.Resolve(ctx, "missing", ModeFull, 3)
	assert.Equal(t, 2, f.callCount("nl", "missing"), "unresolved terms are fetched again")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Unresolved))

	// The term shows up later and is resolved without a negative cache in the way.
	f.add("nl", "missing", &TermData{Title: "found"})
	res = r.Resolve(ctx, "missing", ModeFull, 3)
	assert.Equal(t, StatusResolved, res.Status)
}

func TestUnresolvedNeighborBecomesReference(t *testing.T) {
	f := newFakeFetcher()
	f.add("nl", "A", &TermData{Title: "a", Broader: []string{"gone", "B"}})
	f.add("nl", "B", &TermData{Title: "b"})
	r, _, _ := newTestResolver(f)

	res := r.Resolve(context.Background(), "A", ModeFull, 3)
	require.Len(t, res.Concept.Broader, 2)
	assert.True(t, res.Concept.Broader[0].Reference)
	assert.Equal(t, conceptNS+"gone", res.Concept.Broader[0].ID)
	assert.False(t, res.Concept.Broader[1].Reference)
}

func TestFetchErrorIsNonFatal(t *testing.T) {
	f := newFakeFetcher()
	f.errs["en"] = errors.New("connection reset")
	f.add("nl", "A", &TermData{Title: "a"})
	r, _, metrics := newTestResolver(f)

	res := r.Resolve(context.Background(), "A", ModeFull, 3)
	assert.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, []entity.LangString{entity.Lang("a", "nl")}, res.Concept.PrefLabels)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Fetches.WithLabelValues("en", outcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Fetches.WithLabelValues("nl", outcomeFound)))
}

func TestCachedTermsAreNotRefetched(t *testing.T) {
	f := newFakeFetcher()
	r, cache, metrics := newTestResolver(f)
	cache.Put(CachedTerm{ID: "A", Title: LocalizedText{"nl": "a"}})

	res := r.Resolve(context.Background(), "A", ModeFull, 3)
	assert.Equal(t, StatusResolved, res.Status)
	assert.Zero(t, f.total)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHits))
}

func TestMemoReusesNodesWithinOneTree(t *testing.T) {
	f := newFakeFetcher()
	f.add("nl", "A", &TermData{Title: "a", Broader: []string{"C"}, Related: []string{"C"}})
	f.add("nl", "C", &TermData{Title: "c"})
	r, _, _ := newTestResolver(f)

	res := r.Resolve(context.Background(), "A", ModeFull, 3)
	require.Len(t, res.Concept.Broader, 1)
	require.Len(t, res.Concept.Related, 1)
	assert.Same(t, res.Concept.Broader[0], res.Concept.Related[0])

	again := r.Resolve(context.Background(), "A", ModeFull, 3)
	assert.NotSame(t, res.Concept, again.Concept, "memo is scoped to one call")
}

func TestConcurrentResolveFetchesOnce(t *testing.T) {
	f := newFakeFetcher()
	f.add("nl", "A", &TermData{Title: "a"})
	r, _, _ := newTestResolver(f)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := r.Resolve(context.Background(), "A", ModeFull, 2)
			assert.Equal(t, StatusResolved, res.Status)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.callCount("nl", "A"))
	assert.Equal(t, 1, f.callCount("en", "A"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	m, err = ParseMode("reference")
	require.NoError(t, err)
	assert.Equal(t, ModeReference, m)

	_, err = ParseMode("deep")
	assert.Error(t, err)
}
