// Package thesaurus resolves controlled-vocabulary term ids into concept
// nodes.
//
// A Resolver expands a term into its broader, narrower and related terms up
// to a depth budget, using a run-scoped Cache in front of a TermFetcher.
// Terms that cannot be found in any locale are never cached, so later calls
// and later runs try again.
package thesaurus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/identity"
	"golang.org/x/sync/singleflight"
)

// Mode selects how much of a term is resolved.
type Mode int

const (
	// ModeReference yields a bare reference without fetching anything.
	ModeReference Mode = iota
	// ModeFull expands the term and its neighbors and records the external
	// mapping as SameAs.
	ModeFull
)

func (m Mode) String() string {
	if m == ModeFull {
		return "full"
	}
	return "reference"
}

// ParseMode parses "reference" or "full".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reference", "ref":
		return ModeReference, nil
	case "full":
		return ModeFull, nil
	default:
		return ModeReference, fmt.Errorf("unknown resolve mode %q", s)
	}
}

// Status reports the outcome of a resolution.
type Status int

const (
	// StatusResolved means the term was found and expanded.
	StatusResolved Status = iota
	// StatusReference means a bare reference was produced on purpose: by
	// mode or because the depth budget ran out.
	StatusReference
	// StatusUnresolved means the term could not be found in any locale.
	StatusUnresolved
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusReference:
		return "reference"
	default:
		return "unresolved"
	}
}

// Result of a resolution. Concept is never nil: unresolved terms come back
// as a bare reference so callers can still link to them.
type Result struct {
	Status  Status
	Concept *entity.Concept
}

// Config configures a Resolver.
type Config struct {
	// Locales are fetched in order. The first is the canonical locale whose
	// structure (broader, narrower, related) is used.
	Locales []string
	// MaxDepth is the default depth budget for ResolveField.
	MaxDepth int
}

// DefaultConfig returns the resolver defaults.
func DefaultConfig() Config {
	return Config{
		Locales:  []string{"nl", "en"},
		MaxDepth: 3,
	}
}

// Resolver resolves term ids to concepts.
type Resolver struct {
	cache    *Cache
	fetcher  TermFetcher
	assigner *identity.Assigner
	cfg      Config
	metrics  *Metrics
	logger   *slog.Logger
	group    singleflight.Group
}

// NewResolver creates a Resolver. A nil metrics or logger gets a default.
func NewResolver(cache *Cache, fetcher TermFetcher, assigner *identity.Assigner, cfg Config, metrics *Metrics, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = DefaultConfig().Locales
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	return &Resolver{
		cache:    cache,
		fetcher:  fetcher,
		assigner: assigner,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// MaxDepth returns the configured default depth budget.
func (r *Resolver) MaxDepth() int {
	return r.cfg.MaxDepth
}

// ResolveField resolves id with the configured depth budget.
func (r *Resolver) ResolveField(ctx context.Context, id string, mode Mode) Result {
	return r.Resolve(ctx, id, mode, r.cfg.MaxDepth)
}

// Resolve resolves id. With a budget of 1 or less, or in ModeReference, a
// bare reference is returned. Otherwise the term is expanded and each
// neighbor is resolved with budget-1, so an A -> B -> A cycle with budget 3
// yields A (expanded) -> B (expanded) -> A (reference).
func (r *Resolver) Resolve(ctx context.Context, id string, mode Mode, budget int) Result {
	return r.resolve(ctx, strings.TrimSpace(id), mode, budget, make(map[memoKey]*entity.Concept))
}

// memoKey identifies an expanded node within one tree. Only full mode
// expands, so the mode is not part of the key.
type memoKey struct {
	id     string
	budget int
}

func (r *Resolver) resolve(ctx context.Context, id string, mode Mode, budget int, memo map[memoKey]*entity.Concept) Result {
	conceptID := r.assigner.External(entity.KindConcept, id)
	if mode == ModeReference || budget <= 1 {
		return Result{Status: StatusReference, Concept: entity.ConceptRef(conceptID)}
	}

	key := memoKey{id: id, budget: budget}
	if c, ok := memo[key]; ok {
		return Result{Status: StatusResolved, Concept: c}
	}

	term, ok := r.lookup(ctx, id)
	if !ok {
		return Result{Status: StatusUnresolved, Concept: entity.ConceptRef(conceptID)}
	}

	c := &entity.Concept{ID: conceptID}
	memo[key] = c
	for _, locale := range r.cfg.Locales {
		if title := term.Title[locale]; title != "" {
			c.PrefLabels = append(c.PrefLabels, entity.Lang(title, locale))
		}
		if note := term.Description[locale]; note != "" {
			c.Notes = append(c.Notes, entity.Lang(note, locale))
		}
	}
	c.Broader = r.neighbors(ctx, term.Broader, mode, budget-1, memo)
	c.Narrower = r.neighbors(ctx, term.Narrower, mode, budget-1, memo)
	c.Related = r.neighbors(ctx, term.Related, mode, budget-1, memo)
	if mode == ModeFull && term.SameAs != "" {
		c.SameAs = []string{term.SameAs}
	}
	return Result{Status: StatusResolved, Concept: c}
}

func (r *Resolver) neighbors(ctx context.Context, ids []string, mode Mode, budget int, memo map[memoKey]*entity.Concept) []*entity.Concept {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*entity.Concept, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.resolve(ctx, id, mode, budget, memo).Concept)
	}
	return out
}

// lookup returns the term from the cache or fetches it. Concurrent lookups of
// the same id share one fetch.
func (r *Resolver) lookup(ctx context.Context, id string) (CachedTerm, bool) {
	if term, ok := r.cache.Get(id); ok {
		r.metrics.CacheHits.Inc()
		return term, true
	}

	v, _, _ := r.group.Do(id, func() (any, error) {
		if term, ok := r.cache.Get(id); ok {
			return term, nil
		}
		term, ok := r.fetch(ctx, id)
		if !ok {
			return nil, nil
		}
		r.cache.Put(term)
		return term, nil
	})
	term, ok := v.(CachedTerm)
	return term, ok
}

func (r *Resolver) fetch(ctx context.Context, id string) (CachedTerm, bool) {
	byLocale := make(map[string]*TermData, len(r.cfg.Locales))
	for _, locale := range r.cfg.Locales {
		r.logger.Debug("Fetching term", "id", id, "locale", locale)
		data, err := r.fetcher.FetchTerm(ctx, locale, id)
		switch {
		case errors.Is(err, ErrTermNotFound):
			r.metrics.Fetches.WithLabelValues(locale, outcomeNotFound).Inc()
			continue
		case err != nil:
			r.metrics.Fetches.WithLabelValues(locale, outcomeError).Inc()
			r.logger.Warn("Term fetch failed",
				slog.String("id", id),
				slog.String("locale", locale),
				"error", err)
			continue
		}
		r.metrics.Fetches.WithLabelValues(locale, outcomeFound).Inc()
		byLocale[locale] = data
	}

	if len(byLocale) == 0 {
		r.metrics.Unresolved.Inc()
		r.logger.Info("Term unresolved", "id", id)
		return CachedTerm{}, false
	}

	term := mergeTerm(id, r.cfg.Locales, byLocale)
	if term.URL == "" {
		term.URL = r.assigner.External(entity.KindConcept, id)
	}
	return term, true
}
