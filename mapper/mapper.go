// Package mapper turns catalogue records into entities.
//
// A Mapper maps one record at a time. Identities come from the identity
// package, so mapping the same record again, in this run or a later one,
// yields the same entities. Values that cannot be normalized are dropped and
// reported as diagnostics; they never fail the record.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/identity"
	"github.com/c360studio/artgraph/source"
	"github.com/c360studio/artgraph/thesaurus"
)

// ErrMissingID is returned for records without an identifier.
var ErrMissingID = errors.New("record has no identifier")

// Concept fields whose resolve mode is configurable.
const (
	FieldKeywords = "keywords"
	FieldArtform  = "artform"
	FieldMedium   = "medium"
	FieldSurface  = "surface"
)

// DefaultImageURLTemplate builds thumbnail IRIs from image ids.
const DefaultImageURLTemplate = "https://images.rkd.nl/rkd/thumb/650x650/%s.jpg"

// DefaultDataset is the dataset every work is linked to.
const DefaultDataset = "https://data.create.humanities.uva.nl/id/rkdimages/"

// Resolver resolves thesaurus term ids. *thesaurus.Resolver implements it.
type Resolver interface {
	ResolveField(ctx context.Context, id string, mode thesaurus.Mode) thesaurus.Result
}

// Config configures a Mapper.
type Config struct {
	// FieldModes selects the resolve mode per concept field. Missing fields
	// use the defaults.
	FieldModes map[string]thesaurus.Mode
	// ImageURLTemplate is a fmt template taking the image id.
	ImageURLTemplate string
	// Dataset is linked from every work. Empty means DefaultDataset.
	Dataset string
}

// DefaultConfig returns the mapper defaults: keywords as references, the
// other concept fields fully resolved.
func DefaultConfig() Config {
	return Config{
		FieldModes: map[string]thesaurus.Mode{
			FieldKeywords: thesaurus.ModeReference,
			FieldArtform:  thesaurus.ModeFull,
			FieldMedium:   thesaurus.ModeFull,
			FieldSurface:  thesaurus.ModeFull,
		},
		ImageURLTemplate: DefaultImageURLTemplate,
		Dataset:          DefaultDataset,
	}
}

// Diagnostic reports a value that was dropped while mapping.
type Diagnostic struct {
	Record string
	Field  string
	Value  string
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("record %s: %s %q: %s", d.Record, d.Field, d.Value, d.Reason)
}

// Result is the outcome of mapping one record.
type Result struct {
	Work *entity.Work
	// Entities holds every entity of the record once, the work first.
	Entities    []entity.Entity
	Diagnostics []Diagnostic
}

// Mapper maps records to entities.
type Mapper struct {
	assigner *identity.Assigner
	resolver Resolver
	cfg      Config
	metrics  *Metrics
	logger   *slog.Logger
}

// New creates a Mapper. A nil metrics or logger gets a default.
func New(assigner *identity.Assigner, resolver Resolver, cfg Config, metrics *Metrics, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	def := DefaultConfig()
	modes := make(map[string]thesaurus.Mode, len(def.FieldModes))
	for field, mode := range def.FieldModes {
		modes[field] = mode
	}
	for field, mode := range cfg.FieldModes {
		modes[field] = mode
	}
	cfg.FieldModes = modes
	if cfg.ImageURLTemplate == "" {
		cfg.ImageURLTemplate = def.ImageURLTemplate
	}
	if cfg.Dataset == "" {
		cfg.Dataset = def.Dataset
	}
	return &Mapper{
		assigner: assigner,
		resolver: resolver,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// MapRecord maps rec to a work and everything it references.
func (m *Mapper) MapRecord(ctx context.Context, rec *source.Record) (*Result, error) {
	if rec == nil || rec.ID.IsEmpty() {
		return nil, ErrMissingID
	}

	p := &pass{
		Mapper:  m,
		ctx:     ctx,
		record:  rec.ID.String(),
		result:  &Result{},
		seen:    make(map[string]int),
		persons: make(map[string]*entity.Person),
		places:  make(map[string]*entity.Place),
	}
	work := p.mapWork(rec)
	p.result.Work = work

	m.metrics.Records.Inc()
	for _, e := range p.result.Entities {
		m.metrics.Entities.WithLabelValues(string(e.Kind())).Inc()
	}
	m.logger.Debug("Record mapped",
		slog.String("record", p.record),
		slog.String("work", work.ID),
		"entities", len(p.result.Entities),
		"diagnostics", len(p.result.Diagnostics))
	return p.result, nil
}

// pass holds the state of mapping one record. Persons and places are
// memoized by identity so every mention shares one entity.
type pass struct {
	*Mapper
	ctx    context.Context
	record string
	result *Result
	// seen maps identities to their position in result.Entities.
	seen map[string]int

	persons map[string]*entity.Person
	places  map[string]*entity.Place
}

// emit adds e to the result unless an entity with its identity was already
// added. An expanded concept takes the place of a bare reference to it.
func (p *pass) emit(e entity.Entity) {
	id := e.EntityID()
	if id == "" {
		return
	}
	i, ok := p.seen[id]
	if !ok {
		p.seen[id] = len(p.result.Entities)
		p.result.Entities = append(p.result.Entities, e)
		return
	}
	if isReference(p.result.Entities[i]) && !isReference(e) {
		p.result.Entities[i] = e
	}
}

func isReference(e entity.Entity) bool {
	c, ok := e.(*entity.Concept)
	return ok && c.Reference
}

func (p *pass) diagnose(field, value string, err error) {
	d := Diagnostic{Record: p.record, Field: field, Value: value, Reason: err.Error()}
	p.result.Diagnostics = append(p.result.Diagnostics, d)
	p.metrics.Diagnostics.WithLabelValues(field).Inc()
	p.logger.Warn("Value dropped",
		slog.String("record", d.Record),
		slog.String("field", d.Field),
		slog.String("value", d.Value),
		slog.String("reason", d.Reason))
}

func (p *pass) mapWork(rec *source.Record) *entity.Work {
	w := &entity.Work{
		ID:                         p.assigner.External(entity.KindWork, p.record),
		AlternateNames:             rec.AlternateTitles,
		Descriptions:               rec.SubjectNotes,
		DisambiguatingDescriptions: rec.TitleNotes,
		DateLabels:                 rec.DateLabels,
		Dataset:                    p.cfg.Dataset,
	}
	// The work goes first; its fields are filled in below.
	p.emit(w)

	for _, t := range rec.Titles {
		w.Names = append(w.Names, entity.Lang(t, "nl"))
	}
	for _, t := range rec.EnglishTitles {
		w.Names = append(w.Names, entity.Lang(t, "en"))
	}
	for _, img := range rec.Images {
		w.Images = append(w.Images, fmt.Sprintf(p.cfg.ImageURLTemplate, img))
	}
	if !rec.Modified.IsEmpty() {
		if t, err := parseTimestamp(rec.Modified.String()); err != nil {
			p.diagnose("modification", rec.Modified.String(), err)
		} else {
			w.DateModified = t
		}
	}
	w.Temporal = p.temporal("zoekmarge", rec.SearchBegin.String(), rec.SearchEnd.String())

	w.Width = p.quantity(w.ID, "width", "breedte", rec.Width)
	w.Height = p.quantity(w.ID, "height", "hoogte", rec.Height)
	w.Depth = p.quantity(w.ID, "depth", "diepte", rec.Depth)

	w.Artists = p.artists(w.ID, rec.Attributions)
	for _, s := range rec.Depicted {
		if person := p.sitter(w.ID, s); person != nil {
			w.About = append(w.About, person)
		}
	}

	w.Keywords = p.concepts(FieldKeywords, rec.Keywords)
	w.Artforms = p.concepts(FieldArtform, rec.ObjectCategories)
	w.Media = p.concepts(FieldMedium, rec.Materials)
	w.Surfaces = p.concepts(FieldSurface, rec.Supports)

	w.Roles = p.roles(w.ID, rec.PartOf)
	return w
}

// temporal normalizes a date pair and reports a diagnostic for bad input.
func (p *pass) temporal(field, begin, end string) entity.Temporal {
	t, err := NormalizeDates(begin, end)
	if err != nil {
		value := begin
		if end != begin {
			value = strings.TrimSpace(begin + " " + end)
		}
		p.diagnose(field, value, err)
	}
	return t
}

func (p *pass) quantity(workID, role, field string, raw source.FlexString) *entity.QuantitativeValue {
	if raw.IsEmpty() {
		return nil
	}
	metres, ok, err := ParseMeasurement(raw.String())
	if err != nil {
		p.diagnose(field, raw.String(), err)
		return nil
	}
	if !ok {
		return nil
	}
	q := &entity.QuantitativeValue{
		ID:       p.assigner.IdentityFor(entity.KindQuantitativeValue, "", identity.Key{Owner: workID, Role: role}),
		UnitCode: entity.UnitMetre,
		Value:    metres,
	}
	p.emit(q)
	return q
}

// concepts resolves term ids with the mode configured for field and emits
// every node of the resulting trees.
func (p *pass) concepts(field string, ids []string) []*entity.Concept {
	if len(ids) == 0 {
		return nil
	}
	mode := p.cfg.FieldModes[field]
	out := make([]*entity.Concept, 0, len(ids))
	for _, id := range ids {
		res := p.resolver.ResolveField(p.ctx, id, mode)
		if res.Status == thesaurus.StatusUnresolved {
			p.logger.Debug("Term unresolved, keeping reference",
				slog.String("record", p.record),
				slog.String("field", field),
				slog.String("term", id))
		}
		out = append(out, res.Concept)
	}
	for _, c := range entity.FlattenConcepts(out...) {
		p.emit(c)
	}
	return out
}
