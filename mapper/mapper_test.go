package mapper

import (
	"context"
	"testing"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/graph"
	"github.com/c360studio/artgraph/identity"
	"github.com/c360studio/artgraph/source"
	"github.com/c360studio/artgraph/thesaurus"
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portraitRecord = `{
	"priref": "147735",
	"picturae_images": ["abc-123"],
	"modification": "2019-05-01T10:00:00",
	"benaming_kunstwerk": ["Portret van Jan"],
	"titel_engels": "Portrait of Jan",
	"opmerking_onderwerp": "Halffiguur",
	"datumlabel": "ca. 1650",
	"RKD_algemene_trefwoorden_linkref": ["1001"],
	"toeschrijving": [
		{"naam_linkref": "42", "naam_inverted": "Hals, Frans"},
		{"naam_linkref": "43", "naam_inverted": "Verspronck, Johannes", "status": "vervallen"}
	],
	"zoekmarge_begindatum": "1645",
	"zoekmarge_einddatum": "1655",
	"objectcategorie_linkref": ["2001"],
	"materiaal_lref": ["3001"],
	"breedte": "45,5 cm",
	"hoogte": 60,
	"onderdeel_van": [{
		"object_onderdeel_van": [{"priref": "99"}],
		"onderdeel_van_verband": "pendant",
		"onderdeel_van_verband_lref": "4001"
	}],
	"voorgestelde": [
		{
			"priref": "500",
			"naam_display": "Jan",
			"geslacht": "man",
			"geboortedatum_begin": "1600",
			"geboortedatum_eind": "1600",
			"sterfplaats_lref": "77",
			"sterfplaats": "Haarlem",
			"sterfdatum_begin": "1680-03",
			"sterfdatum_eind": "1680-03",
			"begraafdatum": "1680-03-12",
			"naam_vader": "Piet",
			"kinderen": [{"priref": "501", "naam": "Klaas"}],
			"huwelijk": [{"datum_huwelijk": "1650", "huwelijks_partner": "Anna", "huwelijk_plaats": "Delft"}]
		},
		{"priref": "600", "naam_display": "Niet Jan", "status": "superseded"}
	]
}`

type resolveCall struct {
	id   string
	mode thesaurus.Mode
}

// fakeResolver answers references for ModeReference and a one-level tree
// with a broader reference for ModeFull.
type fakeResolver struct {
	assigner *identity.Assigner
	calls    []resolveCall
}

func (f *fakeResolver) ResolveField(_ context.Context, id string, mode thesaurus.Mode) thesaurus.Result {
	f.calls = append(f.calls, resolveCall{id: id, mode: mode})
	conceptID := f.assigner.External(entity.KindConcept, id)
	if mode == thesaurus.ModeReference {
		return thesaurus.Result{Status: thesaurus.StatusReference, Concept: entity.ConceptRef(conceptID)}
	}
	return thesaurus.Result{
		Status: thesaurus.StatusResolved,
		Concept: &entity.Concept{
			ID:         conceptID,
			PrefLabels: []entity.LangString{entity.Lang("term "+id, "nl")},
			Broader:    []*entity.Concept{entity.ConceptRef(f.assigner.External(entity.KindConcept, "9"+id))},
		},
	}
}

func newTestMapper(t *testing.T) (*Mapper, *fakeResolver, *Metrics) {
	t.Helper()
	assigner := identity.NewAssigner(identity.Namespaces{})
	resolver := &fakeResolver{assigner: assigner}
	metrics := NewMetrics(nil)
	return New(assigner, resolver, Config{}, metrics, nil), resolver, metrics
}

func parseRecord(t *testing.T, raw string) *source.Record {
	t.Helper()
	rec, err := source.ParseRecord([]byte(raw))
	require.NoError(t, err)
	return rec
}

func entityByID(t *testing.T, res *Result, id string) entity.Entity {
	t.Helper()
	for _, e := range res.Entities {
		if e.EntityID() == id {
			return e
		}
	}
	t.Fatalf("entity %s not found", id)
	return nil
}

func TestMapRecordWork(t *testing.T) {
	m, resolver, metrics := newTestMapper(t)
	res, err := m.MapRecord(context.Background(), parseRecord(t, portraitRecord))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	w := res.Work
	require.NotNil(t, w)
	assert.Equal(t, "https://rkd.nl/explore/images/147735", w.ID)
	assert.Same(t, w, res.Entities[0])
	assert.Equal(t, []entity.LangString{
		entity.Lang("Portret van Jan", "nl"),
		entity.Lang("Portrait of Jan", "en"),
	}, w.Names)
	assert.Equal(t, []string{"Halffiguur"}, w.Descriptions)
	assert.Equal(t, []string{"ca. 1650"}, w.DateLabels)
	assert.Equal(t, []string{"https://images.rkd.nl/rkd/thumb/650x650/abc-123.jpg"}, w.Images)
	assert.Equal(t, 2019, w.DateModified.Year())
	assert.Equal(t, DefaultDataset, w.Dataset)

	require.NotNil(t, w.Temporal.Earliest)
	require.NotNil(t, w.Temporal.Latest)
	assert.Equal(t, "1645-01-01", w.Temporal.Earliest.String())
	assert.Equal(t, "1655-12-31", w.Temporal.Latest.String())

	require.NotNil(t, w.Width)
	assert.InDelta(t, 0.455, w.Width.Value, 1e-9)
	assert.Equal(t, entity.UnitMetre, w.Width.UnitCode)
	require.NotNil(t, w.Height)
	assert.InDelta(t, 0.6, w.Height.Value, 1e-9)
	assert.Nil(t, w.Depth)
	assert.NotEqual(t, w.Width.ID, w.Height.ID)

	require.Len(t, w.Artists, 1)
	assert.Equal(t, "https://data.rkd.nl/artists/42", w.Artists[0].ID)
	assert.Equal(t, []string{"Hals, Frans"}, w.Artists[0].Names)

	require.Len(t, w.Keywords, 1)
	assert.True(t, w.Keywords[0].Reference)
	require.Len(t, w.Artforms, 1)
	assert.False(t, w.Artforms[0].Reference)
	require.Len(t, w.Media, 1)
	assert.Empty(t, w.Surfaces)
	assert.Contains(t, resolver.calls, resolveCall{id: "1001", mode: thesaurus.ModeReference})
	assert.Contains(t, resolver.calls, resolveCall{id: "2001", mode: thesaurus.ModeFull})
	assert.Contains(t, resolver.calls, resolveCall{id: "3001", mode: thesaurus.ModeFull})

	// Broader concepts of resolved trees are emitted too.
	broader := entityByID(t, res, "https://rkd.nl/nl/explore/thesaurus?term=92001")
	assert.Equal(t, entity.KindConcept, broader.Kind())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Records))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Entities.WithLabelValues(string(entity.KindWork))))
}

func TestMapRecordRoles(t *testing.T) {
	m, resolver, _ := newTestMapper(t)
	res, err := m.MapRecord(context.Background(), parseRecord(t, portraitRecord))
	require.NoError(t, err)

	require.Len(t, res.Work.Roles, 1)
	role := res.Work.Roles[0]
	assert.Equal(t, res.Work.ID, role.Subject)
	assert.Equal(t, "https://rkd.nl/explore/images/99", role.Object)
	assert.Equal(t, "pendant", role.Label)
	require.NotNil(t, role.Classification)
	assert.True(t, role.Classification.Reference)
	assert.Contains(t, resolver.calls, resolveCall{id: "4001", mode: thesaurus.ModeReference})

	// The related work is only referenced, never emitted.
	for _, e := range res.Entities {
		assert.NotEqual(t, role.Object, e.EntityID())
	}
}

func TestMapRecordSitter(t *testing.T) {
	m, _, _ := newTestMapper(t)
	res, err := m.MapRecord(context.Background(), parseRecord(t, portraitRecord))
	require.NoError(t, err)

	require.Len(t, res.Work.About, 1, "superseded sitter is skipped")
	jan := res.Work.About[0]
	assert.Equal(t, "https://data.rkd.nl/artists/500", jan.ID)
	assert.Equal(t, "Male", jan.Gender)
	assert.False(t, jan.Anonymous)

	require.NotNil(t, jan.Birth)
	require.NotNil(t, jan.Birth.Temporal.Exact)
	assert.Equal(t, "1600-01-01", jan.Birth.Temporal.Exact.String())
	assert.Nil(t, jan.Birth.Place)
	assert.Equal(t, []entity.LangString{
		entity.Lang("Birth of Jan (1600)", "en"),
		entity.Lang("Geboorte van Jan (1600)", "nl"),
	}, jan.Birth.Labels)

	require.NotNil(t, jan.Death)
	assert.Equal(t, "1680-03-01", jan.Death.Temporal.Exact.String())
	require.NotNil(t, jan.Death.Place)
	assert.Equal(t, "https://data.rkd.nl/thesaurus/place/77", jan.Death.Place.ID)
	assert.Equal(t, "Haarlem", jan.Death.Place.Label)

	require.Len(t, jan.Events, 2)
	burial := jan.Events[0]
	assert.Equal(t, entity.EventBurial, burial.Type)
	assert.Nil(t, burial.Place)
	assert.Equal(t, "1680-03-12", burial.Temporal.Exact.String())

	marriage := jan.Events[1]
	assert.Equal(t, entity.EventMarriage, marriage.Type)
	require.Len(t, marriage.Partners, 2)
	assert.Equal(t, jan.ID, marriage.Partners[0])
	assert.Equal(t, []entity.LangString{
		entity.Lang("Marriage of Anna and Jan (1650)", "en"),
		entity.Lang("Huwelijk van Anna en Jan (1650)", "nl"),
	}, marriage.Labels)
	require.NotNil(t, marriage.Place)
	assert.True(t, marriage.Place.Anonymous)
	assert.Equal(t, "Delft", marriage.Place.Label)

	anna, ok := entityByID(t, res, marriage.Partners[1]).(*entity.Person)
	require.True(t, ok)
	assert.True(t, anna.Anonymous)
	assert.Equal(t, []string{"Anna"}, anna.Names)
	assert.Equal(t, []string{jan.ID}, anna.Spouses)
	assert.Equal(t, []string{anna.ID}, jan.Spouses)
	assert.Equal(t, []*entity.Event{marriage}, anna.Events)
}

func TestMapRecordFamilyIsSymmetric(t *testing.T) {
	m, _, _ := newTestMapper(t)
	res, err := m.MapRecord(context.Background(), parseRecord(t, portraitRecord))
	require.NoError(t, err)
	jan := res.Work.About[0]

	require.Len(t, jan.Parents, 1)
	father, ok := entityByID(t, res, jan.Parents[0]).(*entity.Person)
	require.True(t, ok)
	assert.Equal(t, []string{"Piet"}, father.Names)
	assert.Equal(t, []string{jan.ID}, father.Children)
	assert.Empty(t, father.Gender)

	require.Equal(t, []string{"https://data.rkd.nl/artists/501"}, jan.Children)
	child, ok := entityByID(t, res, jan.Children[0]).(*entity.Person)
	require.True(t, ok)
	assert.Equal(t, []string{jan.ID}, child.Parents)
}

func TestMapRecordIsIdempotent(t *testing.T) {
	rec := parseRecord(t, portraitRecord)

	first, _, _ := newTestMapper(t)
	a, err := first.MapRecord(context.Background(), rec)
	require.NoError(t, err)
	b, err := first.MapRecord(context.Background(), rec)
	require.NoError(t, err)
	second, _, _ := newTestMapper(t)
	c, err := second.MapRecord(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, allTriples(a), allTriples(b))
	assert.Equal(t, allTriples(a), allTriples(c))
}

func allTriples(res *Result) []message.Triple {
	var out []message.Triple
	for _, e := range res.Entities {
		out = append(out, e.Triples()...)
	}
	return out
}

func TestMapRecordEntitiesAreUnique(t *testing.T) {
	m, _, _ := newTestMapper(t)
	res, err := m.MapRecord(context.Background(), parseRecord(t, portraitRecord))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, e := range res.Entities {
		assert.False(t, seen[e.EntityID()], "duplicate entity %s", e.EntityID())
		seen[e.EntityID()] = true
	}
}

func TestMapRecordDiagnostics(t *testing.T) {
	m, _, metrics := newTestMapper(t)
	rec := parseRecord(t, `{
		"priref": "1",
		"breedte": "abc",
		"hoogte": "?",
		"diepte": "inf cm",
		"zoekmarge_begindatum": "onbekend",
		"zoekmarge_einddatum": "1700"
	}`)
	res, err := m.MapRecord(context.Background(), rec)
	require.NoError(t, err)

	assert.Nil(t, res.Work.Width)
	assert.Nil(t, res.Work.Height)
	assert.Nil(t, res.Work.Depth)
	assert.Nil(t, res.Work.Temporal.Earliest)
	require.NotNil(t, res.Work.Temporal.Latest)
	assert.Equal(t, "1700-12-31", res.Work.Temporal.Latest.String())

	require.Len(t, res.Diagnostics, 3)
	assert.Equal(t, "1", res.Diagnostics[0].Record)
	assert.Equal(t, "zoekmarge", res.Diagnostics[0].Field)
	assert.Equal(t, "breedte", res.Diagnostics[1].Field)
	assert.Equal(t, "abc", res.Diagnostics[1].Value)
	assert.Equal(t, "diepte", res.Diagnostics[2].Field)
	assert.Equal(t, "inf cm", res.Diagnostics[2].Value)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Diagnostics.WithLabelValues("breedte")))
}

func TestMapRecordMissingID(t *testing.T) {
	m, _, _ := newTestMapper(t)
	_, err := m.MapRecord(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestMarriageIdentityIsSharedByPartners(t *testing.T) {
	m, _, _ := newTestMapper(t)
	jan := parseRecord(t, `{"priref": "1", "voorgestelde": [{"priref": "500", "naam_display": "Jan",
		"huwelijk": [{"datum_huwelijk": "1650", "huwelijks_partner_lref": "501", "huwelijks_partner": "Anna"}]}]}`)
	anna := parseRecord(t, `{"priref": "2", "voorgestelde": [{"priref": "501", "naam_display": "Anna",
		"huwelijk": [{"datum_huwelijk": "1650", "huwelijks_partner_lref": "500", "huwelijks_partner": "Jan"}]}]}`)

	a, err := m.MapRecord(context.Background(), jan)
	require.NoError(t, err)
	b, err := m.MapRecord(context.Background(), anna)
	require.NoError(t, err)

	ma := a.Work.About[0].Events[0]
	mb := b.Work.About[0].Events[0]
	assert.Equal(t, ma.ID, mb.ID)
	assert.Equal(t, ma.Labels, mb.Labels)
}

func TestMapRecordDefaultsDataset(t *testing.T) {
	m, _, _ := newTestMapper(t)
	res, err := m.MapRecord(context.Background(), parseRecord(t, `{"priref": "1"}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultDataset, res.Work.Dataset)

	custom := New(identity.NewAssigner(identity.Namespaces{}), &fakeResolver{}, Config{Dataset: "https://example.org/ds/"}, nil, nil)
	res, err = custom.MapRecord(context.Background(), parseRecord(t, `{"priref": "1"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/ds/", res.Work.Dataset)
}

// termFetcher serves the same terms in every locale.
type termFetcher map[string]*thesaurus.TermData

func (f termFetcher) FetchTerm(_ context.Context, _, id string) (*thesaurus.TermData, error) {
	if data, ok := f[id]; ok {
		return data, nil
	}
	return nil, thesaurus.ErrTermNotFound
}

func TestMapRecordKeepsExpandedConcepts(t *testing.T) {
	tests := []struct {
		name    string
		broader []string
		record  string
	}{
		{
			name:    "reference reached first",
			broader: []string{"B", "C"},
			record:  `{"priref": "1", "objectcategorie_linkref": ["A"]}`,
		},
		{
			name:    "expanded node reached first",
			broader: []string{"C", "B"},
			record:  `{"priref": "1", "objectcategorie_linkref": ["A"]}`,
		},
		{
			name:    "keyword reference before artform",
			broader: []string{"B"},
			record:  `{"priref": "1", "RKD_algemene_trefwoorden_linkref": ["C"], "objectcategorie_linkref": ["C"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := termFetcher{
				"A": {Title: "term A", Broader: tt.broader},
				"B": {Title: "term B", Related: []string{"C"}},
				"C": {Title: "term C", Narrower: []string{"B"}},
			}
			assigner := identity.NewAssigner(identity.Namespaces{})
			resolver := thesaurus.NewResolver(thesaurus.NewCache(), terms, assigner, thesaurus.DefaultConfig(), nil, nil)
			m := New(assigner, resolver, Config{}, nil, nil)

			res, err := m.MapRecord(context.Background(), parseRecord(t, tt.record))
			require.NoError(t, err)

			cID := assigner.External(entity.KindConcept, "C")
			c, ok := entityByID(t, res, cID).(*entity.Concept)
			require.True(t, ok)
			assert.False(t, c.Reference)
			assert.Contains(t, c.PrefLabels, entity.Lang("term C", "nl"))

			seen := make(map[string]bool)
			for _, e := range res.Entities {
				assert.False(t, seen[e.EntityID()], "duplicate entity %s", e.EntityID())
				seen[e.EntityID()] = true
			}

			assembler := graph.NewAssembler()
			assembler.Add(res.Entities...)
			node, ok := assembler.Node(cID)
			require.True(t, ok)
			assert.Contains(t, node.Values(art.ConceptPrefLabel), entity.Lang("term C", "nl"))
		})
	}
}

func TestBirthWithDifferentPrecisionMergesToOneDate(t *testing.T) {
	exact := parseRecord(t, `{"priref": "1", "voorgestelde": [{"priref": "500", "naam_display": "Jan",
		"geboortedatum_begin": "1600", "geboortedatum_eind": "1600"}]}`)
	interval := parseRecord(t, `{"priref": "2", "voorgestelde": [{"priref": "500", "naam_display": "Jan",
		"geboortedatum_begin": "1600", "geboortedatum_eind": "1610"}]}`)

	m, _, _ := newTestMapper(t)
	a, err := m.MapRecord(context.Background(), exact)
	require.NoError(t, err)
	b, err := m.MapRecord(context.Background(), interval)
	require.NoError(t, err)

	birthID := a.Work.About[0].Birth.ID
	require.Equal(t, birthID, b.Work.About[0].Birth.ID)

	assembler := graph.NewAssembler()
	assembler.Add(a.Entities...)
	assembler.Add(b.Entities...)
	node, ok := assembler.Node(birthID)
	require.True(t, ok)
	assert.Empty(t, node.Values(art.TimeStamp))
	assert.Equal(t, []any{entity.Date{Year: 1600, Month: 1, Day: 1}}, node.Values(art.TimeEarliestBegin))
	assert.Equal(t, []any{entity.Date{Year: 1610, Month: 12, Day: 31}}, node.Values(art.TimeLatestEnd))
	assert.Equal(t, []any{
		entity.Lang("Birth of Jan (ca. 1600-1610)", "en"),
		entity.Lang("Geboorte van Jan (ca. 1600-1610)", "nl"),
	}, node.Values(art.EntityLabel))

	// Mapping the exact record again makes the timestamp win.
	assembler.Add(a.Entities...)
	node, _ = assembler.Node(birthID)
	assert.Equal(t, []any{entity.Date{Year: 1600, Month: 1, Day: 1}}, node.Values(art.TimeStamp))
	assert.Empty(t, node.Values(art.TimeEarliestBegin))
	assert.Empty(t, node.Values(art.TimeLatestEnd))
	assert.Len(t, node.Values(art.EntityLabel), 2)
}
