package entity

import (
	"time"

	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// Work is a catalogued art work.
type Work struct {
	ID                         string
	Names                      []LangString
	AlternateNames             []string
	Descriptions               []string
	DisambiguatingDescriptions []string
	DateLabels                 []string
	Images                     []string
	DateModified               time.Time
	Temporal                   Temporal

	Width  *QuantitativeValue
	Height *QuantitativeValue
	Depth  *QuantitativeValue

	About    []*Person
	Artists  []*Person
	Keywords []*Concept
	Artforms []*Concept
	Media    []*Concept
	Surfaces []*Concept
	Roles    []*Role

	Dataset string
}

func (w *Work) EntityID() string { return w.ID }
func (w *Work) Kind() Kind       { return KindWork }

func (w *Work) Triples() []message.Triple {
	s := newTripleSet(w.ID, KindWork, "")
	s.langStrings(art.EntityName, w.Names)
	s.strings(art.WorkAlternateName, w.AlternateNames)
	s.strings(art.EntityDescription, w.Descriptions)
	s.strings(art.WorkDisambiguation, w.DisambiguatingDescriptions)
	s.strings(art.WorkTemporal, w.DateLabels)
	s.refs(art.WorkImage, w.Images)
	if !w.DateModified.IsZero() {
		s.add(art.WorkDateModified, w.DateModified)
	}
	s.temporal(w.Temporal)

	if w.Width != nil {
		s.ref(art.WorkWidth, w.Width.ID)
	}
	if w.Height != nil {
		s.ref(art.WorkHeight, w.Height.ID)
	}
	if w.Depth != nil {
		s.ref(art.WorkDepth, w.Depth.ID)
	}

	for _, p := range w.About {
		s.ref(art.WorkAbout, p.ID)
	}
	for _, p := range w.Artists {
		s.ref(art.WorkArtist, p.ID)
	}
	conceptRefs(s, art.WorkKeyword, w.Keywords)
	conceptRefs(s, art.WorkArtform, w.Artforms)
	conceptRefs(s, art.WorkMedium, w.Media)
	conceptRefs(s, art.WorkSurface, w.Surfaces)
	for _, r := range w.Roles {
		s.ref(art.WorkRelated, r.ID)
	}
	s.ref(art.WorkDataset, w.Dataset)
	return s.triples
}

func conceptRefs(s *tripleSet, predicate string, concepts []*Concept) {
	for _, c := range concepts {
		s.ref(predicate, c.ID)
	}
}
