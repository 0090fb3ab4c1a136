package entity

import (
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// Place is either identified by the catalogue or known only by its label.
type Place struct {
	ID        string
	Label     string
	Anonymous bool
}

func (p *Place) EntityID() string { return p.ID }
func (p *Place) Kind() Kind       { return KindPlace }

func (p *Place) Triples() []message.Triple {
	s := newTripleSet(p.ID, KindPlace, "")
	s.add(art.EntityLabel, p.Label)
	return s.triples
}

// UnitMetre is the UN/CEFACT code for metres.
const UnitMetre = "MTR"

// QuantitativeValue is a normalized measurement.
type QuantitativeValue struct {
	ID       string
	UnitCode string
	Value    float64
}

func (q *QuantitativeValue) EntityID() string { return q.ID }
func (q *QuantitativeValue) Kind() Kind       { return KindQuantitativeValue }

func (q *QuantitativeValue) Triples() []message.Triple {
	s := newTripleSet(q.ID, KindQuantitativeValue, "")
	s.add(art.QuantityUnitCode, q.UnitCode)
	s.add(art.QuantityValue, q.Value)
	return s.triples
}

// Role qualifies the relation from one work to another. Object is only an
// identity; the related work may be mapped later or never.
type Role struct {
	ID             string
	Subject        string
	Object         string
	Label          string
	Classification *Concept
	Note           string
}

func (r *Role) EntityID() string { return r.ID }
func (r *Role) Kind() Kind       { return KindRole }

func (r *Role) Triples() []message.Triple {
	s := newTripleSet(r.ID, KindRole, "")
	s.add(art.RoleName, r.Label)
	if r.Classification != nil {
		s.ref(art.RoleClassification, r.Classification.ID)
	}
	s.add(art.EntityDescription, r.Note)
	s.ref(art.RoleObject, r.Object)
	return s.triples
}
