// Package entity defines the entities produced from catalogue records: works,
// persons, events, places, concepts, roles and quantitative values.
//
// Every entity has one canonical identity (an IRI) and describes itself as a
// list of semstreams triples using the predicates of vocabulary/art. Triples
// only ever have the entity itself as subject; links to other entities are
// Ref objects.
package entity

import (
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// Kind discriminates the entity variants.
type Kind = art.EntityType

// Entity kinds.
const (
	KindWork              = art.EntityTypeWork
	KindPerson            = art.EntityTypePerson
	KindEvent             = art.EntityTypeEvent
	KindPlace             = art.EntityTypePlace
	KindConcept           = art.EntityTypeConcept
	KindRole              = art.EntityTypeRole
	KindQuantitativeValue = art.EntityTypeQuantitativeValue
)

// Entity is implemented by every entity variant.
type Entity interface {
	EntityID() string
	Kind() Kind
	Triples() []message.Triple
}

// TripleSource is recorded on every triple produced by this package.
const TripleSource = "artgraph.mapper"

// Ref is an IRI pointing at another entity or an external resource.
type Ref string

// LangString is a literal with an optional language tag.
type LangString struct {
	Value string `json:"value"`
	Lang  string `json:"lang,omitempty"`
}

// Lang returns a tagged literal.
func Lang(value, lang string) LangString {
	return LangString{Value: value, Lang: lang}
}

// tripleSet accumulates the triples of one subject, skipping empty objects.
type tripleSet struct {
	subject string
	triples []message.Triple
}

func newTripleSet(subject string, kind Kind, eventType string) *tripleSet {
	s := &tripleSet{subject: subject}
	for _, class := range art.GetTypesForEntity(kind, eventType) {
		s.add(art.EntityClass, Ref(class))
	}
	return s
}

func (s *tripleSet) add(predicate string, object any) {
	switch v := object.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case Ref:
		if v == "" {
			return
		}
	case LangString:
		if v.Value == "" {
			return
		}
	case Date:
		if v.IsZero() {
			return
		}
	}
	s.triples = append(s.triples, message.Triple{
		Subject:    s.subject,
		Predicate:  predicate,
		Object:     object,
		Source:     TripleSource,
		Confidence: 1.0,
	})
}

func (s *tripleSet) ref(predicate, id string) {
	s.add(predicate, Ref(id))
}

func (s *tripleSet) refs(predicate string, ids []string) {
	for _, id := range ids {
		s.ref(predicate, id)
	}
}

func (s *tripleSet) strings(predicate string, values []string) {
	for _, v := range values {
		s.add(predicate, v)
	}
}

func (s *tripleSet) langStrings(predicate string, values []LangString) {
	for _, v := range values {
		s.add(predicate, v)
	}
}

func (s *tripleSet) temporal(t Temporal) {
	if t.Exact != nil {
		s.add(art.TimeStamp, *t.Exact)
		return
	}
	if t.Earliest != nil {
		s.add(art.TimeEarliestBegin, *t.Earliest)
	}
	if t.Latest != nil {
		s.add(art.TimeLatestEnd, *t.Latest)
	}
}
