package entity

import (
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// Concept is a thesaurus term. Broader, Narrower and Related may form cycles;
// the resolver bounds the depth of the tree it builds.
type Concept struct {
	ID         string
	PrefLabels []LangString
	Notes      []LangString
	Broader    []*Concept
	Narrower   []*Concept
	Related    []*Concept
	SameAs     []string

	// Reference marks a bare reference that carries only the identity.
	Reference bool
}

// ConceptRef returns a bare reference to the concept with the given id.
func ConceptRef(id string) *Concept {
	return &Concept{ID: id, Reference: true}
}

func (c *Concept) EntityID() string { return c.ID }
func (c *Concept) Kind() Kind       { return KindConcept }

func (c *Concept) Triples() []message.Triple {
	s := newTripleSet(c.ID, KindConcept, "")
	if c.Reference {
		return s.triples
	}
	s.langStrings(art.ConceptPrefLabel, c.PrefLabels)
	s.langStrings(art.ConceptNote, c.Notes)
	conceptRefs(s, art.ConceptBroader, c.Broader)
	conceptRefs(s, art.ConceptNarrower, c.Narrower)
	conceptRefs(s, art.ConceptRelated, c.Related)
	s.refs(art.EntitySameAs, c.SameAs)
	return s.triples
}

// FlattenConcepts walks the concept trees rooted at roots and returns every
// node once, in depth-first order.
func FlattenConcepts(roots ...*Concept) []*Concept {
	var out []*Concept
	seen := make(map[*Concept]bool)
	var walk func(c *Concept)
	walk = func(c *Concept) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
		for _, n := range c.Broader {
			walk(n)
		}
		for _, n := range c.Narrower {
			walk(n)
		}
		for _, n := range c.Related {
			walk(n)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}
