package entity

import (
	"slices"

	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// Person is a depicted person, an artist or a relative of either.
type Person struct {
	ID     string
	Names  []string
	Gender string

	Birth  *Event
	Death  *Event
	Events []*Event

	Spouses  []string
	Parents  []string
	Children []string

	// Anonymous is set when the identity was derived from the record rather
	// than taken from the catalogue.
	Anonymous bool
}

func (p *Person) EntityID() string { return p.ID }
func (p *Person) Kind() Kind       { return KindPerson }

// DisplayName returns the first known name, or "?".
func (p *Person) DisplayName() string {
	for _, n := range p.Names {
		if n != "" {
			return n
		}
	}
	return "?"
}

// AddSpouse records other as a spouse of p. Duplicates are ignored.
func (p *Person) AddSpouse(id string) {
	p.Spouses = appendUnique(p.Spouses, id)
}

// LinkParent records parent as a parent of child and child as a child of
// parent.
func LinkParent(parent, child *Person) {
	child.Parents = appendUnique(child.Parents, parent.ID)
	parent.Children = appendUnique(parent.Children, child.ID)
}

func (p *Person) Triples() []message.Triple {
	s := newTripleSet(p.ID, KindPerson, "")
	s.strings(art.EntityName, p.Names)
	s.add(art.PersonGender, p.Gender)
	if p.Birth != nil {
		s.ref(art.PersonBirth, p.Birth.ID)
	}
	if p.Death != nil {
		s.ref(art.PersonDeath, p.Death.ID)
	}
	for _, e := range p.Events {
		s.ref(art.PersonEvent, e.ID)
	}
	s.refs(art.PersonSpouse, p.Spouses)
	s.refs(art.PersonParent, p.Parents)
	s.refs(art.PersonChild, p.Children)
	return s.triples
}

func appendUnique(ids []string, id string) []string {
	if id == "" || slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
