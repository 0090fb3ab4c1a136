package entity

import (
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// EventType discriminates biographical events.
type EventType string

// Event types.
const (
	EventBirth    EventType = "birth"
	EventBaptism  EventType = "baptism"
	EventDeath    EventType = "death"
	EventBurial   EventType = "burial"
	EventMarriage EventType = "marriage"
)

// Event is a biographical event. Marriages have Partners, all other events
// have a Principal.
type Event struct {
	ID        string
	Type      EventType
	Principal string
	Partners  []string
	Place     *Place
	Temporal  Temporal
	Labels    []LangString
}

func (e *Event) EntityID() string { return e.ID }
func (e *Event) Kind() Kind       { return KindEvent }

func (e *Event) Triples() []message.Triple {
	s := newTripleSet(e.ID, KindEvent, string(e.Type))
	s.langStrings(art.EntityLabel, e.Labels)
	s.ref(art.EventPrincipal, e.Principal)
	s.refs(art.EventPartner, e.Partners)
	if e.Place != nil {
		s.ref(art.EventPlace, e.Place.ID)
	}
	s.temporal(e.Temporal)
	return s.triples
}
