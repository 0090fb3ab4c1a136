package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "artgraph",
		Category:    "entity",
		Version:     "v1",
		Description: "Assembled artgraph entity with its triples",
		Factory:     func() any { return &EntityPayload{} },
	})
	if err != nil {
		panic("failed to register EntityPayload: " + err.Error())
	}
}

// EntityType is the message type for entity payloads.
var EntityType = message.Type{Domain: "artgraph", Category: "entity", Version: "v1"}

// EntityPayload carries one entity and its triples for graph ingestion.
type EntityPayload struct {
	EntityID_  string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewEntityPayload builds the payload of e. Every triple is stamped with
// source and at.
func NewEntityPayload(e entity.Entity, source string, at time.Time) *EntityPayload {
	triples := e.Triples()
	for i := range triples {
		triples[i].Source = source
		triples[i].Timestamp = at
	}
	return &EntityPayload{
		EntityID_:  e.EntityID(),
		TripleData: triples,
		UpdatedAt:  at,
	}
}

func (e *EntityPayload) EntityID() string          { return e.EntityID_ }
func (e *EntityPayload) Triples() []message.Triple { return e.TripleData }
func (e *EntityPayload) Schema() message.Type      { return EntityType }

func (e *EntityPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if len(e.TripleData) == 0 {
		return errors.New("entity has no triples")
	}
	return nil
}

func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type Alias EntityPayload
	return json.Marshal((*Alias)(e))
}

func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type Alias EntityPayload
	return json.Unmarshal(data, (*Alias)(e))
}
