package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeStream struct {
	msgs   []published
	failOn string
}

func (f *fakeStream) Publish(_ context.Context, subject string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.failOn != "" {
		var p EntityPayload
		if err := json.Unmarshal(data, &p); err == nil && p.EntityID_ == f.failOn {
			return nil, errors.New("stream unavailable")
		}
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return &jetstream.PubAck{Stream: "GRAPH", Sequence: uint64(len(f.msgs))}, nil
}

func TestPublisherPublishesPayload(t *testing.T) {
	stream := &fakeStream{}
	p := NewPublisher(stream, "run-1", nil)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	place := &entity.Place{ID: "https://data.rkd.nl/thesaurus/place/77", Label: "Haarlem"}
	require.NoError(t, p.Publish(context.Background(), place))

	require.Len(t, stream.msgs, 1)
	assert.Equal(t, GraphIngestSubject, stream.msgs[0].subject)

	var got EntityPayload
	require.NoError(t, json.Unmarshal(stream.msgs[0].data, &got))
	assert.Equal(t, place.ID, got.EntityID())
	assert.Equal(t, at, got.UpdatedAt)
	require.NotEmpty(t, got.Triples())
	for _, tr := range got.Triples() {
		assert.Equal(t, place.ID, tr.Subject)
		assert.Equal(t, "artgraph.mapper.run-1", tr.Source)
		assert.True(t, at.Equal(tr.Timestamp))
	}
	assert.Equal(t, EntityType, got.Schema())
}

func TestPublisherPublishNodesContinuesAfterFailure(t *testing.T) {
	a := NewAssembler()
	a.Add(&entity.Place{ID: "a", Label: "A"}, &entity.Place{ID: "b", Label: "B"}, &entity.Place{ID: "c", Label: "C"})

	stream := &fakeStream{failOn: "b"}
	p := NewPublisher(stream, "", nil)
	n, err := p.PublishNodes(context.Background(), a.Nodes())
	assert.Error(t, err)
	assert.ErrorContains(t, err, "publish entity b")
	assert.Equal(t, 2, n)
	assert.Len(t, stream.msgs, 2)
}

func TestEntityPayloadValidate(t *testing.T) {
	assert.Error(t, (&EntityPayload{}).Validate())
	assert.Error(t, (&EntityPayload{EntityID_: "x"}).Validate())

	payload := NewEntityPayload(&entity.Place{ID: "x", Label: "Delft"}, "src", time.Now())
	assert.NoError(t, payload.Validate())
	assert.Equal(t, art.EntityClass, payload.Triples()[0].Predicate)
}

func TestPublisherWithSubject(t *testing.T) {
	stream := &fakeStream{}
	p := NewPublisher(stream, "", nil).WithSubject("art.graph.ingest")
	require.NoError(t, p.Publish(context.Background(), &entity.Place{ID: "p1", Label: "Delft"}))
	require.Len(t, stream.msgs, 1)
	assert.Equal(t, "art.graph.ingest", stream.msgs[0].subject)

	p.WithSubject("")
	require.NoError(t, p.Publish(context.Background(), &entity.Place{ID: "p2", Label: "Leiden"}))
	assert.Equal(t, "art.graph.ingest", stream.msgs[1].subject)
}
