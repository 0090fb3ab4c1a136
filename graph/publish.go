package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/artgraph/entity"
	"github.com/nats-io/nats.go/jetstream"
)

// GraphIngestSubject is the subject entity payloads are published to.
const GraphIngestSubject = "graph.ingest.entity"

// StreamPublisher publishes to a JetStream stream. jetstream.JetStream
// implements it.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes entities as EntityPayload messages.
type Publisher struct {
	js      StreamPublisher
	subject string
	source  string
	logger  *slog.Logger
	now     func() time.Time
}

// NewPublisher creates a Publisher. Triples are stamped with a source that
// names the run.
func NewPublisher(js StreamPublisher, runID string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	source := entity.TripleSource
	if runID != "" {
		source += "." + runID
	}
	return &Publisher{
		js:      js,
		subject: GraphIngestSubject,
		source:  source,
		logger:  logger,
		now:     time.Now,
	}
}

// WithSubject sets the subject payloads are published to. An empty subject
// keeps GraphIngestSubject.
func (p *Publisher) WithSubject(subject string) *Publisher {
	if subject != "" {
		p.subject = subject
	}
	return p
}

// Publish publishes one entity.
func (p *Publisher) Publish(ctx context.Context, e entity.Entity) error {
	payload := NewEntityPayload(e, p.source, p.now().UTC())
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("entity %s: %w", e.EntityID(), err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", e.EntityID(), err)
	}
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish entity %s: %w", e.EntityID(), err)
	}
	return nil
}

// PublishNodes publishes every node and returns how many were published.
// A failed node does not stop the others; all failures are returned joined.
func (p *Publisher) PublishNodes(ctx context.Context, nodes []*Node) (int, error) {
	var errs []error
	published := 0
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := p.Publish(ctx, n); err != nil {
			p.logger.Warn("Entity publish failed", slog.String("entity", n.ID), "error", err)
			errs = append(errs, err)
			continue
		}
		published++
	}
	p.logger.Info("Entities published",
		slog.String("subject", p.subject),
		"published", published,
		"failed", len(nodes)-published)
	return published, errors.Join(errs...)
}
