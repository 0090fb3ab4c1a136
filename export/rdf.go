// Package export serializes entity graphs as RDF.
//
// The exporter accepts anything that has an identity and triples, such as
// mapped entities or assembled graph nodes. Output is deterministic:
// subjects, predicates and objects are sorted and duplicate statements are
// written once.
package export

import (
	"fmt"
	"slices"
	"strings"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/vocabulary/art"
	"github.com/c360studio/semstreams/message"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTriG produces TriG (.trig) output with all statements in one
	// named graph.
	FormatTriG Format = "trig"

	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// DefaultGraph names the graph TriG and JSON-LD output is written into.
const DefaultGraph = "https://data.create.humanities.uva.nl/id/rkdimages/"

// Subject is an exportable resource.
type Subject interface {
	EntityID() string
	Triples() []message.Triple
}

// Property is one predicate of a resource with its objects.
type Property struct {
	Predicate string
	Objects   []any
}

// Resource is the sorted description of one subject. Class assertions are
// split off into Types.
type Resource struct {
	IRI        string
	Types      []string
	Properties []Property
}

// RDFExporter collects subjects and serializes them.
type RDFExporter struct {
	graph    string
	subjects []Subject
}

// NewRDFExporter creates an exporter writing named-graph formats into graph.
// An empty graph uses DefaultGraph.
func NewRDFExporter(graph string) *RDFExporter {
	if graph == "" {
		graph = DefaultGraph
	}
	return &RDFExporter{graph: graph}
}

// AddEntity adds subjects to be exported.
func (e *RDFExporter) AddEntity(subjects ...Subject) {
	e.subjects = append(e.subjects, subjects...)
}

// Len returns the number of subjects added.
func (e *RDFExporter) Len() int {
	return len(e.subjects)
}

// Export serializes all subjects to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	resources := e.Resources()
	switch format {
	case FormatTriG:
		return toTriG(e.graph, resources), nil
	case FormatTurtle:
		return toTurtle(resources), nil
	case FormatNTriples:
		return toNTriples(resources), nil
	case FormatJSONLD:
		return toJSONLD(e.graph, resources)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// Resources groups the statements of all subjects by subject and sorts them.
func (e *RDFExporter) Resources() []Resource {
	type draft struct {
		types map[string]bool
		props map[string][]any
		seen  map[string]bool
	}
	drafts := make(map[string]*draft)

	for _, s := range e.subjects {
		for _, t := range s.Triples() {
			subject := t.Subject
			if subject == "" {
				subject = s.EntityID()
			}
			if subject == "" || t.Object == nil {
				continue
			}
			d, ok := drafts[subject]
			if !ok {
				d = &draft{types: make(map[string]bool), props: make(map[string][]any), seen: make(map[string]bool)}
				drafts[subject] = d
			}
			if ref, isRef := t.Object.(entity.Ref); isRef && t.Predicate == art.EntityClass {
				d.types[string(ref)] = true
				continue
			}
			predicate := art.GetPredicateIRI(t.Predicate)
			key := predicate + " " + ntriplesTerm(t.Object)
			if d.seen[key] {
				continue
			}
			d.seen[key] = true
			d.props[predicate] = append(d.props[predicate], t.Object)
		}
	}

	out := make([]Resource, 0, len(drafts))
	for subject, d := range drafts {
		r := Resource{IRI: subject}
		for t := range d.types {
			r.Types = append(r.Types, t)
		}
		slices.Sort(r.Types)
		for p, objects := range d.props {
			slices.SortFunc(objects, func(a, b any) int {
				return strings.Compare(ntriplesTerm(a), ntriplesTerm(b))
			})
			r.Properties = append(r.Properties, Property{Predicate: p, Objects: objects})
		}
		slices.SortFunc(r.Properties, func(a, b Property) int {
			return strings.Compare(a.Predicate, b.Predicate)
		})
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Resource) int {
		return strings.Compare(a.IRI, b.IRI)
	})
	return out
}

func toTurtle(resources []Resource) string {
	w := NewTurtleWriter()
	w.WritePrefixes()
	for _, r := range resources {
		w.WriteResource("", r)
		w.WriteBlank()
	}
	return w.String()
}

func toTriG(graph string, resources []Resource) string {
	w := NewTurtleWriter()
	w.WritePrefixes()
	w.OpenGraph(graph)
	for i, r := range resources {
		if i > 0 {
			w.WriteBlank()
		}
		w.WriteResource("    ", r)
	}
	w.CloseGraph()
	return w.String()
}

func toNTriples(resources []Resource) string {
	w := NewNTriplesWriter()
	for _, r := range resources {
		for _, t := range r.Types {
			w.WriteTypeTriple(r.IRI, t)
		}
		for _, p := range r.Properties {
			for _, o := range p.Objects {
				w.WriteTriple(r.IRI, p.Predicate, o)
			}
		}
	}
	return w.String()
}

func toJSONLD(graph string, resources []Resource) (string, error) {
	w := NewJSONLDWriter(graph)
	w.SetContext(art.Prefixes)
	for _, r := range resources {
		types := make([]string, 0, len(r.Types))
		for _, t := range r.Types {
			types = append(types, compactIRI(t))
		}
		props := make(map[string]any, len(r.Properties))
		for _, p := range r.Properties {
			values := make([]any, 0, len(p.Objects))
			for _, o := range p.Objects {
				values = append(values, jsonldValue(o))
			}
			if len(values) == 1 {
				props[compactIRI(p.Predicate)] = values[0]
			} else {
				props[compactIRI(p.Predicate)] = values
			}
		}
		w.AddNode(r.IRI, types, props)
	}
	return w.Render()
}

// compactIRI returns the prefixed form of iri when one applies.
func compactIRI(iri string) string {
	if c, ok := art.CompactIRI(iri); ok {
		return c
	}
	return iri
}

// turtleIRI formats an IRI for Turtle: prefixed when possible.
func turtleIRI(iri string) string {
	if c, ok := art.CompactIRI(iri); ok {
		return c
	}
	return "<" + iri + ">"
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
