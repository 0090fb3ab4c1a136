package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/vocabulary/art"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTriG: {
		Name:        FormatTriG,
		MIMEType:    "application/trig",
		Extension:   ".trig",
		Description: "TriG - Turtle with named graphs",
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for name, info := range FormatRegistry {
		if s == string(name) || s == info.Extension || "."+s == info.Extension {
			return name, nil
		}
	}
	switch s {
	case "ttl":
		return FormatTurtle, nil
	case "nt", "n-triples":
		return FormatNTriples, nil
	case "json-ld", "json":
		return FormatJSONLD, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// TurtleWriter writes RDF in Turtle or TriG format.
type TurtleWriter struct {
	sb strings.Builder
}

// NewTurtleWriter creates a new Turtle writer.
func NewTurtleWriter() *TurtleWriter {
	return &TurtleWriter{}
}

// WritePrefixes writes the prefix declarations of the known namespaces.
func (w *TurtleWriter) WritePrefixes() {
	for _, p := range art.Prefixes {
		w.sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", p.Prefix, p.Namespace))
	}
	w.sb.WriteString("\n")
}

// OpenGraph starts a named graph block.
func (w *TurtleWriter) OpenGraph(iri string) {
	w.sb.WriteString(fmt.Sprintf("<%s> {\n", iri))
}

// CloseGraph ends a named graph block.
func (w *TurtleWriter) CloseGraph() {
	w.sb.WriteString("}\n")
}

// WriteResource writes one subject block, every line prefixed with indent.
func (w *TurtleWriter) WriteResource(indent string, r Resource) {
	w.sb.WriteString(indent + turtleIRI(r.IRI) + "\n")

	lines := make([]string, 0, len(r.Properties)+1)
	if len(r.Types) > 0 {
		types := make([]string, 0, len(r.Types))
		for _, t := range r.Types {
			types = append(types, turtleIRI(t))
		}
		lines = append(lines, "a "+strings.Join(types, ", "))
	}
	for _, p := range r.Properties {
		objects := make([]string, 0, len(p.Objects))
		for _, o := range p.Objects {
			objects = append(objects, turtleTerm(o))
		}
		lines = append(lines, turtleIRI(p.Predicate)+" "+strings.Join(objects, ", "))
	}
	for i, line := range lines {
		terminator := " ;"
		if i == len(lines)-1 {
			terminator = " ."
		}
		w.sb.WriteString(indent + "    " + line + terminator + "\n")
	}
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the accumulated output.
func (w *TurtleWriter) String() string {
	return w.sb.String()
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	sb strings.Builder
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a single triple.
func (w *NTriplesWriter) WriteTriple(subject, predicate string, object any) {
	w.sb.WriteString(fmt.Sprintf("<%s> <%s> %s .\n", subject, predicate, ntriplesTerm(object)))
}

// WriteTypeTriple writes a type assertion triple.
func (w *NTriplesWriter) WriteTypeTriple(subject, typeIRI string) {
	w.sb.WriteString(fmt.Sprintf("<%s> <%s> <%s> .\n", subject, art.RdfNamespace+"type", typeIRI))
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.sb.String()
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	ID      string         `json:"@id,omitempty"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	for k, v := range n.Properties {
		m[k] = v
	}
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	doc JSONLDDocument
}

// NewJSONLDWriter creates a new JSON-LD writer. A non-empty graph names the
// graph the nodes belong to.
func NewJSONLDWriter(graph string) *JSONLDWriter {
	return &JSONLDWriter{
		doc: JSONLDDocument{
			Context: make(map[string]any),
			ID:      graph,
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// SetContext adds the prefixes to the @context.
func (w *JSONLDWriter) SetContext(prefixes []struct {
	Prefix    string
	Namespace string
}) {
	for _, p := range prefixes {
		w.doc.Context[p.Prefix] = p.Namespace
	}
}

// AddNode adds a node to the graph.
func (w *JSONLDWriter) AddNode(id string, types []string, properties map[string]any) {
	w.doc.Graph = append(w.doc.Graph, JSONLDNode{
		ID:         id,
		Type:       types,
		Properties: properties,
	})
}

// Render returns the JSON-LD output.
func (w *JSONLDWriter) Render() (string, error) {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data) + "\n", nil
}

// literal is the lexical form and datatype IRI of a typed value. An empty
// datatype means a plain string; lang is set for tagged strings.
type literal struct {
	lexical  string
	datatype string
	lang     string
}

// toLiteral returns the literal of v. The second return value is false for
// IRIs.
func toLiteral(v any) (literal, bool) {
	switch x := v.(type) {
	case entity.Ref:
		return literal{}, false
	case entity.LangString:
		return literal{lexical: x.Value, lang: x.Lang}, true
	case string:
		return literal{lexical: x}, true
	case entity.Date:
		return literal{lexical: x.String(), datatype: art.XSDDate}, true
	case time.Time:
		return literal{lexical: x.UTC().Format(time.RFC3339), datatype: art.XSDDateTime}, true
	case float64:
		return literal{lexical: strconv.FormatFloat(x, 'f', -1, 64), datatype: art.XSDFloat}, true
	case float32:
		return literal{lexical: strconv.FormatFloat(float64(x), 'f', -1, 32), datatype: art.XSDFloat}, true
	case int:
		return literal{lexical: strconv.Itoa(x), datatype: art.XSDInteger}, true
	case int64:
		return literal{lexical: strconv.FormatInt(x, 10), datatype: art.XSDInteger}, true
	case bool:
		return literal{lexical: strconv.FormatBool(x), datatype: art.XSDNamespace + "boolean"}, true
	default:
		return literal{lexical: fmt.Sprint(v)}, true
	}
}

// turtleTerm formats an object for Turtle, using prefixed names.
func turtleTerm(v any) string {
	lit, ok := toLiteral(v)
	if !ok {
		return turtleIRI(string(v.(entity.Ref)))
	}
	return formatLiteral(lit, turtleIRI)
}

// ntriplesTerm formats an object for N-Triples, using full IRIs.
func ntriplesTerm(v any) string {
	lit, ok := toLiteral(v)
	if !ok {
		return "<" + string(v.(entity.Ref)) + ">"
	}
	return formatLiteral(lit, func(iri string) string { return "<" + iri + ">" })
}

func formatLiteral(lit literal, iri func(string) string) string {
	s := `"` + escapeString(lit.lexical) + `"`
	switch {
	case lit.lang != "":
		return s + "@" + lit.lang
	case lit.datatype != "":
		return s + "^^" + iri(lit.datatype)
	default:
		return s
	}
}

// jsonldValue formats an object as a JSON-LD value.
func jsonldValue(v any) any {
	lit, ok := toLiteral(v)
	if !ok {
		return map[string]string{"@id": string(v.(entity.Ref))}
	}
	switch {
	case lit.lang != "":
		return map[string]string{"@value": lit.lexical, "@language": lit.lang}
	case lit.datatype != "":
		return map[string]string{"@value": lit.lexical, "@type": compactIRI(lit.datatype)}
	default:
		return lit.lexical
	}
}
