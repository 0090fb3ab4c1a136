// Package identity assigns canonical identities to entities.
//
// Entities known to the catalogue get an IRI built from a per-kind namespace
// and their external identifier. Everything else gets a deterministic
// pseudo-identity: the SHA-256 of a canonical string built from the kind, the
// nearest externally identified owner, a role tag and the distinguishing
// field values. The same inputs always produce the same identity, across
// processes and runs.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/c360studio/artgraph/entity"
)

// unitSeparator separates the parts of the canonical string.
const unitSeparator = "\x1f"

// partEscaper escapes the separator inside parts; nameEscaper also escapes
// "=" inside field names. Parts without either character are unchanged.
var (
	partEscaper = strings.NewReplacer(`\`, `\\`, unitSeparator, `\u`)
	nameEscaper = strings.NewReplacer(`\`, `\\`, unitSeparator, `\u`, "=", `\=`)
)

// Namespaces holds the IRI prefixes used to build identities.
type Namespaces struct {
	Work      string `yaml:"work"`
	Person    string `yaml:"person"`
	Place     string `yaml:"place"`
	Concept   string `yaml:"concept"`
	Anonymous string `yaml:"anonymous"`
}

// DefaultNamespaces returns the namespaces of the source catalogue.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		Work:      "https://rkd.nl/explore/images/",
		Person:    "https://data.rkd.nl/artists/",
		Place:     "https://data.rkd.nl/thesaurus/place/",
		Concept:   "https://rkd.nl/nl/explore/thesaurus?term=",
		Anonymous: "https://data.create.humanities.uva.nl/id/rkdimages/",
	}
}

// Field is one distinguishing (name, value) pair.
type Field struct {
	Name  string
	Value string
}

// F is shorthand for a Field.
func F(name, value string) Field {
	return Field{Name: name, Value: value}
}

// Key distinguishes an entity that has no external identifier.
type Key struct {
	// Owner is the identity of the nearest externally identified entity.
	Owner string
	// Role names the position of the entity relative to its owner, such as
	// "birth" or "father".
	Role   string
	Fields []Field
}

// Assigner builds identities. It is safe for concurrent use.
type Assigner struct {
	ns Namespaces
}

// NewAssigner creates an Assigner. Empty namespaces fall back to the defaults.
func NewAssigner(ns Namespaces) *Assigner {
	def := DefaultNamespaces()
	if ns.Work == "" {
		ns.Work = def.Work
	}
	if ns.Person == "" {
		ns.Person = def.Person
	}
	if ns.Place == "" {
		ns.Place = def.Place
	}
	if ns.Concept == "" {
		ns.Concept = def.Concept
	}
	if ns.Anonymous == "" {
		ns.Anonymous = def.Anonymous
	}
	return &Assigner{ns: ns}
}

// Namespaces returns the namespaces in use.
func (a *Assigner) Namespaces() Namespaces {
	return a.ns
}

// IdentityFor returns the identity of an entity. A non-empty externalID
// produces an IRI in the namespace of kind; otherwise the identity is derived
// from key.
func (a *Assigner) IdentityFor(kind entity.Kind, externalID string, key Key) string {
	externalID = strings.TrimSpace(externalID)
	if externalID != "" {
		return a.namespace(kind) + externalID
	}
	return a.ns.Anonymous + string(kind) + "/" + Hash(kind, key)
}

// External returns the identity for an externally identified entity.
func (a *Assigner) External(kind entity.Kind, externalID string) string {
	return a.IdentityFor(kind, externalID, Key{})
}

// IsAnonymous reports whether id was derived from a key.
func (a *Assigner) IsAnonymous(id string) bool {
	return strings.HasPrefix(id, a.ns.Anonymous)
}

func (a *Assigner) namespace(kind entity.Kind) string {
	switch kind {
	case entity.KindWork:
		return a.ns.Work
	case entity.KindPerson:
		return a.ns.Person
	case entity.KindPlace:
		return a.ns.Place
	case entity.KindConcept:
		return a.ns.Concept
	default:
		return a.ns.Anonymous + string(kind) + "/"
	}
}

// Canonical returns the canonical string hashed for an anonymous entity:
// kind, owner, role and each name=value field, joined by the ASCII unit
// separator. Empty values are kept so field positions stay significant.
// Separators inside parts, and "=" inside field names, are escaped with a
// backslash, so distinct keys never share a canonical string.
func Canonical(kind entity.Kind, key Key) string {
	var b strings.Builder
	partEscaper.WriteString(&b, string(kind))
	b.WriteString(unitSeparator)
	partEscaper.WriteString(&b, key.Owner)
	b.WriteString(unitSeparator)
	partEscaper.WriteString(&b, key.Role)
	for _, f := range key.Fields {
		b.WriteString(unitSeparator)
		nameEscaper.WriteString(&b, f.Name)
		b.WriteString("=")
		partEscaper.WriteString(&b, f.Value)
	}
	return b.String()
}

// Hash returns the lowercase hex SHA-256 of the canonical string.
func Hash(kind entity.Kind, key Key) string {
	sum := sha256.Sum256([]byte(Canonical(kind, key)))
	return hex.EncodeToString(sum[:])
}
