package art

import "github.com/c360studio/semstreams/vocabulary"

// EntityType represents the kind of an entity for mapping purposes.
type EntityType string

// Entity type constants.
const (
	EntityTypeWork              EntityType = "work"
	EntityTypePerson            EntityType = "person"
	EntityTypeEvent             EntityType = "event"
	EntityTypePlace             EntityType = "place"
	EntityTypeConcept           EntityType = "concept"
	EntityTypeRole              EntityType = "role"
	EntityTypeQuantitativeValue EntityType = "quantitative_value"
)

// ClassMap maps entity types to the RDF classes asserted for them.
var ClassMap = map[EntityType][]string{
	EntityTypeWork:              {ClassVisualArtwork},
	EntityTypePerson:            {ClassPerson},
	EntityTypeEvent:             {ClassSemEvent, ClassBioEvent},
	EntityTypePlace:             {ClassPlace},
	EntityTypeConcept:           {ClassConcept},
	EntityTypeRole:              {ClassRole},
	EntityTypeQuantitativeValue: {ClassQuantitativeValue},
}

// EventClassMap maps event types to their bio class.
var EventClassMap = map[string]string{
	"birth":    ClassBirth,
	"baptism":  ClassBaptism,
	"death":    ClassDeath,
	"burial":   ClassBurial,
	"marriage": ClassMarriage,
}

// SingleValued lists the predicates that hold at most one value per entity.
// A later assertion replaces the earlier one.
var SingleValued = map[string]bool{
	WorkDateModified:   true,
	WorkWidth:          true,
	WorkHeight:         true,
	WorkDepth:          true,
	WorkDataset:        true,
	TimeStamp:          true,
	TimeEarliestBegin:  true,
	TimeLatestEnd:      true,
	PersonGender:       true,
	PersonBirth:        true,
	PersonDeath:        true,
	EventPrincipal:     true,
	EventPlace:         true,
	RoleName:           true,
	RoleClassification: true,
	RoleObject:         true,
	QuantityUnitCode:   true,
	QuantityValue:      true,
}

// TemporalPredicates hold the timestamp or interval bounds of one entity.
var TemporalPredicates = []string{TimeStamp, TimeEarliestBegin, TimeLatestEnd}

// ReplaceGroups lists, per entity type, predicate groups that are asserted as
// a whole. An assertion that touches a group replaces every earlier value of
// the group, so a timestamp and disagreeing interval bounds never coexist.
// Event labels name the date, so they travel with it.
var ReplaceGroups = map[EntityType][][]string{
	EntityTypeWork:  {TemporalPredicates},
	EntityTypeEvent: {append([]string{EntityLabel}, TemporalPredicates...)},
}

// IsSingleValued reports whether predicate keeps only its last value.
func IsSingleValued(predicate string) bool {
	return SingleValued[predicate]
}

// GetTypesForEntity returns the class IRIs for an entity type. For events the
// specific bio class for eventType is appended when known.
func GetTypesForEntity(entityType EntityType, eventType string) []string {
	types := make([]string, 0, 3)
	types = append(types, ClassMap[entityType]...)
	if entityType == EntityTypeEvent {
		if class, ok := EventClassMap[eventType]; ok {
			types = append(types, class)
		}
	}
	return types
}

// GetPredicateIRI returns the standard IRI registered for a dotted predicate.
// Unregistered predicates fall back to the art namespace.
func GetPredicateIRI(predicate string) string {
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	return Namespace + predicate
}

// CompactIRI shortens iri with one of the known prefixes. The second return
// value is false when no prefix applies or the local part is not a valid
// prefixed name.
func CompactIRI(iri string) (string, bool) {
	for _, p := range Prefixes {
		if len(iri) <= len(p.Namespace) || iri[:len(p.Namespace)] != p.Namespace {
			continue
		}
		local := iri[len(p.Namespace):]
		if !isLocalName(local) {
			return "", false
		}
		return p.Prefix + ":" + local, true
	}
	return "", false
}

func isLocalName(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}
