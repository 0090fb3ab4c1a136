// Package art provides the vocabulary for catalogue records of art works and
// the people, events and thesaurus terms around them.
//
// # Semstreams Integration
//
// Predicates follow the semstreams vocabulary patterns used across this module:
//   - Predicates use three-level dotted notation (art.category.property)
//   - Predicates are registered in init() using vocabulary.Register()
//   - IRI mappings use vocabulary.WithIRI() so RDF export can translate them
//
// # Ontology Alignment
//
// The published graph uses the vocabularies of the source catalogue export:
//
//	Entity Kind        → Class
//	work               → schema:VisualArtwork
//	person             → schema:Person
//	event              → sem:Event, bio:Event (+ bio:Birth, bio:Death, ...)
//	place              → schema:Place
//	concept            → skos:Concept
//	role               → schema:Role
//	quantitative_value → schema:QuantitativeValue
//
// # Cardinality
//
// Most predicates are multi-valued: asserting a second value adds to the set.
// Predicates listed in SingleValued keep only the last value written, which is
// what the graph assembler uses when the same entity is seen twice.
package art
