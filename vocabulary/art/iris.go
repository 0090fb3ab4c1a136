package art

// Namespace is the base IRI for predicates without a standard mapping.
const Namespace = "https://artgraph.dev/ontology/"

// Standard vocabulary namespaces used in the exported graph.
const (
	SchemaNamespace = "http://schema.org/"
	SemNamespace    = "http://semanticweb.cs.vu.nl/2009/11/sem/"
	BioNamespace    = "http://purl.org/vocab/bio/0.1/"
	FoafNamespace   = "http://xmlns.com/foaf/0.1/"
	VoidNamespace   = "http://rdfs.org/ns/void#"
	SkosNamespace   = "http://www.w3.org/2004/02/skos/core#"
	OwlNamespace    = "http://www.w3.org/2002/07/owl#"
	RdfNamespace    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RdfsNamespace   = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace    = "http://www.w3.org/2001/XMLSchema#"
)

// Prefixes maps the conventional prefix of each namespace, in the order they
// are declared in Turtle and TriG output.
var Prefixes = []struct {
	Prefix    string
	Namespace string
}{
	{"schema", SchemaNamespace},
	{"sem", SemNamespace},
	{"bio", BioNamespace},
	{"foaf", FoafNamespace},
	{"void", VoidNamespace},
	{"skos", SkosNamespace},
	{"owl", OwlNamespace},
	{"rdf", RdfNamespace},
	{"rdfs", RdfsNamespace},
	{"xsd", XSDNamespace},
}

// Class IRIs.
const (
	// ClassVisualArtwork is the class of catalogued works.
	ClassVisualArtwork = SchemaNamespace + "VisualArtwork"

	// ClassPerson covers depicted persons, artists and their relatives.
	ClassPerson = SchemaNamespace + "Person"

	// ClassPlace is used for both identified and label-only places.
	ClassPlace = SchemaNamespace + "Place"

	// ClassQuantitativeValue holds normalized dimensions.
	ClassQuantitativeValue = SchemaNamespace + "QuantitativeValue"

	// ClassRole qualifies the relation between two works.
	ClassRole = SchemaNamespace + "Role"

	// ClassConcept is a thesaurus term.
	ClassConcept = SkosNamespace + "Concept"

	// ClassSemEvent and ClassBioEvent are asserted on every biographical event.
	ClassSemEvent = SemNamespace + "Event"
	ClassBioEvent = BioNamespace + "Event"

	ClassBirth    = BioNamespace + "Birth"
	ClassBaptism  = BioNamespace + "Baptism"
	ClassDeath    = BioNamespace + "Death"
	ClassBurial   = BioNamespace + "Burial"
	ClassMarriage = BioNamespace + "Marriage"
)

// XSD datatype IRIs for typed literals.
const (
	XSDDate     = XSDNamespace + "date"
	XSDDateTime = XSDNamespace + "dateTime"
	XSDFloat    = XSDNamespace + "float"
	XSDInteger  = XSDNamespace + "integer"
)
