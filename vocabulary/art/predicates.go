package art

import "github.com/c360studio/semstreams/vocabulary"

// Entity predicates apply to every kind of entity.
const (
	// EntityClass links an entity to its RDF class.
	EntityClass = "art.entity.class"

	// EntityName is a (possibly language tagged) name.
	EntityName = "art.entity.name"

	// EntityLabel is a display label, used for places and events.
	EntityLabel = "art.entity.label"

	// EntityDescription is free text describing the entity.
	EntityDescription = "art.entity.description"

	// EntitySameAs links to the same thing in an external vocabulary.
	EntitySameAs = "art.entity.same_as"
)

// Work predicates describe catalogued art works.
const (
	WorkAlternateName = "art.work.alternate_name"

	// WorkDisambiguation holds remarks on the title.
	WorkDisambiguation = "art.work.disambiguating_description"

	// WorkTemporal is the free text date label of the work.
	WorkTemporal = "art.work.temporal"

	// WorkDateModified is when the source record was last changed.
	WorkDateModified = "art.work.date_modified"

	WorkImage  = "art.work.image"
	WorkWidth  = "art.work.width"
	WorkHeight = "art.work.height"
	WorkDepth  = "art.work.depth"

	// WorkAbout links to depicted persons.
	WorkAbout = "art.work.about"

	// WorkArtist links to attributed artists.
	WorkArtist = "art.work.artist"

	WorkKeyword = "art.work.keyword"
	WorkArtform = "art.work.artform"
	WorkMedium  = "art.work.medium"
	WorkSurface = "art.work.surface"

	// WorkRelated links to a Role that qualifies a relation to another work.
	WorkRelated = "art.work.related"

	// WorkDataset links the work to the dataset it is published in.
	WorkDataset = "art.work.dataset"
)

// Time predicates hold timestamps and intervals of works and events.
const (
	TimeStamp         = "art.time.stamp"
	TimeEarliestBegin = "art.time.earliest_begin"
	TimeLatestEnd     = "art.time.latest_end"
)

// Person predicates.
const (
	PersonGender = "art.person.gender"
	PersonBirth  = "art.person.birth"
	PersonDeath  = "art.person.death"

	// PersonEvent links to other life events (baptism, burial, marriage).
	PersonEvent = "art.person.event"

	PersonSpouse = "art.person.spouse"
	PersonParent = "art.person.parent"
	PersonChild  = "art.person.child"
)

// Event predicates.
const (
	// EventPrincipal is the person a birth, baptism, death or burial is about.
	EventPrincipal = "art.event.principal"

	// EventPartner is a participant of a marriage.
	EventPartner = "art.event.partner"

	EventPlace = "art.event.place"
)

// Concept predicates mirror SKOS.
const (
	ConceptPrefLabel = "art.concept.pref_label"
	ConceptNote      = "art.concept.note"
	ConceptBroader   = "art.concept.broader"
	ConceptNarrower  = "art.concept.narrower"
	ConceptRelated   = "art.concept.related"
)

// Role predicates.
const (
	RoleName           = "art.role.name"
	RoleClassification = "art.role.classification"

	// RoleObject is the work the role points at.
	RoleObject = "art.role.object"
)

// Quantity predicates.
const (
	QuantityUnitCode = "art.quantity.unit_code"
	QuantityValue    = "art.quantity.value"
)

func init() {
	registerEntityPredicates()
	registerWorkPredicates()
	registerTimePredicates()
	registerPersonPredicates()
	registerEventPredicates()
	registerConceptPredicates()
	registerRolePredicates()
	registerQuantityPredicates()
}

func registerEntityPredicates() {
	vocabulary.Register(EntityClass,
		vocabulary.WithDescription("RDF class of the entity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RdfNamespace+"type"))

	vocabulary.Register(EntityName,
		vocabulary.WithDescription("Name of the entity"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"name"))

	vocabulary.Register(EntityLabel,
		vocabulary.WithDescription("Display label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RdfsNamespace+"label"))

	vocabulary.Register(EntityDescription,
		vocabulary.WithDescription("Free text description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"description"))

	vocabulary.Register(EntitySameAs,
		vocabulary.WithDescription("Same entity in an external vocabulary"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OwlNamespace+"sameAs"))
}

func registerWorkPredicates() {
	vocabulary.Register(WorkAlternateName,
		vocabulary.WithDescription("Alternate title of the work"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"alternateName"))

	vocabulary.Register(WorkDisambiguation,
		vocabulary.WithDescription("Remarks on the title"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"disambiguatingDescription"))

	vocabulary.Register(WorkTemporal,
		vocabulary.WithDescription("Date label as written in the catalogue"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"temporal"))

	vocabulary.Register(WorkDateModified,
		vocabulary.WithDescription("Last modification of the source record"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(SchemaNamespace+"dateModified"))

	vocabulary.Register(WorkImage,
		vocabulary.WithDescription("Thumbnail image of the work"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"image"))

	vocabulary.Register(WorkWidth,
		vocabulary.WithDescription("Width as a quantitative value"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"width"))

	vocabulary.Register(WorkHeight,
		vocabulary.WithDescription("Height as a quantitative value"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"height"))

	vocabulary.Register(WorkDepth,
		vocabulary.WithDescription("Depth as a quantitative value"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"depth"))

	vocabulary.Register(WorkAbout,
		vocabulary.WithDescription("Person depicted in the work"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"about"))

	vocabulary.Register(WorkArtist,
		vocabulary.WithDescription("Artist the work is attributed to"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"artist"))

	vocabulary.Register(WorkKeyword,
		vocabulary.WithDescription("Subject keyword from the thesaurus"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"keywords"))

	vocabulary.Register(WorkArtform,
		vocabulary.WithDescription("Object category from the thesaurus"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"artform"))

	vocabulary.Register(WorkMedium,
		vocabulary.WithDescription("Material from the thesaurus"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"artMedium"))

	vocabulary.Register(WorkSurface,
		vocabulary.WithDescription("Support from the thesaurus"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"artworkSurface"))

	vocabulary.Register(WorkRelated,
		vocabulary.WithDescription("Role qualifying a relation to another work"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"isRelatedTo"))

	vocabulary.Register(WorkDataset,
		vocabulary.WithDescription("Dataset the work is published in"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(VoidNamespace+"inDataset"))
}

func registerTimePredicates() {
	vocabulary.Register(TimeStamp,
		vocabulary.WithDescription("Exact date"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(SemNamespace+"hasTimeStamp"))

	vocabulary.Register(TimeEarliestBegin,
		vocabulary.WithDescription("Earliest possible begin date"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(SemNamespace+"hasEarliestBeginTimeStamp"))

	vocabulary.Register(TimeLatestEnd,
		vocabulary.WithDescription("Latest possible end date"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(SemNamespace+"hasLatestEndTimeStamp"))
}

func registerPersonPredicates() {
	vocabulary.Register(PersonGender,
		vocabulary.WithDescription("Gender of the person"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"gender"))

	vocabulary.Register(PersonBirth,
		vocabulary.WithDescription("Birth event"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(BioNamespace+"birth"))

	vocabulary.Register(PersonDeath,
		vocabulary.WithDescription("Death event"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(BioNamespace+"death"))

	vocabulary.Register(PersonEvent,
		vocabulary.WithDescription("Other life event"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(BioNamespace+"event"))

	vocabulary.Register(PersonSpouse,
		vocabulary.WithDescription("Spouse of the person"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"spouse"))

	vocabulary.Register(PersonParent,
		vocabulary.WithDescription("Parent of the person"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"parent"))

	vocabulary.Register(PersonChild,
		vocabulary.WithDescription("Child of the person"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"children"))
}

func registerEventPredicates() {
	vocabulary.Register(EventPrincipal,
		vocabulary.WithDescription("Person the event is about"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(BioNamespace+"principal"))

	vocabulary.Register(EventPartner,
		vocabulary.WithDescription("Partner in a marriage"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(BioNamespace+"partner"))

	vocabulary.Register(EventPlace,
		vocabulary.WithDescription("Place where the event happened"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(BioNamespace+"place"))
}

func registerConceptPredicates() {
	vocabulary.Register(ConceptPrefLabel,
		vocabulary.WithDescription("Preferred label of the term"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.SkosPrefLabel))

	vocabulary.Register(ConceptNote,
		vocabulary.WithDescription("Scope note of the term"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SkosNamespace+"note"))

	vocabulary.Register(ConceptBroader,
		vocabulary.WithDescription("Broader term"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(vocabulary.SkosBroader))

	vocabulary.Register(ConceptNarrower,
		vocabulary.WithDescription("Narrower term"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(vocabulary.SkosNarrower))

	vocabulary.Register(ConceptRelated,
		vocabulary.WithDescription("Related term"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(vocabulary.SkosRelated))
}

func registerRolePredicates() {
	vocabulary.Register(RoleName,
		vocabulary.WithDescription("Relation label as written in the catalogue"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"roleName"))

	vocabulary.Register(RoleClassification,
		vocabulary.WithDescription("Thesaurus term classifying the relation"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"additionalType"))

	vocabulary.Register(RoleObject,
		vocabulary.WithDescription("Related work"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(SchemaNamespace+"isRelatedTo"))
}

func registerQuantityPredicates() {
	vocabulary.Register(QuantityUnitCode,
		vocabulary.WithDescription("UN/CEFACT unit code"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SchemaNamespace+"unitCode"))

	vocabulary.Register(QuantityValue,
		vocabulary.WithDescription("Numeric value in the unit"),
		vocabulary.WithDataType("float64"),
		vocabulary.WithIRI(SchemaNamespace+"value"))
}
