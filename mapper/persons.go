package mapper

import (
	"slices"
	"strings"

	"github.com/c360studio/artgraph/entity"
	"github.com/c360studio/artgraph/identity"
	"github.com/c360studio/artgraph/source"
)

var genders = map[string]string{
	"man":    "Male",
	"male":   "Male",
	"m":      "Male",
	"vrouw":  "Female",
	"female": "Female",
	"v":      "Female",
	"f":      "Female",
}

// mapGender normalizes the catalogue gender. Unknown values are kept as is.
func mapGender(raw source.FlexString) string {
	if g, ok := genders[strings.ToLower(raw.String())]; ok {
		return g
	}
	return raw.String()
}

// person returns the person with externalID, or the anonymous person keyed
// on owner, role and name. Repeated calls return the same entity and merge
// the name.
func (p *pass) person(externalID, owner, role, name string) *entity.Person {
	if externalID == "" && name == "" {
		return nil
	}
	id := p.assigner.IdentityFor(entity.KindPerson, externalID, identity.Key{
		Owner:  owner,
		Role:   role,
		Fields: []identity.Field{identity.F("name", name)},
	})
	person, ok := p.persons[id]
	if !ok {
		person = &entity.Person{ID: id, Anonymous: externalID == ""}
		p.persons[id] = person
		p.emit(person)
	}
	if name != "" && !slices.Contains(person.Names, name) {
		person.Names = append(person.Names, name)
	}
	return person
}

// place returns the place with externalID, or a label-only place keyed on
// owner, role and label.
func (p *pass) place(externalID, label, owner, role string) *entity.Place {
	if externalID == "" && label == "" {
		return nil
	}
	id := p.assigner.IdentityFor(entity.KindPlace, externalID, identity.Key{
		Owner:  owner,
		Role:   role,
		Fields: []identity.Field{identity.F("label", label)},
	})
	place, ok := p.places[id]
	if !ok {
		place = &entity.Place{ID: id, Anonymous: externalID == ""}
		p.places[id] = place
		p.emit(place)
	}
	if place.Label == "" {
		place.Label = label
	}
	return place
}

func (p *pass) artists(workID string, attributions []source.Attribution) []*entity.Person {
	var out []*entity.Person
	for _, a := range attributions {
		if source.IsSuperseded(a.Status) {
			continue
		}
		if person := p.person(a.PersonID.String(), workID, "artist", a.Name.String()); person != nil {
			out = appendPerson(out, person)
		}
	}
	return out
}

// sitter maps a depicted person with their life events and relatives.
func (p *pass) sitter(workID string, s source.Sitter) *entity.Person {
	if source.IsSuperseded(s.Status) {
		return nil
	}
	person := p.person(s.ID.String(), workID, "depicted", s.Name.String())
	if person == nil {
		return nil
	}
	if g := mapGender(s.Gender); g != "" {
		person.Gender = g
	}

	if e := p.lifeEvent(person, entity.EventBirth, s.BirthPlaceID, s.BirthPlace, s.BirthBegin, s.BirthEnd, "geboortedatum"); e != nil {
		person.Birth = e
	}
	if e := p.lifeEvent(person, entity.EventBaptism, s.BaptismPlaceID, s.BaptismPlace, s.BaptismDate, s.BaptismDate, "doopdatum"); e != nil {
		person.Events = appendEvent(person.Events, e)
	}
	if e := p.lifeEvent(person, entity.EventDeath, s.DeathPlaceID, s.DeathPlace, s.DeathBegin, s.DeathEnd, "sterfdatum"); e != nil {
		person.Death = e
	}
	if e := p.lifeEvent(person, entity.EventBurial, "", "", s.BurialDate, s.BurialDate, "begraafdatum"); e != nil {
		person.Events = appendEvent(person.Events, e)
	}
	for _, m := range s.Marriages {
		if e := p.marriage(person, m); e != nil {
			person.Events = appendEvent(person.Events, e)
		}
	}

	if father := p.person(s.FatherID.String(), person.ID, "father", s.Father.String()); father != nil {
		entity.LinkParent(father, person)
	}
	if mother := p.person(s.MotherID.String(), person.ID, "mother", s.Mother.String()); mother != nil {
		entity.LinkParent(mother, person)
	}
	for _, c := range s.Children {
		if child := p.person(c.ID.String(), person.ID, "child", c.Name.String()); child != nil {
			entity.LinkParent(person, child)
		}
	}
	return person
}

// lifeEvent maps a single-principal event. A person has at most one event of
// each of these types, so the identity depends on the person and the type
// only. It returns nil when the record says nothing about the event.
func (p *pass) lifeEvent(person *entity.Person, t entity.EventType, placeID, placeLabel, begin, end source.FlexString, field string) *entity.Event {
	if placeID.IsEmpty() && placeLabel.IsEmpty() && begin.IsEmpty() && end.IsEmpty() {
		return nil
	}
	e := &entity.Event{
		ID:        p.assigner.IdentityFor(entity.KindEvent, "", identity.Key{Owner: person.ID, Role: string(t)}),
		Type:      t,
		Principal: person.ID,
		Place:     p.place(placeID.String(), placeLabel.String(), person.ID, string(t)),
		Temporal:  p.temporal(field, begin.String(), end.String()),
	}
	e.Labels = EventLabels(t, []string{person.DisplayName()}, e.Temporal)
	p.emit(e)
	return e
}

// marriage maps one marriage block. The identity is keyed on both partners
// in sorted order so the marriage collapses when it is recorded for each of
// them.
func (p *pass) marriage(person *entity.Person, m source.Marriage) *entity.Event {
	if m.Date.IsEmpty() && m.PartnerID.IsEmpty() && m.Partner.IsEmpty() && m.PlaceID.IsEmpty() && m.Place.IsEmpty() {
		return nil
	}
	partner := p.person(m.PartnerID.String(), person.ID, "spouse", m.Partner.String())

	first, second := person.ID, ""
	partners := []string{person.ID}
	names := []string{person.DisplayName()}
	if partner != nil {
		person.AddSpouse(partner.ID)
		partner.AddSpouse(person.ID)
		partners = append(partners, partner.ID)
		names = append(names, partner.DisplayName())
		second = partner.ID
		if second < first {
			first, second = second, first
		}
	}

	e := &entity.Event{
		ID: p.assigner.IdentityFor(entity.KindEvent, "", identity.Key{
			Owner: first,
			Role:  string(entity.EventMarriage),
			Fields: []identity.Field{
				identity.F("partner", second),
				identity.F("date", m.Date.String()),
				identity.F("place", m.PlaceID.String()+m.Place.String()),
			},
		}),
		Type:     entity.EventMarriage,
		Partners: partners,
		Place:    p.place(m.PlaceID.String(), m.Place.String(), first, string(entity.EventMarriage)),
		Temporal: p.temporal("datum_huwelijk", m.Date.String(), m.Date.String()),
	}
	e.Labels = EventLabels(entity.EventMarriage, names, e.Temporal)
	p.emit(e)
	if partner != nil {
		partner.Events = appendEvent(partner.Events, e)
	}
	return e
}

func appendPerson(list []*entity.Person, p *entity.Person) []*entity.Person {
	if slices.Contains(list, p) {
		return list
	}
	return append(list, p)
}

func appendEvent(list []*entity.Event, e *entity.Event) []*entity.Event {
	if slices.ContainsFunc(list, func(x *entity.Event) bool { return x.ID == e.ID }) {
		return list
	}
	return append(list, e)
}
