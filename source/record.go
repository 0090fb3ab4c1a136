package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one catalogue record of a work as returned by the record API.
// Field names follow the API. Scalar fields may arrive as strings, numbers
// or single-element arrays; list fields as a single string or an array.
type Record struct {
	ID               FlexString    `json:"priref"`
	Images           StringList    `json:"picturae_images"`
	Modified         FlexString    `json:"modification"`
	Titles           StringList    `json:"benaming_kunstwerk"`
	EnglishTitles    StringList    `json:"titel_engels"`
	AlternateTitles  StringList    `json:"andere_benaming"`
	TitleNotes       StringList    `json:"opmerking_titel"`
	SubjectNotes     StringList    `json:"opmerking_onderwerp"`
	DateLabels       StringList    `json:"datumlabel"`
	Keywords         StringList    `json:"RKD_algemene_trefwoorden_linkref"`
	Attributions     []Attribution `json:"toeschrijving"`
	SearchBegin      FlexString    `json:"zoekmarge_begindatum"`
	SearchEnd        FlexString    `json:"zoekmarge_einddatum"`
	ObjectCategories StringList    `json:"objectcategorie_linkref"`
	Supports         StringList    `json:"drager_lref"`
	Materials        StringList    `json:"materiaal_lref"`
	Width            FlexString    `json:"breedte"`
	Height           FlexString    `json:"hoogte"`
	Depth            FlexString    `json:"diepte"`
	PartOf           []Relation    `json:"onderdeel_van"`
	Depicted         []Sitter      `json:"voorgestelde"`
}

// Attribution attributes the work to an artist.
type Attribution struct {
	PersonID FlexString `json:"naam_linkref"`
	Name     FlexString `json:"naam_inverted"`
	Status   FlexString `json:"status"`
}

// Relation links the work to other works, such as a pendant or the larger
// work it is part of.
type Relation struct {
	Objects   []RelatedObject `json:"object_onderdeel_van"`
	Label     FlexString      `json:"onderdeel_van_verband"`
	LabelTerm FlexString      `json:"onderdeel_van_verband_lref"`
	Note      FlexString      `json:"onderdeel_van_opmerking"`
}

// RelatedObject is the target of a relation.
type RelatedObject struct {
	ID FlexString `json:"priref"`
}

// Sitter is a person depicted in the work.
type Sitter struct {
	ID     FlexString `json:"priref"`
	Name   FlexString `json:"naam_display"`
	Gender FlexString `json:"geslacht"`
	Status FlexString `json:"status"`

	BirthPlaceID FlexString `json:"geboorteplaats_lref"`
	BirthPlace   FlexString `json:"geboorteplaats"`
	BirthBegin   FlexString `json:"geboortedatum_begin"`
	BirthEnd     FlexString `json:"geboortedatum_eind"`

	BaptismPlaceID FlexString `json:"doopplaats_lref"`
	BaptismPlace   FlexString `json:"doopplaats"`
	BaptismDate    FlexString `json:"doopdatum"`

	DeathPlaceID FlexString `json:"sterfplaats_lref"`
	DeathPlace   FlexString `json:"sterfplaats"`
	DeathBegin   FlexString `json:"sterfdatum_begin"`
	DeathEnd     FlexString `json:"sterfdatum_eind"`

	BurialDate FlexString `json:"begraafdatum"`

	FatherID FlexString `json:"vader_lref"`
	Father   FlexString `json:"naam_vader"`
	MotherID FlexString `json:"moeder_lref"`
	Mother   FlexString `json:"naam_moeder"`
	Children []Relative `json:"kinderen"`

	Marriages []Marriage `json:"huwelijk"`
}

// Relative is a family member named in a sitter block.
type Relative struct {
	ID   FlexString `json:"priref"`
	Name FlexString `json:"naam"`
}

// Marriage is one marriage of a sitter.
type Marriage struct {
	Date      FlexString `json:"datum_huwelijk"`
	PartnerID FlexString `json:"huwelijks_partner_lref"`
	Partner   FlexString `json:"huwelijks_partner"`
	PlaceID   FlexString `json:"huwelijk_plaats_lref"`
	Place     FlexString `json:"huwelijk_plaats"`
}

// supersededStatuses mark attributions that the catalogue no longer holds.
var supersededStatuses = map[string]bool{
	"vervallen":  true,
	"superseded": true,
	"verworpen":  true,
	"rejected":   true,
}

// IsSuperseded reports whether an attribution status marks the entry as no
// longer valid.
func IsSuperseded(status FlexString) bool {
	return supersededStatuses[strings.ToLower(status.String())]
}

// FlexString is a scalar that tolerates the shapes the API uses for it.
type FlexString string

// String returns the trimmed value.
func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// IsEmpty reports whether the value is blank.
func (s FlexString) IsEmpty() bool {
	return s.String() == ""
}

// UnmarshalJSON accepts a string, a number, a boolean, null or an array whose
// first non-empty element is used.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*s = ""
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	case data[0] == '[':
		var list StringList
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = ""
		if len(list) > 0 {
			*s = FlexString(list[0])
		}
		return nil
	case data[0] == 't' || data[0] == 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*s = FlexString(strconv.FormatBool(b))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported value %s: %w", data, err)
		}
		*s = FlexString(n.String())
		return nil
	}
}

// StringList is a list field. Blank entries are dropped.
type StringList []string

// UnmarshalJSON accepts an array of scalars, a single scalar or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		var one FlexString
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = nil
		if !one.IsEmpty() {
			*l = StringList{one.String()}
		}
		return nil
	}

	var raw []FlexString
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for _, v := range raw {
		if !v.IsEmpty() {
			out = append(out, v.String())
		}
	}
	*l = out
	return nil
}

// ParseRecord decodes a record. Both a bare record and the API envelope
// {"response": {"docs": [...]}} are accepted; from the envelope the first
// document is used.
func ParseRecord(data []byte) (*Record, error) {
	var envelope struct {
		Response *struct {
			Docs []json.RawMessage `json:"docs"`
		} `json:"response"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if envelope.Response != nil {
		if len(envelope.Response.Docs) == 0 {
			return nil, ErrNotFound
		}
		data = envelope.Response.Docs[0]
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec.ID.IsEmpty() {
		return nil, fmt.Errorf("decode record: missing priref")
	}
	return &rec, nil
}
