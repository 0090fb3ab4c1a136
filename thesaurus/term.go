package thesaurus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTermNotFound is returned by a TermFetcher when the thesaurus has no term
// with the requested id in the requested locale.
var ErrTermNotFound = errors.New("term not found")

// LegacyLocale is the locale assumed for untagged titles and descriptions in
// cache files written before terms were fetched per locale.
const LegacyLocale = "nl"

// TermData is one term as published in one locale.
type TermData struct {
	URL         string
	Title       string
	Description string
	Broader     []string
	Narrower    []string
	Related     []string
	UsedFor     []string
	// ExternalMapping is the IRI of the matching term in an external
	// vocabulary, such as the Getty AAT.
	ExternalMapping string
}

// TermFetcher retrieves term data from the thesaurus.
type TermFetcher interface {
	FetchTerm(ctx context.Context, locale, id string) (*TermData, error)
}

// LocalizedText maps a locale to a text.
type LocalizedText map[string]string

// CachedTerm is the cached form of a term merged over all locales.
type CachedTerm struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description,omitempty"`
	Broader     []string      `json:"broader"`
	Narrower    []string      `json:"narrower"`
	Related     []string      `json:"related"`
	UsedFor     []string      `json:"used_for,omitempty"`
	SameAs      string        `json:"same_as,omitempty"`
}

// UnmarshalJSON accepts both the current format and the legacy one, where
// title and description are plain strings, "used for" ids are stored under
// "targets" and the AAT mapping under "aat".
func (t *CachedTerm) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"id"`
		URL         string          `json:"url"`
		Title       json.RawMessage `json:"title"`
		Description json.RawMessage `json:"description"`
		Broader     []string        `json:"broader"`
		Narrower    []string        `json:"narrower"`
		Related     []string        `json:"related"`
		UsedFor     []string        `json:"used_for"`
		Targets     []string        `json:"targets"`
		SameAs      string          `json:"same_as"`
		AAT         *string         `json:"aat"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	title, err := decodeLocalized(raw.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	description, err := decodeLocalized(raw.Description)
	if err != nil {
		return fmt.Errorf("description: %w", err)
	}

	*t = CachedTerm{
		ID:          raw.ID,
		URL:         raw.URL,
		Title:       title,
		Description: description,
		Broader:     raw.Broader,
		Narrower:    raw.Narrower,
		Related:     raw.Related,
		UsedFor:     raw.UsedFor,
		SameAs:      raw.SameAs,
	}
	if len(t.UsedFor) == 0 {
		t.UsedFor = raw.Targets
	}
	if t.SameAs == "" && raw.AAT != nil {
		t.SameAs = *raw.AAT
	}
	return nil
}

func decodeLocalized(raw json.RawMessage) (LocalizedText, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil, nil
		}
		return LocalizedText{LegacyLocale: s}, nil
	}
	var m LocalizedText
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// mergeTerm combines the per-locale data of one term. Titles and
// descriptions are kept per locale; structure and the external mapping come
// from the first locale in order that has the term.
func mergeTerm(id string, order []string, byLocale map[string]*TermData) CachedTerm {
	term := CachedTerm{ID: id, Title: LocalizedText{}}
	structural := false
	for _, locale := range order {
		data, ok := byLocale[locale]
		if !ok {
			continue
		}
		if data.Title != "" {
			term.Title[locale] = data.Title
		}
		if data.Description != "" {
			if term.Description == nil {
				term.Description = LocalizedText{}
			}
			term.Description[locale] = data.Description
		}
		if structural {
			continue
		}
		structural = true
		term.URL = data.URL
		term.Broader = data.Broader
		term.Narrower = data.Narrower
		term.Related = data.Related
		term.UsedFor = data.UsedFor
		term.SameAs = data.ExternalMapping
	}
	return term
}
