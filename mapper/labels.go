package mapper

import (
	"fmt"
	"slices"
	"strings"

	"github.com/c360studio/artgraph/entity"
)

type eventNouns struct {
	en, nl string
}

var eventLabelNouns = map[entity.EventType]eventNouns{
	entity.EventBirth:    {en: "Birth", nl: "Geboorte"},
	entity.EventBaptism:  {en: "Baptism", nl: "Doop"},
	entity.EventDeath:    {en: "Death", nl: "Overlijden"},
	entity.EventBurial:   {en: "Burial", nl: "Begrafenis"},
	entity.EventMarriage: {en: "Marriage", nl: "Huwelijk"},
}

// EventLabels returns the English and Dutch labels of an event, for example
// "Marriage of Anna and Jan (1650)" and "Huwelijk van Anna en Jan (1650)".
// Marriage participants are sorted so both partners produce the same label.
func EventLabels(t entity.EventType, names []string, when entity.Temporal) []entity.LangString {
	nouns, ok := eventLabelNouns[t]
	if !ok {
		nouns = eventNouns{en: string(t), nl: string(t)}
	}
	names = slices.Clone(names)
	if t == entity.EventMarriage {
		slices.Sort(names)
	}
	if len(names) == 0 {
		names = []string{"?"}
	}
	year := when.YearLabel()
	return []entity.LangString{
		entity.Lang(fmt.Sprintf("%s of %s (%s)", nouns.en, strings.Join(names, " and "), year), "en"),
		entity.Lang(fmt.Sprintf("%s van %s (%s)", nouns.nl, strings.Join(names, " en "), year), "nl"),
	}
}
