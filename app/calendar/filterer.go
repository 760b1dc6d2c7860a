package calendar

import (
	"fmt"
	"regexp"

	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/ical"
)

type filterField string

const (
	fieldName        filterField = "name"
	fieldDescription filterField = "description"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run applies the name filter then the description filter, each producing a
// new calendar.
func (f *Filterer) Run(cal *ical.Calendar, spec *config.FilterSpec) (*ical.Calendar, error) {
	if spec == nil {
		return cal, nil
	}

	cal, err := f.filterBy(cal, spec.Name, fieldName)
	if err != nil {
		return nil, err
	}

	cal, err = f.filterBy(cal, spec.Description, fieldDescription)
	if err != nil {
		return nil, err
	}

	return cal, nil
}

func (f *Filterer) filterBy(cal *ical.Calendar, rule *config.FieldFilter, field filterField) (*ical.Calendar, error) {
	if rule == nil {
		return cal, nil
	}
	if rule.Exclude != nil && rule.IncludeOnly != nil {
		return nil, &config.ConfigError{Reason: fmt.Sprintf("cannot specify both exclude and includeOnly for %s", field)}
	}
	if rule.Exclude == nil && rule.IncludeOnly == nil {
		return cal, nil
	}

	pattern := rule.IncludeOnly
	if rule.Exclude != nil {
		pattern = rule.Exclude
	}

	re, err := compilePattern(*pattern, rule.IgnoreCase)
	if err != nil {
		return nil, &config.ConfigError{Reason: fmt.Sprintf("invalid %s filter pattern %q: %v", field, *pattern, err)}
	}

	out := ical.NewCalendar()
	for _, event := range cal.Events {
		if rule.Exclude != nil {
			if keepOnExclude(event, field, re) {
				out.Add(event)
			}
		} else {
			if keepOnIncludeOnly(event, field, re) {
				out.Add(event)
			}
		}
	}

	return out, nil
}

// keepOnExclude keeps an event unless the target field matches from its
// start. The original disjunction falls through to the other text field:
// excluding by name only drops events that also carry a description, and
// excluding by description always keeps events without a name.
func keepOnExclude(event ical.Event, field filterField, re *regexp.Regexp) bool {
	if event.Name == "" || (field == fieldName && !re.MatchString(event.Name)) {
		return true
	}
	if event.Description == "" || (field == fieldDescription && !re.MatchString(event.Description)) {
		return true
	}
	return false
}

// keepOnIncludeOnly keeps only events whose target field is present and
// matches from its start.
func keepOnIncludeOnly(event ical.Event, field filterField, re *regexp.Regexp) bool {
	switch field {
	case fieldName:
		return event.Name != "" && re.MatchString(event.Name)
	case fieldDescription:
		return event.Description != "" && re.MatchString(event.Description)
	default:
		return false
	}
}

// compilePattern builds a match-from-start regexp with "." spanning
// newlines, optionally case-insensitive.
func compilePattern(pattern string, ignoreCase bool) (*regexp.Regexp, error) {
	flags := "(?s)"
	if ignoreCase {
		flags = "(?si)"
	}
	return regexp.Compile(flags + `\A(?:` + pattern + `)`)
}
