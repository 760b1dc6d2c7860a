package calendar

import (
	"github.com/calcomb/cal-comb/app/ical"
)

// Merge folds calendars into one by set union of their events. Events that
// are fully structurally equal collapse into a single occurrence.
func Merge(cals []*ical.Calendar) *ical.Calendar {
	result := ical.NewCalendar()
	seen := make(map[string]struct{})

	for _, cal := range cals {
		if cal == nil {
			continue
		}
		for _, event := range cal.Events {
			key := event.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result.Add(event)
		}
	}

	return result
}
