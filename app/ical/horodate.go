package ical

import (
	"time"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Marker prefixes stamped into event descriptions.
const (
	FetchedMarker = "Event last fetched:"
	CachedMarker  = "Cached at"
)

// Horodate appends "<prefix> <timestamp>" to every event description on a
// new line. An absent description becomes the marker itself.
func Horodate(cal *Calendar, prefix string, now time.Time) {
	stamp := prefix + " " + now.Format(TimestampLayout)

	for i := range cal.Events {
		if cal.Events[i].Description != "" {
			cal.Events[i].Description += "\n" + stamp
		} else {
			cal.Events[i].Description = stamp
		}
	}
}
