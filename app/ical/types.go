package ical

import (
	"time"
)

// Event is the normalized representation of a VEVENT. Empty text fields
// mean the property is absent.
type Event struct {
	Name        string
	Description string
	Location    string
	Begin       time.Time
	End         time.Time
}

// Key returns the structural identity of the event. Two events with the
// same key are the same event for set purposes.
func (e Event) Key() string {
	return e.Name + "\x00" + e.Description + "\x00" + e.Location + "\x00" +
		e.Begin.UTC().Format(time.RFC3339) + "\x00" + e.End.UTC().Format(time.RFC3339)
}

// Calendar holds an event set. Order carries no meaning; duplicates
// collapse under union.
type Calendar struct {
	Events []Event
}

func NewCalendar() *Calendar {
	return &Calendar{}
}

func (c *Calendar) Add(e Event) {
	c.Events = append(c.Events, e)
}
