package calendar

import (
	"time"

	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/ical"
)

type Modifier struct{}

func NewModifier() *Modifier {
	return &Modifier{}
}

// Run applies the time shift, then the name, description and location text
// edits, in that order.
func (m *Modifier) Run(cal *ical.Calendar, spec *config.ModifySpec) *ical.Calendar {
	if spec == nil {
		return cal
	}

	cal = m.shiftTime(cal, spec.Time)
	cal = m.editText(cal, spec.Name, func(e *ical.Event) *string { return &e.Name })
	cal = m.editText(cal, spec.Description, func(e *ical.Event) *string { return &e.Description })
	cal = m.editText(cal, spec.Location, func(e *ical.Event) *string { return &e.Location })

	return cal
}

func (m *Modifier) shiftTime(cal *ical.Calendar, tm *config.TimeModify) *ical.Calendar {
	if tm == nil || tm.Shift == nil {
		return cal
	}

	minutes := tm.Shift.Minutes()
	if minutes == 0 {
		return cal
	}
	offset := time.Duration(minutes) * time.Minute

	for i := range cal.Events {
		if minutes > 0 {
			cal.Events[i].End = cal.Events[i].End.Add(offset)
			cal.Events[i].Begin = cal.Events[i].Begin.Add(offset)
		} else {
			cal.Events[i].Begin = cal.Events[i].Begin.Add(offset)
			cal.Events[i].End = cal.Events[i].End.Add(offset)
		}
	}

	return cal
}

func (m *Modifier) editText(cal *ical.Calendar, edit *config.TextEdit, field func(*ical.Event) *string) *ical.Calendar {
	if edit == nil {
		return cal
	}

	for i := range cal.Events {
		v := field(&cal.Events[i])

		if edit.AddPrefix != nil {
			*v = *edit.AddPrefix + *v
		}
		if edit.AddSuffix != nil {
			*v = *v + *edit.AddSuffix
		}
		if edit.RedactAs != nil {
			*v = *edit.RedactAs
		}
	}

	return cal
}
