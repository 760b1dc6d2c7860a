package ical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"golang.org/x/text/encoding/ianaindex"
)

// Decode parses raw ICS bytes into a Calendar. When encoding is non-empty
// the bytes are first decoded through the named IANA charset; otherwise they
// are taken as UTF-8.
func Decode(data []byte, encoding string) (*Calendar, error) {
	if encoding != "" {
		enc, err := ianaindex.IANA.Encoding(encoding)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("unsupported encoding %q", encoding)
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %q bytes: %w", encoding, err)
		}
		data = decoded
	}

	parsed, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	cal := NewCalendar()
	for _, ve := range parsed.Events() {
		var e Event

		if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
			e.Name = unescapeText(p.Value)
		}
		if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
			e.Description = unescapeText(p.Value)
		}
		if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
			e.Location = unescapeText(p.Value)
		}

		// The library resolves VTIMEZONE/TZID handling; events with
		// unparseable times keep zero values rather than failing the
		// whole feed.
		start, _ := ve.GetStartAt()
		end, _ := ve.GetEndAt()
		e.Begin = start
		e.End = end

		cal.Add(e)
	}

	return cal, nil
}

// Encode serializes a Calendar to ICS text. Timestamps are written in UTC.
func Encode(cal *Calendar) []byte {
	out := ics.NewCalendar()
	out.SetMethod(ics.MethodPublish)

	now := time.Now().UTC()
	for _, e := range cal.Events {
		ve := out.AddEvent(eventUID(e))
		ve.SetDtStampTime(now)
		ve.SetStartAt(e.Begin.UTC())
		ve.SetEndAt(e.End.UTC())

		if e.Name != "" {
			ve.SetProperty(ics.ComponentPropertySummary, escapeText(e.Name))
		}
		if e.Description != "" {
			ve.SetProperty(ics.ComponentPropertyDescription, escapeText(e.Description))
		}
		if e.Location != "" {
			ve.SetProperty(ics.ComponentPropertyLocation, escapeText(e.Location))
		}
	}

	return []byte(out.Serialize())
}

func eventUID(e Event) string {
	sum := sha256.Sum256([]byte(e.Key()))
	return hex.EncodeToString(sum[:16]) + "@cal-comb"
}

// escapeText applies RFC 5545 TEXT escaping; the underlying library writes
// property values verbatim.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}

func unescapeText(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
