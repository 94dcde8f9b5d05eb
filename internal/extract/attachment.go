package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// FromAttachment reads the first VEVENT of an iCalendar payload. Times with a
// TZID are read in that zone (see propTime), floating times in the
// extractor's location. DURATION stands in for a missing DTEND; without
// either the default duration applies.
func (e *Extractor) FromAttachment(data []byte, subject string) (*Candidate, error) {
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar attachment: %w", err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, errors.New("calendar attachment has no VEVENT")
	}
	ev := events[0]

	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return nil, errors.New("calendar event has no DTSTART")
	}

	start, err := e.propTime(cal, startProp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DTSTART: %w", err)
	}

	allDay := startProp.ValueType() == ical.ValueDate || len(strings.TrimSpace(startProp.Value)) == len("20060102")

	end, err := e.eventEnd(cal, ev, start, allDay)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event end: %w", err)
	}
	if !end.After(start) {
		if allDay {
			end = start.AddDate(0, 0, 1)
		} else {
			end = start.Add(e.duration)
		}
	}

	summary, err := ev.Props.Text(ical.PropSummary)
	if err != nil || strings.TrimSpace(summary) == "" {
		summary = e.DefaultSummary(subject)
	}

	return &Candidate{
		Summary: summary,
		Start:   start.In(e.loc),
		End:     end.In(e.loc),
		AllDay:  allDay,
		Source:  SourceAttachment,
	}, nil
}

// eventEnd reads DTEND, or derives it from DURATION. A zero time means the
// event states no end.
func (e *Extractor) eventEnd(cal *ical.Calendar, ev ical.Event, start time.Time, allDay bool) (time.Time, error) {
	if prop := ev.Props.Get(ical.PropDateTimeEnd); prop != nil {
		return e.propTime(cal, prop)
	}
	if prop := ev.Props.Get(ical.PropDuration); prop != nil {
		d, err := prop.Duration()
		if err != nil {
			return time.Time{}, err
		}
		return start.Add(d), nil
	}
	if allDay {
		return start.AddDate(0, 0, 1), nil
	}
	return time.Time{}, nil
}
