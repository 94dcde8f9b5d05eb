package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// propTime reads a DATE or DATE-TIME property. A TZID the zone database
// knows is used as is. Other TZIDs, such as the Windows names Exchange
// sends, are resolved from the VTIMEZONE definitions in cal. When nothing
// matches, the wall time is read in the extractor's location.
func (e *Extractor) propTime(cal *ical.Calendar, prop *ical.Prop) (time.Time, error) {
	tzid := prop.Params.Get(ical.PropTimezoneID)
	if tzid == "" {
		return prop.DateTime(e.loc)
	}
	if _, err := time.LoadLocation(tzid); err == nil {
		return prop.DateTime(e.loc)
	}

	naive := *prop
	naive.Params = make(ical.Params, len(prop.Params))
	for k, v := range prop.Params {
		if k != ical.PropTimezoneID {
			naive.Params[k] = v
		}
	}

	wall, err := naive.DateTime(time.UTC)
	if err != nil {
		return time.Time{}, err
	}

	loc := e.loc
	if tz := findTimezone(cal, tzid); tz != nil {
		if offset, ok := observanceOffset(tz, wall); ok {
			loc = time.FixedZone(tzid, offset)
		}
	}
	return naive.DateTime(loc)
}

func findTimezone(cal *ical.Calendar, tzid string) *ical.Component {
	for _, child := range cal.Children {
		if child.Name != ical.CompTimezone {
			continue
		}
		if id := child.Props.Get(ical.PropTimezoneID); id != nil && strings.TrimSpace(id.Value) == tzid {
			return child
		}
	}
	return nil
}

// observanceOffset returns the UTC offset in seconds of the STANDARD or
// DAYLIGHT observance in effect at wall, the local time in question. The
// observance with the latest onset at or before wall wins. If none has
// started yet the STANDARD offset is used.
func observanceOffset(tz *ical.Component, wall time.Time) (int, bool) {
	var (
		latest   time.Time
		offset   int
		found    bool
		fallback int
		haveAny  bool
	)

	for _, obs := range tz.Children {
		if obs.Name != ical.CompTimezoneStandard && obs.Name != ical.CompTimezoneDaylight {
			continue
		}
		to := obs.Props.Get(ical.PropTimezoneOffsetTo)
		if to == nil {
			continue
		}
		secs, err := parseUTCOffset(to.Value)
		if err != nil {
			continue
		}
		if !haveAny || obs.Name == ical.CompTimezoneStandard {
			fallback, haveAny = secs, true
		}

		if onset, ok := latestOnset(obs, wall); ok && (!found || onset.After(latest)) {
			latest, offset, found = onset, secs, true
		}
	}

	if found {
		return offset, true
	}
	return fallback, haveAny
}

// latestOnset is the last start of obs at or before wall. Onsets are local
// times, so both sides are compared as naive UTC values.
func latestOnset(obs *ical.Component, wall time.Time) (time.Time, bool) {
	start, err := obs.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil || start.IsZero() {
		return time.Time{}, false
	}

	opt, err := obs.Props.RecurrenceRule()
	if err != nil || opt == nil {
		if start.After(wall) {
			return time.Time{}, false
		}
		return start, true
	}

	// rrule stops about 290 years after DTSTART and Exchange anchors its
	// rules in 1601, so open-ended rules restart the year before wall.
	if opt.Count == 0 && start.Year() < wall.Year()-1 {
		start = time.Date(wall.Year()-1, start.Month(), start.Day(),
			start.Hour(), start.Minute(), start.Second(), 0, time.UTC)
	}
	opt.Dtstart = start

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, false
	}
	onset := rule.Before(wall, true)
	return onset, !onset.IsZero()
}

// parseUTCOffset parses an iCalendar UTC-OFFSET such as "+0800" or "-043000".
func parseUTCOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 && len(s) != 7 {
		return 0, fmt.Errorf("invalid utc offset %q", s)
	}

	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("invalid utc offset %q", s)
	}

	var parts [3]int
	for i := 0; 1+2*i < len(s); i++ {
		n, err := strconv.Atoi(s[1+2*i : 3+2*i])
		if err != nil {
			return 0, fmt.Errorf("invalid utc offset %q", s)
		}
		parts[i] = n
	}

	return sign * (parts[0]*3600 + parts[1]*60 + parts[2]), nil
}
