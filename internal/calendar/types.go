package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time

	// TimeZone is the IANA zone name sent with timed events; defaults to
	// the zone of Start.
	TimeZone string

	// AllDay events are sent as dates; End is exclusive.
	AllDay bool
}

// EventSummary represents a created calendar event
type EventSummary struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	AllDay   bool
	Status   string
	HTMLLink string
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		Status:   event.Status,
		HTMLLink: event.HtmlLink,
	}

	summary.Start, summary.AllDay = parseEventDateTime(event.Start)
	summary.End, _ = parseEventDateTime(event.End)

	return summary
}

func parseEventDateTime(edt *calendar.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t, false
		}
	} else if edt.Date != "" {
		if t, err := time.Parse(dateLayout, edt.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
