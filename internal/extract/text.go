package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const windowTrim = ".;:!?),"

// meridiemGap matches a space between a time and its am/pm marker.
var meridiemGap = regexp.MustCompile(`(?i)(\d)\s+([ap]m)\b`)

// DateText picks the part of a message that should hold the date. Subjects
// of the form "Title @ <date> (extra) - more" yield "<date>"; otherwise the
// subject and snippet are searched together.
func DateText(subject, snippet string) string {
	if strings.Contains(subject, "@") {
		text := strings.Split(subject, "@")[1]
		text, _, _ = strings.Cut(text, "(")
		text, _, _ = strings.Cut(text, "-")
		return strings.TrimSpace(text)
	}
	return subject + " " + snippet
}

// ParseDate finds a date in text. It tries every layout against the whole
// text, then against every run of words as wide as the layout, and finally
// hands the whole text to dateparse. am/pm match in any case, with or
// without a space after the time. The result is
// in the extractor's location; naive times are read in it.
func (e *Extractor) ParseDate(text string) (time.Time, error) {
	text = strings.Join(strings.Fields(text), " ")
	text = meridiemGap.ReplaceAllString(text, "${1}${2}")
	if text == "" {
		return time.Time{}, ErrNoDate
	}

	for _, layout := range e.layouts {
		if t, ok := e.parseLayout(layout, text); ok {
			return t, nil
		}
	}

	words := strings.Fields(text)
	for _, layout := range e.layouts {
		width := len(strings.Fields(layout))
		for i := 0; i+width <= len(words); i++ {
			window := strings.Join(words[i:i+width], " ")
			window = strings.TrimLeft(strings.TrimRight(window, windowTrim), "(")
			if t, ok := e.parseLayout(layout, window); ok {
				return t, nil
			}
		}
	}

	if t, err := dateparse.ParseIn(text, e.loc); err == nil {
		return t.In(e.loc), nil
	}

	return time.Time{}, ErrNoDate
}

// parseLayout parses s with layout, retrying upper-cased because Go matches
// the AM/PM marker case-sensitively.
func (e *Extractor) parseLayout(layout, s string) (time.Time, bool) {
	t, err := time.ParseInLocation(layout, s, e.loc)
	if err != nil {
		t, err = time.ParseInLocation(layout, strings.ToUpper(s), e.loc)
		if err != nil {
			return time.Time{}, false
		}
	}

	if !strings.Contains(layout, "2006") {
		t = e.nextOccurrence(t)
	}
	return t.In(e.loc), true
}

// nextOccurrence moves a year-less date to the first year in which it is
// not in the past.
func (e *Extractor) nextOccurrence(t time.Time) time.Time {
	now := e.clock.Now().In(e.loc)
	resolved := time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, e.loc)
	if resolved.Before(now) {
		resolved = resolved.AddDate(1, 0, 0)
	}
	return resolved
}
