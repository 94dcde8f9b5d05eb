package extract

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoDate is returned when neither tier yields a start time.
var ErrNoDate = errors.New("no date found")

// Source tells which tier produced a candidate.
type Source string

const (
	SourceAttachment Source = "attachment"
	SourceText       Source = "text"
)

// Candidate is an event derived from a message. Start is always set.
type Candidate struct {
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
	Source  Source

	// Text is the string the heuristic tier parsed; empty for attachments.
	Text string

	// AttachmentErr is why a calendar attachment was passed over in favour
	// of the heuristic tier.
	AttachmentErr error
}

// Input is what the extractor reads from a message.
type Input struct {
	Subject string
	Snippet string

	// Calendar is the raw iCalendar attachment, if any.
	Calendar []byte
}

// Clock returns the current time. Year-less dates resolve against it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Options configures an Extractor.
type Options struct {
	// Location interprets floating and naive times and localizes results.
	Location *time.Location

	// Layouts are Go time layouts tried in order by the heuristic tier.
	Layouts []string

	// Duration is the length of events without an explicit end.
	Duration time.Duration

	// SummaryPrefix is prepended to the subject to form the default summary.
	SummaryPrefix string

	Clock Clock
}

// Extractor derives event candidates from messages.
type Extractor struct {
	loc      *time.Location
	layouts  []string
	duration time.Duration
	prefix   string
	clock    Clock
}

// New creates an Extractor. A nil Location means UTC, a non-positive
// Duration means one hour and a nil Clock means the system clock.
func New(opts Options) *Extractor {
	e := &Extractor{
		loc:      opts.Location,
		layouts:  opts.Layouts,
		duration: opts.Duration,
		prefix:   opts.SummaryPrefix,
		clock:    opts.Clock,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.duration <= 0 {
		e.duration = time.Hour
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	return e
}

// Extract tries the calendar attachment first and falls back to parsing the
// subject and snippet. It returns an error wrapping ErrNoDate when neither
// yields a start; the attachment's error is part of it.
func (e *Extractor) Extract(in Input) (*Candidate, error) {
	var attErr error
	if len(in.Calendar) > 0 {
		c, err := e.FromAttachment(in.Calendar, in.Subject)
		if err == nil {
			return c, nil
		}
		attErr = err
	}

	c, err := e.FromText(in.Subject, in.Snippet)
	if err != nil {
		if attErr != nil {
			return nil, fmt.Errorf("%w (calendar attachment: %v)", err, attErr)
		}
		return nil, err
	}
	c.AttachmentErr = attErr
	return c, nil
}

// FromText runs the heuristic tier.
func (e *Extractor) FromText(subject, snippet string) (*Candidate, error) {
	text := DateText(subject, snippet)

	start, err := e.ParseDate(text)
	if err != nil {
		return nil, err
	}

	return &Candidate{
		Summary: e.DefaultSummary(subject),
		Start:   start,
		End:     start.Add(e.duration),
		Source:  SourceText,
		Text:    text,
	}, nil
}

// DefaultSummary is the event title used when the invite carries none.
func (e *Extractor) DefaultSummary(subject string) string {
	return e.prefix + subject
}
