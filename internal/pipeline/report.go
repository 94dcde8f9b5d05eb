package pipeline

import (
	"time"

	"github.com/teemow/coachcal/internal/extract"
	"github.com/teemow/coachcal/internal/instrumentation"
)

// Status is the result of processing one message.
type Status string

const (
	StatusCreated Status = instrumentation.OutcomeCreated
	StatusSkipped Status = instrumentation.OutcomeSkipped
	StatusFailed  Status = instrumentation.OutcomeFailed

	// StatusPlanned marks a message that would have produced an event in a dry run.
	StatusPlanned Status = instrumentation.OutcomeDryRun
)

// Outcome describes what happened to one message.
type Outcome struct {
	MessageID string
	Subject   string
	Status    Status
	Source    extract.Source
	Start     time.Time

	// EventID is set once an event was inserted, even if the message could
	// not be marked read afterwards.
	EventID string

	// Err is the failure, or for skipped messages why no date was found.
	Err error
}

// Report summarizes one scan.
type Report struct {
	Scanned int
	Created int
	Skipped int
	Failed  int
	Planned int

	Outcomes []Outcome
}

func (r *Report) add(o Outcome) {
	r.Scanned++
	switch o.Status {
	case StatusCreated:
		r.Created++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	case StatusPlanned:
		r.Planned++
	}
	r.Outcomes = append(r.Outcomes, o)
}
