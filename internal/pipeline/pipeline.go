package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/coachcal/internal/calendar"
	"github.com/teemow/coachcal/internal/extract"
	"github.com/teemow/coachcal/internal/gmail"
	"github.com/teemow/coachcal/internal/instrumentation"
	"github.com/teemow/coachcal/internal/logging"
)

// Mailbox is the mail side of a scan.
type Mailbox interface {
	ListMessageIDs(ctx context.Context, query string) ([]string, error)
	GetMessage(ctx context.Context, messageID string) (*gmail.Message, error)
	MarkRead(ctx context.Context, messageIDs ...string) error
}

// Calendar receives the created events.
type Calendar interface {
	CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.EventSummary, error)
}

// Extractor turns a message into an event candidate.
type Extractor interface {
	Extract(in extract.Input) (*extract.Candidate, error)
}

// Config wires a Runner.
type Config struct {
	Mailbox   Mailbox
	Calendar  Calendar
	Extractor Extractor

	// Query selects the messages to scan.
	Query string

	CalendarID string

	// TimeZone is the IANA name sent with timed events.
	TimeZone string

	// DryRun extracts and logs without writing to the calendar or mailbox.
	DryRun bool

	Logger  logging.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// Runner performs scans. Messages are processed one at a time.
type Runner struct {
	cfg    Config
	logger logging.Logger
}

// New validates cfg and returns a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Mailbox == nil {
		return nil, errors.New("mailbox is required")
	}
	if cfg.Calendar == nil {
		return nil, errors.New("calendar is required")
	}
	if cfg.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if cfg.Query == "" {
		return nil, errors.New("query is required")
	}
	if cfg.CalendarID == "" {
		return nil, errors.New("calendar id is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	return &Runner{
		cfg:    cfg,
		logger: logger.With(logging.Operation("scan")),
	}, nil
}

// Run scans the mailbox once.
//
// A listing failure aborts the scan and is returned. Per-message failures are
// logged and recorded in the report; the scan moves on to the next message.
// An event may exist for a message that could not be marked read.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx, span := instrumentation.StartSpan(ctx, "coachcal.scan")
	defer span.End()
	start := time.Now()

	r.logger.Info("scanning mailbox", "query", r.cfg.Query, "dry_run", r.cfg.DryRun)

	ids, err := r.cfg.Mailbox.ListMessageIDs(ctx, r.cfg.Query)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		r.cfg.Metrics.RecordScan(ctx, instrumentation.StatusError, time.Since(start))
		return nil, err
	}

	report := &Report{}
	if len(ids) == 0 {
		r.logger.Info("no new unread messages")
		instrumentation.SetSpanSuccess(span)
		r.cfg.Metrics.RecordScan(ctx, instrumentation.StatusSuccess, time.Since(start))
		return report, nil
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			instrumentation.SetSpanError(span, err)
			r.cfg.Metrics.RecordScan(ctx, instrumentation.StatusError, time.Since(start))
			return report, fmt.Errorf("scan interrupted: %w", err)
		}
		report.add(r.process(ctx, id))
	}

	r.logger.Info("scan complete",
		"scanned", report.Scanned,
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"planned", report.Planned,
		logging.Duration(time.Since(start)),
	)
	instrumentation.SetSpanSuccess(span)
	r.cfg.Metrics.RecordScan(ctx, instrumentation.StatusSuccess, time.Since(start))

	return report, nil
}

func (r *Runner) process(ctx context.Context, messageID string) Outcome {
	ctx, span := instrumentation.StartMessageSpan(ctx, messageID)
	defer span.End()

	record := instrumentation.NewMessageRecord(messageID).WithSpanContext(ctx)
	logger := r.logger.With(logging.MessageID(messageID))

	out := r.handle(ctx, logger, messageID, record)

	// Skipped outcomes carry the extraction error as a reason, not a failure.
	if out.Status == StatusFailed {
		instrumentation.SetSpanError(span, out.Err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	r.cfg.Metrics.RecordMessage(ctx, string(out.Status), string(out.Source))
	r.cfg.Audit.LogMessage(record.WithEvent(out.EventID).Complete(string(out.Status), out.Err))

	return out
}

func (r *Runner) handle(ctx context.Context, logger logging.Logger, messageID string, record *instrumentation.MessageRecord) Outcome {
	out := Outcome{MessageID: messageID}

	msg, err := r.cfg.Mailbox.GetMessage(ctx, messageID)
	if err != nil {
		logger.Error("failed to fetch message", logging.Err(err))
		out.Status, out.Err = StatusFailed, err
		return out
	}
	out.Subject = msg.Subject
	record.WithSubject(msg.Subject)
	logger = logger.With(logging.Subject(msg.Subject))

	candidate, err := r.cfg.Extractor.Extract(extract.Input{
		Subject:  msg.Subject,
		Snippet:  msg.Snippet,
		Calendar: msg.Calendar,
	})
	if err != nil {
		logger.Info("no date found, leaving message unread", logging.Status(logging.StatusSkipped), logging.Err(err))
		out.Status, out.Err = StatusSkipped, err
		return out
	}
	if candidate.AttachmentErr != nil {
		logger.Warn("calendar attachment ignored, using subject text", logging.Err(candidate.AttachmentErr))
	}
	out.Source = candidate.Source
	out.Start = candidate.Start
	record.WithSource(string(candidate.Source))

	logger = logger.With(logging.Source(string(candidate.Source)))
	logger.Info("date found",
		"summary", candidate.Summary,
		"start", candidate.Start.Format(time.RFC3339),
		"end", candidate.End.Format(time.RFC3339),
		"all_day", candidate.AllDay,
	)

	if r.cfg.DryRun {
		logger.Info("dry run, not creating event")
		out.Status = StatusPlanned
		return out
	}

	event, err := r.cfg.Calendar.CreateEvent(ctx, r.cfg.CalendarID, calendar.EventInput{
		Summary:  candidate.Summary,
		Start:    candidate.Start,
		End:      candidate.End,
		TimeZone: r.cfg.TimeZone,
		AllDay:   candidate.AllDay,
	})
	if err != nil {
		logger.Error("failed to create event", logging.Err(err))
		out.Status, out.Err = StatusFailed, err
		return out
	}
	out.EventID = event.ID
	logger = logger.With(logging.EventID(event.ID))

	if err := r.cfg.Mailbox.MarkRead(ctx, messageID); err != nil {
		logger.Error("event created but failed to mark message read", logging.Err(err))
		out.Status, out.Err = StatusFailed, err
		return out
	}

	logger.Info("event created", logging.Status(logging.StatusSuccess))
	out.Status = StatusCreated
	return out
}
