package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// MessageRecord captures what happened to one scanned message.
type MessageRecord struct {
	MessageID string
	Subject   string

	// Source is where the date came from ("attachment", "text"), empty if none.
	Source  string
	EventID string
	Outcome string

	StartTime time.Time
	Duration  time.Duration
	Error     string

	TraceID string
	SpanID  string
}

// NewMessageRecord creates a MessageRecord with timing started.
// Call Complete when processing of the message finishes.
func NewMessageRecord(messageID string) *MessageRecord {
	return &MessageRecord{
		MessageID: messageID,
		StartTime: time.Now(),
	}
}

// WithSubject sets the message subject.
func (r *MessageRecord) WithSubject(subject string) *MessageRecord {
	r.Subject = subject
	return r
}

// WithSource sets where the event date was extracted from.
func (r *MessageRecord) WithSource(source string) *MessageRecord {
	r.Source = source
	return r
}

// WithEvent sets the identifier of the created calendar event.
func (r *MessageRecord) WithEvent(eventID string) *MessageRecord {
	r.EventID = eventID
	return r
}

// WithSpanContext extracts trace context from the current span.
func (r *MessageRecord) WithSpanContext(ctx context.Context) *MessageRecord {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.TraceID = span.SpanContext().TraceID().String()
		r.SpanID = span.SpanContext().SpanID().String()
	}
	return r
}

// Complete stamps the outcome and the elapsed time.
func (r *MessageRecord) Complete(outcome string, err error) *MessageRecord {
	r.Duration = time.Since(r.StartTime)
	r.Outcome = outcome
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// LogAttrs returns the slog attributes of the record. The subject is only
// included when includeSubject is set.
func (r *MessageRecord) LogAttrs(includeSubject bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("message_id", r.MessageID),
		slog.String("outcome", r.Outcome),
		slog.Duration("duration", r.Duration),
	}

	if includeSubject && r.Subject != "" {
		attrs = append(attrs, slog.String("subject", r.Subject))
	}
	if r.Source != "" {
		attrs = append(attrs, slog.String("source", r.Source))
	}
	if r.EventID != "" {
		attrs = append(attrs, slog.String("event_id", r.EventID))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", r.SpanID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}

	return attrs
}

// AuditLogger writes one structured audit line per processed message.
// A nil *AuditLogger discards records.
type AuditLogger struct {
	logger          *slog.Logger
	includeSubjects bool
	enabled         bool
}

// NewAuditLogger creates a new AuditLogger with the given configuration.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:          logger,
		includeSubjects: config.IncludeSubjects,
		enabled:         config.Enabled,
	}
}

// LogMessage logs a completed MessageRecord. Failures are logged at warn level.
func (al *AuditLogger) LogMessage(r *MessageRecord) {
	if al == nil || !al.enabled {
		return
	}

	attrs := r.LogAttrs(al.includeSubjects)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if r.Outcome == OutcomeFailed {
		al.logger.Warn("message_failed", args...)
		return
	}
	al.logger.Info("message_processed", args...)
}
