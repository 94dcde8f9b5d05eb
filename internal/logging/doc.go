// Package logging holds coachcal's slog setup and attribute helpers.
//
// Setup installs a text or JSON handler at the configured level as the slog
// default. The attribute helpers (MessageID, Subject, EventID, Source, Err)
// keep key names identical across the pipeline, the Google clients and the
// audit log, so log lines for one message can be grepped by message_id.
//
// Packages that want a swappable logger take the Logger interface; wrap a
// *slog.Logger with NewSlogAdapter:
//
//	runner, err := pipeline.New(pipeline.Config{
//	    Logger: logging.NewSlogAdapter(slog.Default()),
//	    ...
//	})
//
// OAuth tokens must pass through SanitizeToken before they are logged.
package logging
