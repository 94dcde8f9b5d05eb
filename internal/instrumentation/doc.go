// Package instrumentation provides OpenTelemetry instrumentation for coachcal.
//
// # Metrics
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of interactive authorizations by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Pipeline Metrics:
//   - coachcal_messages_processed_total: Counter of messages by outcome and date source
//   - coachcal_scans_total / coachcal_scan_duration_seconds: scans by status
//
// # Tracing
//
// Spans are created for each scan, each message (coachcal.message) and each
// Google API call (google.<service>.<operation>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - AUDIT_LOGGING_ENABLED / AUDIT_LOGGING_INCLUDE_SUBJECTS: per-message audit log
//
// Prometheus metrics are served by the watch command on --metrics-addr.
package instrumentation
