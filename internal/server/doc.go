// Package server exposes Prometheus metrics and health endpoints for the
// long-running watch mode.
//
// Endpoints:
//   - /metrics: Prometheus scrape endpoint
//   - /healthz: liveness
//   - /readyz: ready once the latest scan succeeded
//   - /healthz/detailed: uptime, scan count and last error
package server
