// Package cmd implements the command-line interface for coachcal.
//
// This package provides the following commands:
//   - scan: Process unread invitations once (the default command)
//   - watch: Scan on an interval and serve Prometheus metrics
//   - auth: Run the OAuth consent flow and store the token
//   - version: Display version information
//
// Configuration is layered: compiled-in defaults, the YAML config file,
// COACHCAL_* environment variables and finally explicitly set flags.
package cmd
