// Package config loads coachcal's runtime configuration.
//
// Values are layered with koanf: compiled-in defaults, then an optional YAML
// file, then COACHCAL_* environment variables (COACHCAL_MAIL_LABEL maps to
// mail.label). Command-line flags are applied on top by the cmd package.
// COACHCAL_EXTRACT_LAYOUTS takes a ";"-separated list of Go time layouts.
package config
