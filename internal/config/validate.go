// This file adds a lightweight linter/validator for Config values. It
// performs static checks and returns a list of issues (errors and warnings)
// that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to the
	// operator but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the configuration (e.g. "db.kind"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownKinds are the storage backends a matching implementation registers
// for. Unknown kinds are errors here because there is no forward-compatible
// fallback sink.
var knownKinds = map[string]struct{}{
	"postgres": {},
	"sqlite":   {},
	"mysql":    {},
	"mssql":    {},
}

// Validate performs static validation of a Config. It does not mutate the
// config and does not touch the filesystem or network; existence of the
// secret file is checked when the secret is actually read.
func (c Config) Validate() []Issue {
	var issues []Issue

	if !trimmed(c.DBKind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.kind",
			Message:  fmt.Sprintf("%s must not be empty", EnvDBKind),
		})
	} else if _, ok := knownKinds[c.DBKind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.kind",
			Message:  fmt.Sprintf("unknown storage kind %q", c.DBKind),
		})
	}

	if !trimmed(c.DSN) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.dsn",
			Message:  fmt.Sprintf("%s must not be empty; no default destination exists", EnvDSN),
		})
	}
	if !trimmed(c.Table) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.table",
			Message:  fmt.Sprintf("%s must not be empty", EnvTable),
		})
	}

	if c.NetworkBackend() {
		if !trimmed(c.DBUser) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "db.user",
				Message:  fmt.Sprintf("%s must not be empty for %q destinations", EnvDBUser, c.DBKind),
			})
		}
		if !trimmed(c.SecretPath) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "secret.path",
				Message:  fmt.Sprintf("%s must not be empty for %q destinations", EnvSecretPath, c.DBKind),
			})
		}
	}

	if !trimmed(c.InputFile) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.file",
			Message:  fmt.Sprintf("no input file; set %s or pass --input", EnvInputFile),
		})
	}

	if c.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "batch_size",
			Message:  fmt.Sprintf("batch size must be positive, got %d", c.BatchSize),
		})
	}
	if c.TransformWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform_workers",
			Message:  "transform workers must not be negative",
		})
	}
	if c.DBTimeout < time.Second {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "db.timeout",
			Message:  fmt.Sprintf("destination timeout %s is very low; loads may abort spuriously", c.DBTimeout),
		})
	}

	switch c.MetricsBackend {
	case "", "none", "pushgateway":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", c.MetricsBackend),
		})
	}

	return issues
}
