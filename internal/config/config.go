// Package config defines the environment-backed configuration for an ingest
// run and a lint-style validator over it.
//
// Configuration is 12-factor style: every value comes from an INGEST_*
// environment variable (a .env file loaded by the CLI feeds the same
// variables). There is no default destination; the connectivity string,
// table, username, and secret path must all be supplied explicitly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names consumed by FromEnv.
const (
	EnvDBKind         = "INGEST_DB_KIND"
	EnvDSN            = "INGEST_DB_DSN"
	EnvTable          = "INGEST_DB_TABLE"
	EnvDBUser         = "INGEST_DB_USER"
	EnvSecretPath     = "INGEST_SECRET_PATH"
	EnvInputFile      = "INGEST_INPUT_FILE"
	EnvDBTimeout      = "INGEST_DB_TIMEOUT"
	EnvBatchSize      = "INGEST_BATCH_SIZE"
	EnvWorkers        = "INGEST_TRANSFORM_WORKERS"
	EnvMetricsBackend = "INGEST_METRICS_BACKEND"
	EnvPushgatewayURL = "INGEST_PUSHGATEWAY_URL"
)

// Config holds everything a single pipeline run needs beyond the secret
// value itself (which is resolved through a secrets.Provider).
type Config struct {
	// DBKind selects the storage backend ("postgres", "sqlite", "mysql", "mssql").
	DBKind string

	// DSN is the destination connectivity string, passed to the backend driver.
	DSN string

	// Table is the destination table name (optionally schema-qualified).
	Table string

	// DBUser is the destination username. It overrides any user embedded in
	// the DSN. Required for network backends, ignored by sqlite.
	DBUser string

	// SecretPath is the path of the password secret file.
	SecretPath string

	// InputFile is the CSV file to ingest. The --input flag overrides it.
	InputFile string

	// DBTimeout bounds destination I/O during the load stage.
	DBTimeout time.Duration

	// BatchSize is the number of rows per append batch.
	BatchSize int

	// TransformWorkers caps intra-stage parallelism in the transformer.
	// Zero means one worker per CPU.
	TransformWorkers int

	// MetricsBackend selects the metrics sink ("pushgateway" or "none").
	MetricsBackend string

	// PushgatewayURL is the Pushgateway base URL when MetricsBackend is
	// "pushgateway".
	PushgatewayURL string
}

// FromEnv builds a Config from the process environment. Absent values yield
// zero fields; Validate decides which of those are fatal.
func FromEnv() Config {
	return Config{
		DBKind:           os.Getenv(EnvDBKind),
		DSN:              os.Getenv(EnvDSN),
		Table:            os.Getenv(EnvTable),
		DBUser:           os.Getenv(EnvDBUser),
		SecretPath:       os.Getenv(EnvSecretPath),
		InputFile:        os.Getenv(EnvInputFile),
		DBTimeout:        getenvDuration(EnvDBTimeout, 30*time.Second),
		BatchSize:        getenvInt(EnvBatchSize, 1000),
		TransformWorkers: getenvInt(EnvWorkers, 0),
		MetricsBackend:   os.Getenv(EnvMetricsBackend),
		PushgatewayURL:   os.Getenv(EnvPushgatewayURL),
	}
}

// NetworkBackend reports whether the configured backend speaks to a server
// and therefore needs a username and password.
func (c Config) NetworkBackend() bool {
	return c.DBKind != "sqlite"
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// getenvDuration reads a time.Duration ("30s", "2m") from environment,
// returning def when unset/invalid.
func getenvDuration(k string, def time.Duration) time.Duration {
	if s := os.Getenv(k); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return def
}

// ConfigError marks a missing or unusable configuration value. It is fatal
// before any pipeline stage runs.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FirstError collapses a validation result into a single fatal error, or nil
// when no error-severity issue is present. Warnings never block a run.
func FirstError(issues []Issue) error {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return &ConfigError{Key: iss.Path, Err: fmt.Errorf("%s", iss.Message)}
		}
	}
	return nil
}

// trimmed reports whether s is empty after trimming space.
func trimmed(s string) bool { return strings.TrimSpace(s) != "" }
