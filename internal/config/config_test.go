package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setFullEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvDBKind, "postgres")
	t.Setenv(EnvDSN, "postgres://db.example.com:5432/app")
	t.Setenv(EnvTable, "public.users")
	t.Setenv(EnvDBUser, "ingest")
	t.Setenv(EnvSecretPath, "/run/secrets/db_password")
	t.Setenv(EnvInputFile, "/data/users.csv")
	t.Setenv(EnvDBTimeout, "45s")
	t.Setenv(EnvBatchSize, "500")
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvMetricsBackend, "pushgateway")
	t.Setenv(EnvPushgatewayURL, "http://pushgateway:9091")
}

// TestFromEnv reads every variable and applies defaults for the optional
// numeric ones.
func TestFromEnv(t *testing.T) {
	setFullEnv(t)

	cfg := FromEnv()
	require.Equal(t, "postgres", cfg.DBKind)
	require.Equal(t, "postgres://db.example.com:5432/app", cfg.DSN)
	require.Equal(t, "public.users", cfg.Table)
	require.Equal(t, "ingest", cfg.DBUser)
	require.Equal(t, "/run/secrets/db_password", cfg.SecretPath)
	require.Equal(t, "/data/users.csv", cfg.InputFile)
	require.Equal(t, 45*time.Second, cfg.DBTimeout)
	require.Equal(t, 500, cfg.BatchSize)
	require.Equal(t, 4, cfg.TransformWorkers)
	require.Equal(t, "pushgateway", cfg.MetricsBackend)
	require.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
}

// TestFromEnvDefaults falls back for the numeric knobs when unset or
// garbled.
func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvDBTimeout, "not-a-duration")
	t.Setenv(EnvBatchSize, "")

	cfg := FromEnv()
	require.Equal(t, 30*time.Second, cfg.DBTimeout)
	require.Equal(t, 1000, cfg.BatchSize)
	require.Equal(t, 0, cfg.TransformWorkers)
}

// TestValidateComplete passes a fully specified config.
func TestValidateComplete(t *testing.T) {
	setFullEnv(t)
	require.Empty(t, FromEnv().Validate())
}

func errorPaths(issues []Issue) []string {
	var paths []string
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			paths = append(paths, iss.Path)
		}
	}
	return paths
}

// TestValidateMissingDestination flags every required destination value.
func TestValidateMissingDestination(t *testing.T) {
	cfg := Config{BatchSize: 1000, DBTimeout: 30 * time.Second}
	paths := errorPaths(cfg.Validate())
	require.Contains(t, paths, "db.kind")
	require.Contains(t, paths, "db.dsn")
	require.Contains(t, paths, "db.table")
	require.Contains(t, paths, "input.file")
}

// TestValidateNetworkCredentials requires user and secret path for server
// backends but not for sqlite.
func TestValidateNetworkCredentials(t *testing.T) {
	base := Config{
		DSN: "dsn", Table: "users", InputFile: "in.csv",
		BatchSize: 1000, DBTimeout: 30 * time.Second,
	}

	pg := base
	pg.DBKind = "postgres"
	paths := errorPaths(pg.Validate())
	require.Contains(t, paths, "db.user")
	require.Contains(t, paths, "secret.path")

	lite := base
	lite.DBKind = "sqlite"
	paths = errorPaths(lite.Validate())
	require.NotContains(t, paths, "db.user")
	require.NotContains(t, paths, "secret.path")
}

// TestValidateUnknownKind rejects a backend no factory registers for.
func TestValidateUnknownKind(t *testing.T) {
	cfg := Config{
		DBKind: "oracle", DSN: "dsn", Table: "users", DBUser: "u",
		SecretPath: "/s", InputFile: "in.csv",
		BatchSize: 1000, DBTimeout: 30 * time.Second,
	}
	require.Contains(t, errorPaths(cfg.Validate()), "db.kind")
}

// TestValidateWarnings surfaces low timeouts and unknown metrics backends
// without blocking the run.
func TestValidateWarnings(t *testing.T) {
	cfg := Config{
		DBKind: "sqlite", DSN: "x.db", Table: "users", InputFile: "in.csv",
		BatchSize: 1000, DBTimeout: 100 * time.Millisecond,
		MetricsBackend: "statsd",
	}
	issues := cfg.Validate()
	require.Empty(t, errorPaths(issues))
	require.Len(t, issues, 2)
	require.NoError(t, FirstError(issues))
}

// TestFirstError returns a ConfigError naming the first failing path.
func TestFirstError(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityWarning, Path: "db.timeout", Message: "low"},
		{Severity: SeverityError, Path: "db.dsn", Message: "must not be empty"},
	}
	err := FirstError(issues)
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "db.dsn", cerr.Key)
}
