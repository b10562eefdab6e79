package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFileProviderTrims reads the secret and strips the trailing newline
// that editors and orchestrators leave in secret files.
func TestFileProviderTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db_password")
	require.NoError(t, os.WriteFile(path, []byte("s3cr3t-value\n"), 0o600))

	got, err := FileProvider{Path: path}.Secret()
	require.NoError(t, err)
	require.Equal(t, "s3cr3t-value", got)
}

// TestFileProviderWhitespaceOnly yields an empty secret rather than
// whitespace.
func TestFileProviderWhitespaceOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db_password")
	require.NoError(t, os.WriteFile(path, []byte("  \n\t\n"), 0o600))

	got, err := FileProvider{Path: path}.Secret()
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestFileProviderMissing surfaces the unreadable path in the error.
func TestFileProviderMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent")
	_, err := FileProvider{Path: path}.Secret()
	require.Error(t, err)
	require.ErrorContains(t, err, path)
}

// TestStaticProvider returns the fixed value.
func TestStaticProvider(t *testing.T) {
	got, err := StaticProvider{Value: "fixed"}.Secret()
	require.NoError(t, err)
	require.Equal(t, "fixed", got)
}
