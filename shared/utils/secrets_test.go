package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecretFrom(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("  s3cret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("\n"), 0o600))

	secret, err := ReadSecretFrom(dir, "jwt_secret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)

	_, err = ReadSecretFrom(dir, "empty")
	assert.Error(t, err)

	_, err = ReadSecretFrom(dir, "missing")
	assert.Error(t, err)
}

func TestEnvOrSecret(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_url"), []byte("postgres://from-file"), 0o600))

	old := SecretsDir
	SecretsDir = dir
	t.Cleanup(func() { SecretsDir = old })

	assert.Equal(t, "from-env", EnvOrSecret("from-env", "db_url"))
	assert.Equal(t, "postgres://from-file", EnvOrSecret("", "db_url"))
	assert.Empty(t, EnvOrSecret("", "missing"))
}
