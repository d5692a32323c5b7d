package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arloliu/sqlexec"
	"github.com/arloliu/sqlexec/types"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	settings, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, sqlexec.DefaultSettings(), settings)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", `
backend: PostgreSQL
connection_string: postgres://app@db/app
command_timeout: 5s
validation:
  enabled: false
retry:
  max_attempts: 5
  delay: 250ms
log:
  level: debug
metrics:
  prefix: app
`)

	settings, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, types.BackendPostgres, settings.Backend)
	assert.Equal(t, "postgres://app@db/app", settings.ConnectionString)
	assert.Equal(t, 5*time.Second, settings.CommandTimeout)
	assert.False(t, settings.Validation.Enabled)
	assert.True(t, settings.Retry.Enabled, "unset keys keep their defaults")
	assert.Equal(t, 5, settings.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, settings.Retry.Delay)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, "app", settings.Metrics.Prefix)
	require.NoError(t, settings.Validate())
}

func TestLoadFindsFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, ConfigFileNameAlt, "backend: mssql\n")

	settings, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLServer, settings.Backend)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "bad.yaml", "backend: mysql\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "sqlexec.yaml", `
backend: oracle
retry:
  max_attempts: 2
`)
	t.Setenv("SQLEXEC_BACKEND", "sqlserver")
	t.Setenv("SQLEXEC_CONNECTION_STRING", "sqlserver://sa@db")
	t.Setenv("SQLEXEC_RETRY__MAX_ATTEMPTS", "7")
	t.Setenv("SQLEXEC_RETRY__DELAY", "2s")

	settings, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, types.BackendSQLServer, settings.Backend)
	assert.Equal(t, "sqlserver://sa@db", settings.ConnectionString)
	assert.Equal(t, 7, settings.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, settings.Retry.Delay)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SQLEXEC_BACKEND", "oracle")
	t.Setenv("SQLEXEC_LOG__LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--backend", "postgres",
		"--dsn", "postgres://localhost/app",
		"--retry=false",
		"--command-timeout", "45s",
	}))

	settings, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, types.BackendPostgres, settings.Backend)
	assert.Equal(t, "postgres://localhost/app", settings.ConnectionString)
	assert.False(t, settings.Retry.Enabled)
	assert.Equal(t, 45*time.Second, settings.CommandTimeout)
	assert.Equal(t, "warn", settings.Log.Level, "unchanged flags do not override env")
	assert.Equal(t, 3, settings.Retry.MaxAttempts)
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SQLEXEC_BACKEND", "backend"},
		{"SQLEXEC_CONNECTION_STRING", "connection_string"},
		{"SQLEXEC_RETRY__MAX_ATTEMPTS", "retry.max_attempts"},
		{"SQLEXEC_VALIDATION__ENABLED", "validation.enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
		})
	}
}

func TestRegisterFlagsCoversEveryKey(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)

	for name := range flagKeys {
		assert.NotNil(t, fs.Lookup(name), name)
	}

	keys := defaults()
	for _, key := range flagKeys {
		_, ok := keys[key]
		assert.True(t, ok, key)
	}
}
