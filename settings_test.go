package sqlexec

import (
	"context"
	"testing"
	"time"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/test/testutil"
	"github.com/arloliu/sqlexec/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsMatchDefaultConfig(t *testing.T) {
	s := DefaultSettings()
	cfg := DefaultConfig()

	assert.Equal(t, cfg.CommandTimeout, s.CommandTimeout)
	assert.Equal(t, cfg.ValidationEnabled, s.Validation.Enabled)
	assert.Equal(t, cfg.Retry.Enabled, s.Retry.Enabled)
	assert.Equal(t, cfg.Retry.MaxAttempts, s.Retry.MaxAttempts)
	assert.Equal(t, cfg.Retry.Delay, s.Retry.Delay)
}

func TestSettingsValidate(t *testing.T) {
	valid := func() *Settings {
		s := DefaultSettings()
		s.Backend = types.BackendPostgres
		s.ConnectionString = "postgres://localhost/app"

		return s
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
		fields []string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{name: "retry disabled ignores attempts", mutate: func(s *Settings) {
			s.Retry.Enabled = false
			s.Retry.MaxAttempts = 0
		}},
		{name: "unknown backend", mutate: func(s *Settings) { s.Backend = "mysql" }, fields: []string{"backend"}},
		{name: "empty connection string", mutate: func(s *Settings) { s.ConnectionString = " " }, fields: []string{"connection_string"}},
		{name: "negative timeout", mutate: func(s *Settings) { s.CommandTimeout = -time.Second }, fields: []string{"command_timeout"}},
		{name: "bad log level", mutate: func(s *Settings) { s.Log.Level = "verbose" }, fields: []string{"log.level"}},
		{name: "every problem", mutate: func(s *Settings) {
			s.Backend = ""
			s.ConnectionString = ""
			s.Retry.MaxAttempts = 0
			s.Retry.Delay = -time.Second
		}, fields: []string{"backend", "connection_string", "retry.max_attempts", "retry.delay"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)

			err := s.Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}

			ce, ok := types.AsCanonical(err)
			require.True(t, ok)
			got := make([]string, len(ce.Fields))
			for i, f := range ce.Fields {
				got[i] = f.Field
			}
			assert.Equal(t, tt.fields, got)
		})
	}

	var nilSettings *Settings
	require.ErrorIs(t, nilSettings.Validate(), types.ErrValidation)
}

func TestSettingsOptions(t *testing.T) {
	s := DefaultSettings()
	s.CommandTimeout = 5 * time.Second
	s.Validation.Enabled = false
	s.Retry = RetrySettings{Enabled: true, MaxAttempts: 4, Delay: 10 * time.Millisecond}

	cfg := DefaultConfig()
	for _, opt := range s.Options() {
		opt(cfg)
	}

	assert.Equal(t, 5*time.Second, cfg.CommandTimeout)
	assert.False(t, cfg.ValidationEnabled)
	assert.Equal(t, types.RetryConfig{Enabled: true, MaxAttempts: 4, Delay: 10 * time.Millisecond}, cfg.Retry)
}

func TestOpenFromSettings(t *testing.T) {
	transport := testutil.NewFakeTransport(types.BackendOracle)
	var gotDSN string
	adapter.Register(types.BackendOracle, func(_ context.Context, dsn string, _ types.Logger) (adapter.Transport, error) {
		gotDSN = dsn
		return transport, nil
	})

	s := DefaultSettings()
	s.Backend = types.BackendOracle
	s.ConnectionString = "oracle://scott:tiger@db:1521/XE"

	exec, err := Open(context.Background(), s)
	require.NoError(t, err)
	defer exec.Close()

	assert.Equal(t, s.ConnectionString, gotDSN)
	assert.Equal(t, types.BackendOracle, exec.Backend())

	_, err = Open(context.Background(), &Settings{Backend: types.BackendOracle})
	require.ErrorIs(t, err, types.ErrValidation)
}
