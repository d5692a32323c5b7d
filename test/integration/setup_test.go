package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arloliu/sqlexec"
	pgadapter "github.com/arloliu/sqlexec/adapter/postgres"
	"github.com/arloliu/sqlexec/test/testutil"
	"github.com/stretchr/testify/require"
)

const postgresSchema = `
CREATE TABLE users (
    id      INTEGER PRIMARY KEY,
    name    TEXT NOT NULL,
    email   TEXT UNIQUE,
    balance NUMERIC(12, 2) NOT NULL DEFAULT 0,
    created TIMESTAMP NOT NULL DEFAULT now()
);

CREATE PROCEDURE user_cursors(INOUT active refcursor, INOUT rich refcursor)
LANGUAGE plpgsql AS $$
BEGIN
    OPEN active FOR SELECT id, name FROM users ORDER BY id;
    OPEN rich FOR SELECT id, balance FROM users WHERE balance >= 100 ORDER BY id;
END;
$$;

CREATE PROCEDURE add_balance(p_id INTEGER, INOUT p_balance NUMERIC)
LANGUAGE plpgsql AS $$
BEGIN
    UPDATE users SET balance = balance + p_balance WHERE id = p_id
    RETURNING balance INTO p_balance;
END;
$$;

CREATE FUNCTION user_count() RETURNS INTEGER
LANGUAGE sql AS $$ SELECT count(*)::integer FROM users $$;
`

// skipIntegration skips t in short mode or when SKIP_INTEGRATION_TESTS=1.
func skipIntegration(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("SKIP_INTEGRATION_TESTS") == "1" {
		t.Skip("skipping integration test (SKIP_INTEGRATION_TESTS=1)")
	}
}

// startPostgres starts one PostgreSQL container for the lifetime of t with
// the test schema loaded and returns its connection string.
func startPostgres(t *testing.T) string {
	t.Helper()
	skipIntegration(t)

	schema := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(schema, []byte(postgresSchema), 0o644))

	opts := testutil.DefaultPostgresOptions()
	opts.InitScripts = []string{schema}

	pg, err := testutil.StartPostgres(context.Background(), t, &opts)
	require.NoError(t, err)

	return pg.DSN
}

// openPostgres opens an executor over dsn and closes it with t.
func openPostgres(t *testing.T, dsn string, opts ...sqlexec.Option) *sqlexec.Executor {
	t.Helper()

	transport, err := pgadapter.Open(context.Background(), dsn)
	require.NoError(t, err)

	exec, err := sqlexec.New(transport, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exec.Close() })

	return exec
}
