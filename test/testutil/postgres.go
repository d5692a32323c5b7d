package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresContainer wraps a PostgreSQL test container.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	// DSN is a pgx-compatible connection string for the test database.
	DSN string
}

// PostgresOptions configures the PostgreSQL container.
type PostgresOptions struct {
	// Image is the PostgreSQL image to use. Defaults to "postgres:16-alpine".
	Image string
	// Database is the database to create. Defaults to "sqlexec".
	Database string
	// User is the superuser name. Defaults to "sqlexec".
	User string
	// Password is the superuser password. Defaults to "sqlexec".
	Password string
	// InitScripts are SQL files run once the database is created.
	InitScripts []string
}

// DefaultPostgresOptions returns default options for the PostgreSQL container.
func DefaultPostgresOptions() PostgresOptions {
	return PostgresOptions{
		Image:    "postgres:16-alpine",
		Database: "sqlexec",
		User:     "sqlexec",
		Password: "sqlexec",
	}
}

// StartPostgres starts a PostgreSQL container for testing.
//
// The container is automatically terminated when the test completes.
//
// Parameters:
//   - ctx: Context for container operations
//   - t: Testing context for cleanup registration
//   - opts: Optional configuration (nil uses defaults)
//
// Returns:
//   - *PostgresContainer: Container with its connection string
//   - error: Error if the container fails to start
func StartPostgres(ctx context.Context, t *testing.T, opts *PostgresOptions) (*PostgresContainer, error) {
	t.Helper()

	if opts == nil {
		defaultOpts := DefaultPostgresOptions()
		opts = &defaultOpts
	}

	customizers := []testcontainers.ContainerCustomizer{
		postgres.WithDatabase(opts.Database),
		postgres.WithUsername(opts.User),
		postgres.WithPassword(opts.Password),
		postgres.BasicWaitStrategies(),
	}
	if len(opts.InitScripts) > 0 {
		customizers = append(customizers, postgres.WithInitScripts(opts.InitScripts...))
	}

	container, err := postgres.Run(ctx, opts.Image, customizers...)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn}, nil
}
