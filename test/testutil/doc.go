// Package testutil provides test utilities and fakes for sqlexec testing.
//
// # Fakes
//
//   - [FakeTransport]: Scripted adapter.Transport whose sessions answer through hooks
//   - [FakeRows]: In-memory adapter.Rows
//   - [TestMetricsCollector]: types.MetricsCollector that records every call
//
// # Usage
//
//	transport := testutil.NewFakeTransport(types.BackendSQLServer)
//	transport.OnFill = func(ctx context.Context, cmd *command.Command, all bool) (*adapter.FillResult, error) {
//	    return &adapter.FillResult{Tables: []*types.Table{table}}, nil
//	}
//
//	exec, _ := sqlexec.New(transport)
//
// # Integration Test Helpers
//
//   - StartPostgres: Starts a PostgreSQL test container (requires Docker)
package testutil
