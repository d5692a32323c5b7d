package types

// Logger is the structured logger used throughout sqlexec.
//
// Messages carry alternating key/value pairs. *slog.Logger satisfies this
// interface directly:
//
//	exec, _ := sqlexec.New(transport, sqlexec.WithLogger(slog.Default()))
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
