package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arloliu/sqlexec/types"
)

// Factory opens a transport for a connection string.
type Factory func(ctx context.Context, connString string, logger types.Logger) (Transport, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[types.Backend]Factory)
)

// Register adds a transport factory for a backend.
// Called by backend packages in their init() functions. A later registration
// for the same backend replaces the earlier one.
func Register(backend types.Backend, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[backend] = factory
}

// Get retrieves the factory registered for a backend.
func Get(backend types.Backend) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[backend]

	return f, ok
}

// IsRegistered checks if a backend has a registered transport.
func IsRegistered(backend types.Backend) bool {
	_, ok := Get(backend)

	return ok
}

// Backends returns all registered backends (sorted).
func Backends() []types.Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]types.Backend, 0, len(registry))
	for b := range registry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Open creates a transport through the registered factory.
//
// Parameters:
//   - ctx: Context for connection establishment
//   - backend: The backend to open
//   - connString: Driver connection string
//   - logger: Logger passed to the transport (may be nil)
//
// Returns:
//   - Transport: The opened transport
//   - error: *NotRegisteredError if no package registered the backend
func Open(ctx context.Context, backend types.Backend, connString string, logger types.Logger) (Transport, error) {
	factory, ok := Get(backend)
	if !ok {
		return nil, &NotRegisteredError{Backend: backend, Available: Backends()}
	}

	return factory(ctx, connString, logger)
}

// NotRegisteredError is returned when no transport is registered for a backend.
type NotRegisteredError struct {
	Backend   types.Backend
	Available []types.Backend
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("sqlexec: no transport registered for backend %q\nAvailable backends: %v\nHint: import _ \"github.com/arloliu/sqlexec/adapter/%s\"",
		e.Backend, e.Available, e.Backend)
}

// Unwrap returns types.ErrUnknownBackend.
func (e *NotRegisteredError) Unwrap() error {
	return types.ErrUnknownBackend
}
