// Package storage contains the storage-agnostic sink contract and the
// backend factory. Concrete backends live in subpackages and register
// themselves at init time; importing internal/storage/all (typically as a
// blank import in the wiring layer) makes every built-in backend available
// without the rest of the program importing database drivers directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository is the minimal sink interface the pipeline writes through.
//
// Append must add the given rows (aligned to the columns order) to the
// configured table without modifying, checking, or removing existing rows.
// Truncate exists solely for ModeOverwrite and removes all existing rows.
type Repository interface {
	Append(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Truncate(ctx context.Context) error
	Close()
}

// Config carries the destination descriptor handed to a backend factory.
type Config struct {
	// Kind selects the registered backend ("postgres", "sqlite", ...).
	Kind string

	// DSN is the driver connectivity string.
	DSN string

	// Table is the destination table, optionally schema-qualified.
	Table string

	// User and Password override any credentials embedded in the DSN when
	// non-empty. sqlite ignores both.
	User     string
	Password string

	// Timeout bounds individual driver calls (connect, append, truncate).
	// Zero means no explicit deadline beyond the caller's context.
	Timeout time.Duration
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. Concrete
// backends call it from init; tests call it to inject fakes.
func Register(kind string, fn Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind. Unknown kinds list the registered
// backends so a misconfiguration is self-explanatory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	factoriesMu.RLock()
	fn, ok := factories[cfg.Kind]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %s)",
			cfg.Kind, strings.Join(registered(), ", "))
	}
	return fn(ctx, cfg)
}

// registered returns the sorted backend kinds currently available.
func registered() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
