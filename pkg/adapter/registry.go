package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/strata/pkg/core"
)

// Factory builds an unconnected adapter. A nil logger means discard.
type Factory func(*slog.Logger) Adapter

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	aliases    = make(map[string]string)
)

// Register makes an adapter available under name and any aliases.
// Adapter packages call it from init; names are case-insensitive.
func Register(name string, factory Factory, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name = strings.ToLower(name)
	factories[name] = factory
	for _, a := range alias {
		aliases[strings.ToLower(a)] = name
	}
}

// Canonical resolves an alias to the registered adapter name.
// Unknown names are returned lowercased.
func Canonical(name string) string {
	name = strings.ToLower(name)
	registryMu.RLock()
	defer registryMu.RUnlock()
	if target, ok := aliases[name]; ok {
		return target
	}
	return name
}

// Get retrieves an adapter factory by name or alias.
func Get(name string) (Factory, bool) {
	name = Canonical(name)
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Lookup is Get with an *UnknownAdapterError for unregistered names.
func Lookup(name string) (Factory, error) {
	if f, ok := Get(name); ok {
		return f, nil
	}
	return nil, &UnknownAdapterError{Type: name, Available: ListAdapters()}
}

// NewAdapter creates an unconnected adapter for cfg.Type.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}
	factory, err := Lookup(cfg.Type)
	if err != nil {
		return nil, err
	}
	return factory(logger), nil
}

// ListAdapters returns the registered adapter names, sorted. Aliases are
// not included.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name or alias resolves to an adapter.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownAdapterError is returned when target.type names no registered adapter.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %v\nHint: Check target.type in strata.yaml", e.Type, e.Available)
}
