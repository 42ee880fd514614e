package mcp

import (
	"fmt"
	"sort"
	"sync"
)

// Provider contributes a set of capabilities to a Registry.
type Provider interface {
	// Name returns the provider name (e.g., "greeting").
	Name() string
	// Register adds the provider's tools, prompts and resources to reg.
	Register(reg *Registry) error
}

// Options carries provider-specific construction values.
type Options map[string]any

// Factory creates a Provider from options.
type Factory func(opts Options) (Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// RegisterProvider makes a provider available by name. It is meant to be
// called from init and panics on a duplicate name.
func RegisterProvider(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("mcp: provider %q registered twice", name))
	}
	factories[name] = f
}

// LookupProvider finds a provider factory by name.
func LookupProvider(name string) Factory {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return factories[name]
}

// ProviderNames lists the registered provider factories.
func ProviderNames() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for k := range factories {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Get reads key from opts, falling back to def when absent or of another type.
func Get[T any](opts Options, key string, def T) T {
	if v, ok := opts[key]; ok {
		if cast, ok := v.(T); ok {
			return cast
		}
	}
	return def
}
