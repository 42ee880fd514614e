package mcp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Manager instantiates named providers and loads their capabilities into a
// single Registry.
type Manager struct {
	providers map[string]Provider // name -> instance
	order     []string
	registry  *Registry
}

// NewManager returns a manager backed by an empty registry.
func NewManager() *Manager {
	return &Manager{providers: map[string]Provider{}, registry: NewRegistry()}
}

// Load creates each named provider with opts and registers its capabilities.
func (m *Manager) Load(names []string, opts Options) error {
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := m.providers[name]; dup {
			continue
		}
		f := LookupProvider(name)
		if f == nil {
			return fmt.Errorf("unknown provider: %s", name)
		}
		p, err := f(opts)
		if err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
		if err := p.Register(m.registry); err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
		m.providers[name] = p
		m.order = append(m.order, name)
		logrus.WithFields(logrus.Fields{
			"provider":     name,
			"capabilities": m.registry.Len(),
		}).Debug("loaded provider")
	}
	return nil
}

// Registry returns the registry the providers were loaded into.
func (m *Manager) Registry() *Registry { return m.registry }

// Provider returns a provider instance by name.
func (m *Manager) Provider(name string) (Provider, error) {
	p, ok := m.providers[name]
	if !ok {
		return nil, errors.New("provider not found")
	}
	return p, nil
}

// List returns loaded provider names in load order.
func (m *Manager) List() []string {
	return append([]string(nil), m.order...)
}
