package mcp

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the capability namespace a name lives in.
type Kind string

const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
	KindPrompt   Kind = "prompt"
)

// HandlerFunc executes a capability with validated arguments.
type HandlerFunc func(ctx context.Context, args Args) (Result, error)

// Descriptor is a registered capability.
type Descriptor struct {
	Kind        Kind
	Name        string
	Description string
	Schema      ParameterSchema
	Handler     HandlerFunc

	// Resources only.
	URI      string
	MimeType string
}

type capKey struct {
	kind Kind
	name string
}

// ErrSealed is returned by Register once dispatch has started.
var ErrSealed = errors.New("registry is sealed")

// Registry maps (kind, name) to descriptors. It is filled during startup and
// sealed before the first dispatch, after which it is read-only and safe for
// concurrent readers without locking.
type Registry struct {
	entries map[capKey]*Descriptor
	byURI   map[string]*Descriptor
	order   []capKey
	sealed  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[capKey]*Descriptor),
		byURI:   make(map[string]*Descriptor),
	}
}

// Register adds d. It fails with *DuplicateNameError when (d.Kind, d.Name), or
// a resource's URI, is already taken.
func (r *Registry) Register(d Descriptor) error {
	if r.sealed {
		return ErrSealed
	}
	switch d.Kind {
	case KindTool, KindPrompt:
	case KindResource:
		if d.URI == "" {
			return fmt.Errorf("resource %q: uri required", d.Name)
		}
	default:
		return fmt.Errorf("unknown capability kind %q", d.Kind)
	}
	if d.Name == "" {
		return fmt.Errorf("%s name required", d.Kind)
	}
	if d.Handler == nil {
		return fmt.Errorf("%s %q: handler required", d.Kind, d.Name)
	}
	k := capKey{d.Kind, d.Name}
	if _, exists := r.entries[k]; exists {
		return &DuplicateNameError{Kind: d.Kind, Name: d.Name}
	}
	if d.Kind == KindResource {
		if _, exists := r.byURI[d.URI]; exists {
			return &DuplicateNameError{Kind: d.Kind, Name: d.URI}
		}
	}

	stored := d
	stored.Schema.Params = append([]Param(nil), d.Schema.Params...)
	r.entries[k] = &stored
	if d.Kind == KindResource {
		r.byURI[d.URI] = &stored
	}
	r.order = append(r.order, k)
	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Resolve returns a copy of the descriptor registered under (kind, name).
// Resources may also be addressed by URI.
func (r *Registry) Resolve(kind Kind, name string) (Descriptor, error) {
	if d, ok := r.entries[capKey{kind, name}]; ok {
		return *d, nil
	}
	if kind == KindResource {
		if d, ok := r.byURI[name]; ok {
			return *d, nil
		}
	}
	return Descriptor{}, &UnknownCapabilityError{Kind: kind, Name: name}
}

// List returns the descriptors of kind in registration order.
func (r *Registry) List(kind Kind) []Descriptor {
	var out []Descriptor
	for _, k := range r.order {
		if k.kind == kind {
			out = append(out, *r.entries[k])
		}
	}
	return out
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int { return len(r.order) }
