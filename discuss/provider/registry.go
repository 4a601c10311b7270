package provider

import (
	"errors"
	"fmt"
)

// ErrNoProvidersAvailable is returned when the registry would hold an empty
// active set. This is fatal before any discussion can start.
var ErrNoProvidersAvailable = errors.New("no providers available")

// Registry holds the immutable, ordered set of providers that are actually
// usable for one analysis session.
//
// Availability is decided once, at registry build time, from an externally
// derived map (typically: is the API key present). Round logic never checks
// configuration again; it only sees the active set. Registration order is
// preserved and is the order used for deterministic tie-breaking in the
// aggregator.
type Registry struct {
	active []Provider
}

// NewRegistry filters all configured providers down to the available ones,
// preserving registration order.
//
// The availability map is keyed by provider name; a missing entry means
// unavailable. Returns ErrNoProvidersAvailable if the resulting set is
// empty.
func NewRegistry(all []Provider, available map[string]bool) (*Registry, error) {
	var active []Provider
	seen := make(map[string]bool, len(all))
	for _, p := range all {
		if p == nil {
			continue
		}
		name := p.Name()
		if seen[name] {
			return nil, fmt.Errorf("duplicate provider %q", name)
		}
		seen[name] = true
		if available[name] {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, ErrNoProvidersAvailable
	}
	return &Registry{active: active}, nil
}

// Active returns the active providers in registration order.
// The returned slice is a copy; mutating it does not affect the registry.
func (r *Registry) Active() []Provider {
	out := make([]Provider, len(r.active))
	copy(out, r.active)
	return out
}

// Critics returns the active providers that declare CapCritique, in
// registration order.
func (r *Registry) Critics() []Provider {
	var out []Provider
	for _, p := range r.active {
		if Has(p, CapCritique) {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the names of the active providers in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.active))
	for i, p := range r.active {
		out[i] = p.Name()
	}
	return out
}

// Len returns the number of active providers.
func (r *Registry) Len() int {
	return len(r.active)
}
