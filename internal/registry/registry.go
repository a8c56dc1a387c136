// Package registry holds the static table of known AI services and their
// models. The table is built once at process start and is read-only
// afterwards, so it is safe for concurrent use without locking.
package registry

// ModelSpec describes one selectable model. Descriptive only; the adapter
// receives the ID unchanged.
type ModelSpec struct {
	ID          string
	DisplayName string
	Description string
	MaxTokens   int
}

// Descriptor describes one provider: its default model, the models a caller
// may select, and the provider tried next when this one fails.
type Descriptor struct {
	Name         string
	DefaultModel string
	Models       []ModelSpec

	// FallbackTo names the provider the gateway retries with when this one
	// is unavailable. Empty means no fallback.
	FallbackTo string
}

// Registry is the immutable provider table.
type Registry struct {
	byName map[string]Descriptor
	names  []string
}

// New creates a registry containing the built-in provider table.
func New() *Registry {
	return newFromDescriptors(builtins())
}

func newFromDescriptors(descs []Descriptor) *Registry {
	r := &Registry{byName: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		r.byName[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	return r
}

// Get returns the descriptor for a provider name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Fallback returns the descriptor configured as fallback for the named
// provider, when one exists and is distinct from the provider itself.
func (r *Registry) Fallback(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	if !ok || d.FallbackTo == "" || d.FallbackTo == name {
		return Descriptor{}, false
	}
	fb, ok := r.byName[d.FallbackTo]
	return fb, ok
}

// DefaultModel returns the default model for a provider, or "" when the
// provider is unknown.
func (r *Registry) DefaultModel(name string) string {
	if d, ok := r.byName[name]; ok {
		return d.DefaultModel
	}
	return ""
}

// HasModel reports whether a provider lists the given model.
func (r *Registry) HasModel(name, modelID string) bool {
	d, ok := r.byName[name]
	if !ok {
		return false
	}
	for _, m := range d.Models {
		if m.ID == modelID {
			return true
		}
	}
	return false
}

// Services returns the provider names in registration order.
func (r *Registry) Services() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
