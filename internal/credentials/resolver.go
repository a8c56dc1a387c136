// Package credentials decides which provider, model, and API key a call
// should use. Resolution is a pure function of the static registry, the
// configured system keys, and the call arguments.
package credentials

import (
	"strings"

	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/registry"
)

// minKeyLength is the shortest key treated as usable when probing service
// availability. Anything shorter is assumed to be a placeholder.
const minKeyLength = 10

// Resolution is the provider/model/key triple chosen for one attempt.
type Resolution struct {
	Service string
	Model   string
	APIKey  string

	// UserSupplied is true when the key came from the caller rather than
	// system configuration.
	UserSupplied bool
}

// Resolver computes per-call resolutions.
type Resolver struct {
	registry       *registry.Registry
	systemKeys     map[string]string
	defaultService string
}

// NewResolver creates a resolver. systemKeys maps service name to the
// system-configured API key; missing or empty entries mean the service has
// no system key.
func NewResolver(reg *registry.Registry, systemKeys map[string]string, defaultService string) *Resolver {
	keys := make(map[string]string, len(systemKeys))
	for svc, key := range systemKeys {
		keys[svc] = strings.TrimSpace(key)
	}
	return &Resolver{
		registry:       reg,
		systemKeys:     keys,
		defaultService: defaultService,
	}
}

// DefaultService returns the system default service name.
func (r *Resolver) DefaultService() string {
	return r.defaultService
}

// Resolve picks the service, model, and API key for one provider attempt.
//
// Precedence: explicit service > system default; explicit userKey (trimmed,
// non-empty) > system key for the chosen service; explicit model > provider
// default model.
//
// Returns ErrUnsupportedService for a service not in the registry and
// ErrNoCredential when no key is resolvable. Both are conditions for the
// gateway's fallback decision, not caller-visible failures.
func (r *Resolver) Resolve(service, model, userKey string) (Resolution, error) {
	if service == "" {
		service = r.defaultService
	}

	desc, ok := r.registry.Get(service)
	if !ok {
		return Resolution{}, domain.ErrUnsupportedService(service)
	}

	res := Resolution{Service: service, Model: model}
	if res.Model == "" {
		res.Model = desc.DefaultModel
	}

	if key := strings.TrimSpace(userKey); key != "" {
		res.APIKey = key
		res.UserSupplied = true
		return res, nil
	}

	if key := r.systemKeys[service]; key != "" {
		res.APIKey = key
		return res, nil
	}

	return Resolution{}, domain.ErrNoCredential(service)
}

// Available reports whether a service has a plausible system key configured.
// Used by the configuration endpoint and by the gateway when deciding whether
// a fallback attempt is worth making.
func (r *Resolver) Available(service string) bool {
	if _, ok := r.registry.Get(service); !ok {
		return false
	}
	return len(r.systemKeys[service]) > minKeyLength
}
