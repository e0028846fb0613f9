package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
)

// Registry is a thread-safe set of providers indexed by the model types
// they serve. The first provider registered for a model is its default.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	modelIdx  map[ModelType][]string // model → provider names, registration order
	defaults  map[ModelType]string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		modelIdx:  make(map[ModelType][]string),
		defaults:  make(map[ModelType]string),
	}
}

// Register adds an initialized provider. Registering a name twice replaces
// the earlier provider but keeps its position in the model index.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p
	for _, model := range p.SupportedModels() {
		names := r.modelIdx[model]
		if !contains(names, info.Name) {
			r.modelIdx[model] = append(names, info.Name)
		}
		if _, ok := r.defaults[model]; !ok {
			r.defaults[model] = info.Name
		}
	}
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// ProvidersFor returns the providers serving model, default first.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.modelIdx[model]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// DefaultProvider returns the default provider name for a model type.
func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.defaults[model]
	return name, ok
}

// ModelCoverage maps each served model to its providers.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[ModelType][]string, len(r.modelIdx))
	for model, names := range r.modelIdx {
		cp := make([]string, len(names))
		copy(cp, names)
		coverage[model] = cp
	}
	return coverage
}

// Fetch retrieves model data from the provider named in params, or from the
// model's default provider. *ErrEmptyData from the fetcher is passed through
// wrapped so that callers can still detect it with IsEmptyData.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	name := params[ParamProvider]

	r.mu.RLock()
	if name == "" {
		name = r.defaults[model]
	}
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok || name == "" {
		return nil, &ErrProviderNotFound{Name: name}
	}

	fetcher := p.Fetcher(model)
	if fetcher == nil {
		return nil, &ErrModelNotSupported{Provider: name, Model: model}
	}
	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q fetch %s: %w", name, model, err)
	}
	log.Debug().Str("provider", name).Str("model", string(model)).Dur("took", time.Since(start)).Msg("fetch complete")

	result.Provider = name
	result.Model = model
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}
	return result, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

var global = NewRegistry()

// Global returns the process-wide registry.
func Global() *Registry {
	return global
}

// RegisterProvider adds a provider to the global registry.
func RegisterProvider(p Provider) error {
	return global.Register(p)
}
