package adapter

import (
	"context"
	"fmt"

	"github.com/bg1eym/atlas-data/internal/domain"
)

// Adapter captures a single fetch strategy over the {fetch, normalize}
// capability set.
type Adapter interface {
	Name() domain.AdapterType
	Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.RawItem, error)
	Normalize(raw []domain.RawItem, cfg domain.SourceConfig) []domain.NormalizedItem
}

// Registry keeps a mapping from adapter types to their implementations.
type Registry struct {
	adapters map[domain.AdapterType]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[domain.AdapterType]Adapter{}}
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(a Adapter) {
	if r.adapters == nil {
		r.adapters = map[domain.AdapterType]Adapter{}
	}
	r.adapters[a.Name()] = a
}

// Resolve returns an adapter by type or an error if it is absent.
func (r *Registry) Resolve(name domain.AdapterType) (Adapter, error) {
	if a, ok := r.adapters[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("adapter %s is not registered", name)
}
