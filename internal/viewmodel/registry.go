package viewmodel

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

// Registry hands out one Coordinator (and its List) per resource type,
// creating it on first use and discarding it on Unmount.
type Registry struct {
	deps  Deps
	stats map[string]StatsFunc

	mu      sync.Mutex
	mounted map[string]*Coordinator
}

// NewRegistry creates an empty Registry.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{
		deps:    deps,
		stats:   make(map[string]StatsFunc),
		mounted: make(map[string]*Coordinator),
	}
}

// WithStats loads fn alongside every load of resource.
func (r *Registry) WithStats(resource string, fn StatsFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[resource] = fn
	return r
}

// Mount returns the Coordinator for resource, creating an empty one if the
// resource is not mounted.
func (r *Registry) Mount(resource string) (*Coordinator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.mounted[resource]; ok {
		return c, nil
	}
	rt, ok := models.FindResourceType(resource)
	if !ok {
		return nil, fmt.Errorf("unknown resource type %q", resource)
	}
	deps := r.deps
	deps.Logger = r.deps.Logger.With(zap.String("resource", resource))
	list := NewList(rt, deps)
	list.stats = r.stats[resource]
	c := NewCoordinator(list, deps)
	r.mounted[resource] = c
	return c, nil
}

// Unmount discards the view-model of resource. The next Mount starts empty.
func (r *Registry) Unmount(resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mounted, resource)
}

// Mounted lists the currently mounted resource names.
func (r *Registry) Mounted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.mounted))
	for name := range r.mounted {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
