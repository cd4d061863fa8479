package tools

import (
	"fmt"
	"sync"

	"github.com/biztools-dev/biztools/internal/tier"
)

// Registry holds the registered tool catalog. It is an explicitly
// constructed instance handed to whatever needs lookup; there is no
// process-wide registry.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Descriptor
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor to the catalog. Slugs are unique and a
// descriptor must carry exactly one behavior.
func (r *Registry) Register(d *Descriptor) error {
	if d.Slug == "" {
		return fmt.Errorf("tool has no slug")
	}
	if n := d.behaviors(); n != 1 {
		return fmt.Errorf("tool %q must declare exactly one behavior, has %d", d.Slug, n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[d.Slug]; exists {
		return fmt.Errorf("tool %q already registered", d.Slug)
	}

	r.tools[d.Slug] = d
	r.order = append(r.order, d.Slug)
	return nil
}

// MustRegister panics on registration errors; for wiring built-in tools at
// startup, where a bad descriptor is a programming error.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

func (r *Registry) GetBySlug(slug string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.tools[slug]
	return d, ok
}

// ListFilter narrows List results. Tier keeps only tools usable at that
// tier or below.
type ListFilter struct {
	Category string
	Tier     *tier.Tier
}

// List returns descriptors in registration order.
func (r *Registry) List(filter ListFilter) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, 0, len(r.order))
	for _, slug := range r.order {
		d := r.tools[slug]
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if filter.Tier != nil && !filter.Tier.Covers(d.RequiredTier) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Len reports catalog size.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
