package hearth

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry starts caches under unique names and resolves them by name.
type Registry[K comparable, V any] struct {
	mu     sync.RWMutex
	caches map[string]*Cache[K, V]
	base   []Option
}

// NewRegistry creates a registry whose caches are all started with opts.
// Options given to Start are applied after these.
func NewRegistry[K comparable, V any](opts ...Option) *Registry[K, V] {
	return &Registry[K, V]{
		caches: make(map[string]*Cache[K, V]),
		base:   opts,
	}
}

// Start creates a cache registered as name.
func (r *Registry[K, V]) Start(name string, opts ...Option) (*Cache[K, V], error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.caches[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}

	all := make([]Option, 0, len(r.base)+len(opts)+1)
	all = append(all, r.base...)
	all = append(all, opts...)
	all = append(all, WithName(name))

	cfg, err := newConfig(all...)
	if err != nil {
		return nil, err
	}
	c, err := newCache[K, V](cfg)
	if err != nil {
		return nil, err
	}

	r.caches[name] = c
	return c, nil
}

// Lookup returns the cache registered as name.
func (r *Registry[K, V]) Lookup(name string) (*Cache[K, V], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.caches[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// Stop closes the cache registered as name and frees the name.
func (r *Registry[K, V]) Stop(name string) error {
	r.mu.Lock()
	c, ok := r.caches[name]
	delete(r.caches, name)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c.Close()
}

// Names returns the registered names in sorted order.
func (r *Registry[K, V]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.caches))
	for name := range r.caches {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of registered caches.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caches)
}

// StopAll closes every registered cache concurrently and empties the registry.
// It returns early with ctx's error if ctx ends before all caches have exited.
func (r *Registry[K, V]) StopAll(ctx context.Context) error {
	r.mu.Lock()
	caches := r.caches
	r.caches = make(map[string]*Cache[K, V])
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for name, c := range caches {
		g.Go(func() error {
			go func() { _ = c.Close() }()

			select {
			case <-c.Done():
				return nil
			case <-ctx.Done():
				return fmt.Errorf("failed to stop cache %s: %w", name, ctx.Err())
			}
		})
	}
	return g.Wait()
}
