package courier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered carrier integrations, e.g. one per
// configured carrier account.
type Registry struct {
	couriers map[string]Courier
	mu       sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		couriers: make(map[string]Courier),
	}
}

// Register adds a carrier to the registry.
func (r *Registry) Register(c Courier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.couriers[c.Name()] = c
}

// Get returns a carrier by name.
func (r *Registry) Get(name string) (Courier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.couriers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered carriers.
func (r *Registry) All() []Courier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Courier, 0, len(r.couriers))
	for _, c := range r.couriers {
		result = append(result, c)
	}
	return result
}

// Names returns the names of all registered carriers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.couriers))
	for name := range r.couriers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.couriers)
}

// TrackAll fetches tracking info for one tracking number from every
// registered carrier in parallel. Errors from individual carriers are
// collected but don't fail the whole request.
func (r *Registry) TrackAll(ctx context.Context, trackingNumber string) ([]*TrackingInfo, []error) {
	couriers := r.All()
	if len(couriers) == 0 {
		return nil, []error{ErrCarrierNotFound}
	}

	results := make([]*TrackingInfo, 0, len(couriers))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, c := range couriers {
		g.Go(func() error {
			info, err := c.TrackOrder(ctx, trackingNumber)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
				return nil
			}
			results = append(results, info)
			return nil
		})
	}

	g.Wait()
	return results, errs
}
