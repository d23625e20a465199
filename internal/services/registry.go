package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// checkTimeout bounds a single provider health check
const checkTimeout = 3 * time.Second

// Readiness is the outcome of checking every backing service
type Readiness struct {
	Ready    bool              `json:"ready"`
	Services map[string]string `json:"services"`
}

// Registry tracks the backing services for readiness checks and shutdown
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new service registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under name, replacing any previous one
func (r *Registry) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// Names returns the registered provider names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs all health checks in parallel. A failing service is reported
// by its error text and makes the whole registry not ready.
func (r *Registry) Check(ctx context.Context) Readiness {
	r.mu.RLock()
	providers := make(map[string]Provider, len(r.providers))
	for name, p := range r.providers {
		providers[name] = p
	}
	r.mu.RUnlock()

	var mu sync.Mutex
	report := Readiness{Ready: true, Services: make(map[string]string, len(providers))}

	var g errgroup.Group
	for name, p := range providers {
		name, p := name, p
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			err := p.HealthCheck(checkCtx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Ready = false
				report.Services[name] = err.Error()
				return nil
			}
			report.Services[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// CloseAll closes every provider and returns the first error
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for name, provider := range r.providers {
		if err := provider.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.providers, name)
	}
	return first
}
