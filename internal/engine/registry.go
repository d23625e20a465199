package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

var (
	ErrEngineNotFound  = errors.New("engine not found")
	ErrDuplicateEngine = errors.New("engine already registered")
)

// Info describes a registered engine to callers (catalog, API, CLI)
type Info struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	Type             models.ProblemType `json:"type"`
	Skills           []string           `json:"skills"`
	DifficultySchema map[string]string  `json:"difficulty_schema"`
}

// Registration binds an id to a factory, a config constructor and metadata
type Registration struct {
	Info
	New       func() Engine
	NewConfig func() Config
}

// Registry maps engine ids to registrations. It is populated once at
// startup and only read afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Registration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Registration),
	}
}

// Register adds an engine. Registering an id twice is a configuration error.
func (r *Registry) Register(reg Registration) error {
	if reg.ID == "" || reg.New == nil || reg.NewConfig == nil {
		return fmt.Errorf("incomplete registration for %q", reg.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[reg.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEngine, reg.ID)
	}
	entry := reg
	r.entries[reg.ID] = &entry
	return nil
}

// MustRegister is Register for startup wiring; it panics on error
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Get retrieves a registration by id
func (r *Registry) Get(id string) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEngineNotFound, id)
	}
	return reg, nil
}

// List returns the metadata of all engines ordered by id
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.entries))
	for _, reg := range r.entries {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Build resolves an engine and decodes its parameters
func (r *Registry) Build(id string, params map[string]any) (Engine, Config, error) {
	reg, err := r.Get(id)
	if err != nil {
		return nil, nil, err
	}
	cfg := reg.NewConfig()
	if err := DecodeParams(params, cfg); err != nil {
		return nil, nil, err
	}
	return reg.New(), cfg, nil
}

// Generate is Build followed by Engine.Generate
func (r *Registry) Generate(id string, params map[string]any) (Engine, *models.StepResult, error) {
	eng, cfg, err := r.Build(id, params)
	if err != nil {
		return nil, nil, err
	}
	result, err := eng.Generate(cfg)
	if err != nil {
		return nil, nil, err
	}
	return eng, result, nil
}
