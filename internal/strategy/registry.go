package strategy

import (
	"sync"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// Registry holds the strategies available to callers. It is built explicitly
// at startup and passed through, never a package-level singleton.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]Strategy
	ordered []Strategy
}

func NewRegistry() *Registry {
	return &Registry{
		mu:      sync.RWMutex{},
		byID:    make(map[string]Strategy),
		ordered: nil,
	}
}

// Register adds a strategy. Duplicate ids are rejected.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID()]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyRegistered,
			"strategy %q is already registered", s.ID())
	}

	r.byID[s.ID()] = s
	r.ordered = append(r.ordered, s)

	return nil
}

// Get returns the strategy with the given id.
func (r *Registry) Get(id string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound,
			"strategy %q is not registered", id)
	}

	return s, nil
}

// List returns the strategies in registration order.
func (r *Registry) List() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Strategy, len(r.ordered))
	copy(out, r.ordered)

	return out
}
