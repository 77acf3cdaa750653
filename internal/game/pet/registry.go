package pet

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the source of truth for pets.
type Registry interface {
	// ListByOwner returns every pet owned by owner, ordered by name.
	ListByOwner(ctx context.Context, owner string) ([]Pet, error)
	// Get returns the pet with the given ID or ErrPetNotFound.
	Get(ctx context.Context, id string) (Pet, error)
	// Create validates and stores p.
	Create(ctx context.Context, p Pet) (Pet, error)
	// Tend applies c to the pet id owned by owner and stores the result.
	// It returns ErrPetNotFound, ErrNotOwner or ErrCannotEvolve.
	Tend(ctx context.Context, owner, id string, c Care) (Pet, error)
}

// NormalizeOwner canonicalizes a wallet address for lookups.
func NormalizeOwner(owner string) string {
	return strings.ToLower(strings.TrimSpace(owner))
}

// MemoryRegistry is an in-process Registry.
// All methods are safe for concurrent use.
type MemoryRegistry struct {
	mu   sync.RWMutex
	pets map[string]Pet
}

// NewMemoryRegistry creates a registry pre-populated with pets.
//
// Postcondition: Returns an error if any pet is invalid or IDs collide.
func NewMemoryRegistry(pets ...Pet) (*MemoryRegistry, error) {
	r := &MemoryRegistry{pets: make(map[string]Pet, len(pets))}
	for _, p := range pets {
		if _, err := r.Create(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ListByOwner implements Registry.
func (r *MemoryRegistry) ListByOwner(_ context.Context, owner string) ([]Pet, error) {
	owner = NormalizeOwner(owner)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Pet
	for _, p := range r.pets {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	SortByName(out)
	return out, nil
}

// Get implements Registry.
func (r *MemoryRegistry) Get(_ context.Context, id string) (Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pets[id]
	if !ok {
		return Pet{}, ErrPetNotFound
	}
	return p, nil
}

// Create implements Registry.
func (r *MemoryRegistry) Create(_ context.Context, p Pet) (Pet, error) {
	p.Owner = NormalizeOwner(p.Owner)
	if err := p.Validate(); err != nil {
		return Pet{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pets[p.ID]; exists {
		return Pet{}, fmt.Errorf("%w: %q", ErrPetExists, p.ID)
	}
	r.pets[p.ID] = p
	return p, nil
}

// Tend implements Registry.
func (r *MemoryRegistry) Tend(_ context.Context, owner, id string, c Care) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return Pet{}, ErrPetNotFound
	}
	next, err := Tend(p, owner, c)
	if err != nil {
		return Pet{}, err
	}
	r.pets[id] = next
	return next, nil
}

// All returns every pet ordered by owner then name.
func (r *MemoryRegistry) All() []Pet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Pet, 0, len(r.pets))
	for _, p := range r.pets {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Owner != out[j].Owner {
			return out[i].Owner < out[j].Owner
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SortByName orders pets by name, then ID, in place.
func SortByName(pets []Pet) {
	sort.SliceStable(pets, func(i, j int) bool {
		if pets[i].Name != pets[j].Name {
			return pets[i].Name < pets[j].Name
		}
		return pets[i].ID < pets[j].ID
	})
}
