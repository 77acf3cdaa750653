package pet

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Roster is a YAML document listing seed pets.
type Roster struct {
	Pets []Pet `yaml:"pets"`
}

// LoadRosterFromBytes parses and validates a roster. Pets without an ID are
// assigned a fresh UUID.
//
// Postcondition: Every returned pet passes Validate and has a normalized owner.
func LoadRosterFromBytes(data []byte) ([]Pet, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	seen := make(map[string]bool, len(r.Pets))
	out := make([]Pet, 0, len(r.Pets))
	for i, p := range r.Pets {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.Owner = NormalizeOwner(p.Owner)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("roster entry %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("roster entry %d: duplicate pet id %q", i, p.ID)
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

// LoadRoster reads a roster YAML file.
func LoadRoster(path string) ([]Pet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	pets, err := LoadRosterFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pets, nil
}
