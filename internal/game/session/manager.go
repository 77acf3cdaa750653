// Package session tracks which trainers are logged in. A wallet address may
// hold at most one live Telnet session at a time.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/onegotchi/arena/internal/game/pet"
)

var (
	// ErrAlreadyConnected is returned when a trainer logs in twice.
	ErrAlreadyConnected = errors.New("trainer already connected")
	// ErrNotConnected is returned for an address with no live session.
	ErrNotConnected = errors.New("trainer not connected")
)

// TrainerSession is one logged-in trainer.
type TrainerSession struct {
	// Address is the normalized wallet address.
	Address string
	// ConnID is the Telnet connection id.
	ConnID     string
	LoggedInAt time.Time
	// MatchID is the match the trainer is fighting, or empty.
	MatchID string
}

// Manager tracks all live trainer sessions and which of them are in a match.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	trainers map[string]*TrainerSession // address → session
	matches  map[string]string          // matchID → address
	now      func() time.Time
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		trainers: make(map[string]*TrainerSession),
		matches:  make(map[string]string),
		now:      time.Now,
	}
}

// Add registers a session for address on connection connID.
//
// Precondition: address and connID must be non-empty.
// Postcondition: Returns a copy of the new session, or ErrAlreadyConnected.
func (m *Manager) Add(address, connID string) (TrainerSession, error) {
	address = pet.NormalizeOwner(address)
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.trainers[address]; exists {
		return TrainerSession{}, fmt.Errorf("%w: %s on %s", ErrAlreadyConnected, address, s.ConnID)
	}
	s := &TrainerSession{Address: address, ConnID: connID, LoggedInAt: m.now()}
	m.trainers[address] = s
	return *s, nil
}

// Remove drops the session of address and its match membership.
//
// Postcondition: Returns ErrNotConnected if address had no session.
func (m *Manager) Remove(address string) error {
	address = pet.NormalizeOwner(address)
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.trainers[address]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	if s.MatchID != "" {
		delete(m.matches, s.MatchID)
	}
	delete(m.trainers, address)
	return nil
}

// SetMatch records that address is fighting matchID. An empty matchID clears it.
func (m *Manager) SetMatch(address, matchID string) error {
	address = pet.NormalizeOwner(address)
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.trainers[address]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotConnected, address)
	}
	if s.MatchID != "" {
		delete(m.matches, s.MatchID)
	}
	s.MatchID = matchID
	if matchID != "" {
		m.matches[matchID] = address
	}
	return nil
}

// Get returns a copy of the session for address.
func (m *Manager) Get(address string) (TrainerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.trainers[pet.NormalizeOwner(address)]
	if !ok {
		return TrainerSession{}, false
	}
	return *s, true
}

// All returns copies of every session ordered by address.
func (m *Manager) All() []TrainerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TrainerSession, 0, len(m.trainers))
	for _, s := range m.trainers {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trainers)
}

// InBattle returns the number of trainers currently assigned a match.
func (m *Manager) InBattle() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}
