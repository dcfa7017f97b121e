// Package store holds the immutable workspace snapshots fed to application selectors.
package store

import (
	"slices"
	"sync"
	"time"
)

// Agent is a configured chat agent.
type Agent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Model   string `json:"model"`
	Enabled bool   `json:"enabled"`
}

// Conversation is a chat thread with one agent.
type Conversation struct {
	ID           string    `json:"id"`
	AgentID      string    `json:"agent_id"`
	Title        string    `json:"title"`
	Archived     bool      `json:"archived"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot is an immutable view of the workspace.
//
// A published snapshot is never modified; every change produces a new *Snapshot.
type Snapshot struct {
	Version       uint64         `json:"version"`
	Agents        []Agent        `json:"agents"`
	Conversations []Conversation `json:"conversations"`
	ActiveAgentID string         `json:"active_agent_id"`
}

// clone copies the snapshot and its slices so a mutator cannot reach published data.
func (s *Snapshot) clone() *Snapshot {
	next := *s
	next.Agents = slices.Clone(s.Agents)
	next.Conversations = slices.Clone(s.Conversations)
	return &next
}

// Store publishes snapshots.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
}

// New creates a store whose first snapshot is a copy of initial.
func New(initial Snapshot) *Store {
	first := initial.clone()
	first.Version = 1
	return &Store{current: first}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a private copy of the current snapshot and publishes it.
func (s *Store) Update(fn func(next *Snapshot)) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.clone()
	fn(next)
	next.Version = s.current.Version + 1
	s.current = next
	return next
}
