// Package session tracks per-user conversational state for multi-step
// flows. State is keyed by user id and synchronized internally, so
// concurrent updates from different chats never race.
package session

import (
	"sync"
	"time"

	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// Step identifies where a user is inside the token creation flow.
type Step int

const (
	StepNone Step = iota
	StepName
	StepSymbol
	StepDescription
	StepImageURL
	StepTelegramLink
	StepTwitterLink
	StepWallet
	StepConfirm
)

// State is one user's in-progress flow.
type State struct {
	Step      Step
	Draft     types.TokenMetadata
	WalletID  string
	UpdatedAt time.Time
}

// Active reports whether the user is inside a flow.
func (s State) Active() bool {
	return s.Step != StepNone
}

// Store holds conversational state per user.
type Store interface {
	Get(userID int64) (State, bool)
	Put(userID int64, state State)
	Delete(userID int64)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]State
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]State)}
}

// Get implements Store.
func (s *MemoryStore) Get(userID int64) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[userID]
	return state, ok
}

// Put implements Store.
func (s *MemoryStore) Put(userID int64, state State) {
	state.UpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = state
}

// Delete implements Store.
func (s *MemoryStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
