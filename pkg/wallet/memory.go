package wallet

import (
	"context"
	"sort"
	"sync"

	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// MemoryStore keeps wallets in process memory. Used by tests and by
// single-node deployments that have no database configured.
type MemoryStore struct {
	cipher *Cipher

	mu     sync.RWMutex
	byUser map[int64]map[string]Wallet
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore(cipher *Cipher) *MemoryStore {
	return &MemoryStore{
		cipher: cipher,
		byUser: make(map[int64]map[string]Wallet),
	}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, userID int64, label string) (Wallet, error) {
	w, err := generateWallet(s.cipher, userID, label)
	if err != nil {
		return Wallet{}, err
	}
	s.put(w)
	return w, nil
}

// Import implements Store.
func (s *MemoryStore) Import(_ context.Context, userID int64, label, privateKey string) (Wallet, error) {
	w, err := importWallet(s.cipher, userID, label, privateKey)
	if err != nil {
		return Wallet{}, err
	}
	s.put(w)
	return w, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, userID int64, walletID string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.byUser[userID][walletID]
	if !ok {
		return Wallet{}, types.ErrWalletNotFound
	}
	return w, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, userID int64) ([]Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wallets := make([]Wallet, 0, len(s.byUser[userID]))
	for _, w := range s.byUser[userID] {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
	})
	return wallets, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, userID int64, walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[userID][walletID]; !ok {
		return types.ErrWalletNotFound
	}
	delete(s.byUser[userID], walletID)
	return nil
}

// Signer implements Store.
func (s *MemoryStore) Signer(ctx context.Context, userID int64, walletID string) (Signer, error) {
	w, err := s.Get(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	return signerFor(s.cipher, w)
}

func (s *MemoryStore) put(w Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byUser[w.UserID] == nil {
		s.byUser[w.UserID] = make(map[string]Wallet)
	}
	s.byUser[w.UserID][w.ID] = w
}
