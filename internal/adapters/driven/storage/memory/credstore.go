package memory

import (
	"context"
	"sync"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore is an in-memory implementation of driven.CredentialsStore.
type CredentialsStore struct {
	mu     sync.RWMutex
	tokens map[string][]byte
}

// NewCredentialsStore creates a new in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{
		tokens: make(map[string][]byte),
	}
}

// GetToken retrieves the stored token for a provider.
func (s *CredentialsStore) GetToken(_ context.Context, provider string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[provider]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(token))
	copy(out, token)
	return out, nil
}

// SaveToken stores the token for a provider.
func (s *CredentialsStore) SaveToken(_ context.Context, provider string, token []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(token))
	copy(stored, token)
	s.tokens[provider] = stored
	return nil
}

// DeleteToken removes the stored token for a provider.
func (s *CredentialsStore) DeleteToken(_ context.Context, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, provider)
	return nil
}
