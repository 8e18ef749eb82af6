package credstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/ports"
)

// MemoryStore keeps the credential pair in process memory. Used when no
// Redis is configured; sessions then do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

var _ ports.CredentialStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context, kind domain.CredentialKind) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.lookup(kind)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", domain.ErrNoCredential
	}
	return value, nil
}

func (s *MemoryStore) Set(_ context.Context, kind domain.CredentialKind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.CredentialAccess:
		s.access = value
	case domain.CredentialRefresh:
		s.refresh = value
	default:
		return fmt.Errorf("unknown credential kind %q", kind)
	}
	return nil
}

// SetPair writes both credentials under one lock so a concurrent reader
// never observes a partially updated pair.
func (s *MemoryStore) SetPair(_ context.Context, pair domain.CredentialPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = pair.Access
	s.refresh = pair.Refresh
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
	return nil
}

func (s *MemoryStore) lookup(kind domain.CredentialKind) (string, error) {
	switch kind {
	case domain.CredentialAccess:
		return s.access, nil
	case domain.CredentialRefresh:
		return s.refresh, nil
	default:
		return "", fmt.Errorf("unknown credential kind %q", kind)
	}
}
