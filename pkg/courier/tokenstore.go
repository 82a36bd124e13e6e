package courier

import (
	"context"
	"sync"
	"time"
)

// TokenStore caches auth tokens keyed by carrier account. Get returns
// (nil, nil) when no usable token is cached; expired tokens are treated
// as absent.
type TokenStore interface {
	Get(ctx context.Context, key string) (*Token, error)
	Put(ctx context.Context, key string, tok *Token) error
}

// MemoryTokenStore is an in-process TokenStore. It is the default for
// library use and tests; services usually wire a shared cache instead.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]*Token)}
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok := s.tokens[key]
	if !tok.Valid(time.Now()) {
		return nil, nil
	}
	return tok, nil
}

func (s *MemoryTokenStore) Put(_ context.Context, key string, tok *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = tok
	return nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)
