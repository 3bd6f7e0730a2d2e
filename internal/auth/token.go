// Package auth carries the bearer credential shared by every remote call.
// The store is injected everywhere it is read or cleared, so the
// clear-on-unauthorized policy has no hidden global state behind it.
package auth

import "sync"

type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the cached credential. Called whenever the remote service
// rejects it, after which the operator must sign in again.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
