package subscription

import (
	"context"
	"sync"
)

// MemoryStore keeps subscriptions in process memory. Records are copied on
// the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]*Subscription)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, ErrNoSubscription
	}
	return sub.Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.UserID]; ok {
		return ErrSubscriptionExists
	}
	s.subs[sub.UserID] = sub.Clone()
	return nil
}

func (s *MemoryStore) Save(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.UserID] = sub.Clone()
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
