package card

import (
	"context"
	"errors"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	cards map[string]Card
}

// NewMemoryStore constructs an in-memory store used in tests and when the
// service runs without a database.
func NewMemoryStore() Store {
	return &memoryStore{cards: make(map[string]Card)}
}

func (s *memoryStore) Create(_ context.Context, card Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cards[card.ID]; exists {
		return errors.New("card exists")
	}
	s.cards[card.ID] = card
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return Card{}, ErrCardNotFound
	}
	return card, nil
}

func (s *memoryStore) Update(_ context.Context, id string, fn func(*Card) error) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return Card{}, ErrCardNotFound
	}
	// fn runs on a copy so an aborted update leaves the row untouched.
	updated := card
	if err := fn(&updated); err != nil {
		return Card{}, err
	}
	s.cards[id] = updated
	return updated, nil
}
