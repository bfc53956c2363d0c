package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/logger"
)

type entry struct {
	draft     *Draft
	expiresAt time.Time
}

// Store keeps one in-flight draft per user in process memory. Drafts are
// deliberately not persisted: an abandoned wizard leaves no trace and a
// restart starts everyone fresh.
type Store struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	ttl     time.Duration
	now     func() time.Time
}

// NewStore builds a draft store with the provided idle TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[uuid.UUID]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the user's draft, or nil when none exists.
func (s *Store) Get(userID uuid.UUID) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, userID)
		return nil
	}
	return e.draft.clone()
}

// Put stores a copy of the draft and refreshes its expiry.
func (s *Store) Put(draft *Draft) {
	if draft == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[draft.UserID] = &entry{
		draft:     draft.clone(),
		expiresAt: s.now().Add(s.ttl),
	}
}

// Delete removes the user's draft if present.
func (s *Store) Delete(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len reports how many live drafts the store holds.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep drops every expired draft and returns how many were removed.
func (s *Store) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for userID, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, userID)
			removed++
		}
	}
	return removed
}

// RunSweeper blocks until the context is done, dropping expired drafts on
// the given interval.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, logg *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sweep(); removed > 0 && logg != nil {
				logg.Info(logg.WithField(ctx, "removed", removed), "swept expired wizard drafts")
			}
		}
	}
}
