package credstore

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	storedAt  time.Time
	retention time.Duration
}

// InMemoryStore is a two-tier key-value store enforcing per-tier retention.
// Entries older than their tier's retention window read as absent.
type InMemoryStore struct {
	mu    sync.RWMutex
	tiers map[Tier]map[string]entry
	now   func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		tiers: map[Tier]map[string]entry{
			TierDurable:   {},
			TierEphemeral: {},
		},
		now: time.Now,
	}
}

// WithClock overrides the wall clock used for retention checks.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

func (s *InMemoryStore) Get(key string, tier Tier) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, ok := s.tiers[tier]
	if !ok {
		return "", false
	}
	e, ok := bucket[key]
	if !ok {
		return "", false
	}
	if s.now().Sub(e.storedAt) >= e.retention {
		return "", false
	}
	return e.value, true
}

func (s *InMemoryStore) Set(key, value string, tier Tier) {
	retention := EphemeralRetention
	if tier == TierDurable {
		retention = DurableRetention
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.tiers[tier]
	if !ok {
		return
	}
	bucket[key] = entry{value: value, storedAt: s.now(), retention: retention}
}

func (s *InMemoryStore) Remove(key string, tier Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bucket, ok := s.tiers[tier]; ok {
		delete(bucket, key)
	}
}
