// Package tokenreg tracks the tokens the directory has issued and not yet
// revoked. Remote token validation consults this registry so that a signed
// token stops being accepted the moment its holder signs out.
package tokenreg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aegis/internal/sentinel"
	id "aegis/pkg/domain"
)

// Entry records one issued token by JTI.
type Entry struct {
	JTI       string
	UserID    id.UserID
	ExpiresAt time.Time
	Revoked   bool
}

// InMemoryRegistry is an in-memory issued-token registry. Expired entries are
// swept by the cleanup worker, not by the registry itself.
type InMemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]*Entry // jti -> entry
}

// New constructs an empty registry.
func New() *InMemoryRegistry {
	return &InMemoryRegistry{entries: make(map[string]*Entry)}
}

// Register records a freshly issued token.
func (r *InMemoryRegistry) Register(_ context.Context, jti string, userID id.UserID, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[jti] = &Entry{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

// Revoke marks the token as no longer live. Revoking an unknown or already
// revoked JTI returns ErrNotFound / ErrRevoked so callers can decide how loud
// to be; sign-out treats both as success.
func (r *InMemoryRegistry) Revoke(_ context.Context, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[jti]
	if !ok {
		return fmt.Errorf("token not registered: %w", sentinel.ErrNotFound)
	}
	if entry.Revoked {
		return fmt.Errorf("token already revoked: %w", sentinel.ErrRevoked)
	}
	entry.Revoked = true
	return nil
}

// CheckLive reports whether the token is still accepted: registered, not
// revoked, and not past its expiry at the given instant.
func (r *InMemoryRegistry) CheckLive(_ context.Context, jti string, now time.Time) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[jti]
	if !ok {
		return fmt.Errorf("token not registered: %w", sentinel.ErrNotFound)
	}
	if entry.Revoked {
		return fmt.Errorf("token revoked: %w", sentinel.ErrRevoked)
	}
	if !now.Before(entry.ExpiresAt) {
		return fmt.Errorf("token expired: %w", sentinel.ErrExpired)
	}
	return nil
}

// DeleteExpired removes entries whose expiry has passed as of the given time.
// The time parameter is injected for testability (no hidden time.Now() calls).
func (r *InMemoryRegistry) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for jti, entry := range r.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(r.entries, jti)
			deleted++
		}
	}
	return deleted, nil
}

// CountLive returns the number of live entries at the given instant.
func (r *InMemoryRegistry) CountLive(_ context.Context, now time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live := 0
	for _, entry := range r.entries {
		if !entry.Revoked && now.Before(entry.ExpiresAt) {
			live++
		}
	}
	return live
}
