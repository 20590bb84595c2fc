// Package credstore persists the session's bearer credential across restarts.
// Two retention tiers exist: a durable "remember me" tier and an ephemeral
// default tier. At most one tier is written per login, but stale entries in
// the other tier must be tolerated, so reads follow a fixed precedence and
// clears always wipe both tiers.
package credstore

import (
	"strconv"
	"time"
)

// Tier selects the retention class for a stored credential.
type Tier string

const (
	// TierDurable survives restarts and retains entries for seven days.
	TierDurable Tier = "durable"
	// TierEphemeral is the default tier with 24 hour retention.
	TierEphemeral Tier = "ephemeral"
)

// Retention periods per tier.
const (
	DurableRetention   = 7 * 24 * time.Hour
	EphemeralRetention = 24 * time.Hour
)

// Storage keys for the credential pair.
const (
	tokenKey  = "auth_token"
	expiryKey = "token_expiry"
)

// Store is the raw two-tier key-value contract.
type Store interface {
	Get(key string, tier Tier) (string, bool)
	Set(key, value string, tier Tier)
	Remove(key string, tier Tier)
}

// Credential is a token paired with its absolute expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// ExpiredAt reports whether the credential is expired at the given instant.
// A credential expiring exactly now counts as expired.
func (c Credential) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Credentials wraps a Store with the token/expiry pairing rules. The token
// and its expiry are always read from the same tier, durable tier first.
type Credentials struct {
	store Store
}

func NewCredentials(store Store) *Credentials {
	return &Credentials{store: store}
}

// Save writes the credential into the chosen tier. The other tier is left
// alone; Load's precedence and Clear's double wipe make stale entries inert.
func (c *Credentials) Save(token string, expiresAt time.Time, tier Tier) {
	c.store.Set(tokenKey, token, tier)
	c.store.Set(expiryKey, strconv.FormatInt(expiresAt.UnixMilli(), 10), tier)
}

// Load resolves the stored credential, durable tier first. Both the token and
// the expiry must come from the winning tier; a tier holding a token with a
// missing or unparseable expiry is skipped entirely.
func (c *Credentials) Load() (Credential, bool) {
	for _, tier := range []Tier{TierDurable, TierEphemeral} {
		token, ok := c.store.Get(tokenKey, tier)
		if !ok || token == "" {
			continue
		}
		rawExpiry, ok := c.store.Get(expiryKey, tier)
		if !ok {
			continue
		}
		millis, err := strconv.ParseInt(rawExpiry, 10, 64)
		if err != nil {
			continue
		}
		return Credential{Token: token, ExpiresAt: time.UnixMilli(millis)}, true
	}
	return Credential{}, false
}

// Clear removes the credential pair from both tiers unconditionally.
func (c *Credentials) Clear() {
	for _, tier := range []Tier{TierDurable, TierEphemeral} {
		c.store.Remove(tokenKey, tier)
		c.store.Remove(expiryKey, tier)
	}
}
