package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// recentPayloads bounds how many distinct payloads the cooldown remembers.
const recentPayloads = 256

// Cooldown suppresses repeated reads of the same payload, as produced by a
// camera holding a code in view.
type Cooldown struct {
	seen *expirable.LRU[string, struct{}]
}

// NewCooldown returns a Cooldown with the given window. A non-positive
// window disables it.
func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		return &Cooldown{}
	}
	return &Cooldown{seen: expirable.NewLRU[string, struct{}](recentPayloads, nil, window)}
}

// Allow reports whether raw may be processed now and starts its window.
func (c *Cooldown) Allow(raw string) bool {
	if c.seen == nil {
		return true
	}
	if _, ok := c.seen.Get(raw); ok {
		return false
	}
	c.seen.Add(raw, struct{}{})
	return true
}

// Forget ends the window of raw so it can be processed again immediately.
func (c *Cooldown) Forget(raw string) {
	if c.seen != nil {
		c.seen.Remove(raw)
	}
}
