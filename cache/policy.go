package cache

import "time"

// DefaultMaxAge is how long an entry stays readable when no policy is given.
const DefaultMaxAge = 7200 * time.Second

// Policy configures entry lifetime.
type Policy struct {
	// MaxAge is how long an entry stays readable after it was last written.
	// If zero, caching is disabled.
	MaxAge time.Duration
}

// DefaultPolicy returns the default caching policy (MaxAge: 2 hours).
func DefaultPolicy() Policy {
	return Policy{MaxAge: DefaultMaxAge}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.MaxAge > 0
}

// Cutoff returns the Unix second before which entries written are expired.
func (p Policy) Cutoff(now time.Time) int64 {
	return now.Unix() - int64(p.MaxAge/time.Second)
}

// Expired reports whether an entry created at createdAt (Unix seconds) is
// past its max age at now.
func (p Policy) Expired(createdAt int64, now time.Time) bool {
	return createdAt < p.Cutoff(now)
}
