package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength bounds the length of a key accepted by ValidateKey.
const MaxKeyLength = 512

var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
	ErrNilTarget  = errors.New("cache: decode target is nil")
)

// Cache stores opaque payloads by key. Every backend keeps the time an
// entry was written and treats entries older than its max age as absent.
// Get reports backend failures as misses. Set on an existing key replaces
// the payload and restarts its age. Delete of a missing key is not an
// error. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by backends that keep expired rows until asked to
// drop them. Sweep returns the number of entries removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// ValidateKey rejects blank keys, keys longer than MaxKeyLength and keys
// spanning more than one line.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "", strings.ContainsAny(key, "\r\n"):
		return ErrInvalidKey
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	}
	return nil
}
