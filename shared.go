package hearth

import (
	"time"

	"go.uber.org/zap"

	"goflare.io/hearth/internal/cache/shared"
)

// Shared is a string-keyed cache kind backed by ristretto. Callers use it
// concurrently without a mailbox, so it offers no ordering between writers. It
// works with Fetch like Cache does.
type Shared[V any] = shared.Cache[V]

// SharedOption configures NewShared.
type SharedOption = shared.Option

// ErrRejected is returned by Shared.Put when ristretto drops the write.
var ErrRejected = shared.ErrRejected

var _ Backend[string, any] = (*Shared[any])(nil)

// NewShared creates a ristretto-backed cache.
func NewShared[V any](opts ...SharedOption) (*Shared[V], error) {
	return shared.New[V](opts...)
}

// WithExpectedKeys sizes a Shared cache's frequency sketch for about n keys.
func WithExpectedKeys(n int64) SharedOption {
	return shared.WithExpectedKeys(n)
}

// WithDefaultTTL sets the ttl a Shared cache uses when Put has none.
func WithDefaultTTL(ttl time.Duration) SharedOption {
	return shared.WithDefaultTTL(ttl)
}

// WithSharedLogger sets the logger of a Shared cache.
func WithSharedLogger(logger *zap.Logger) SharedOption {
	return shared.WithLogger(logger)
}
