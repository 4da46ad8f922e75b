package hearth

import (
	"errors"

	"goflare.io/hearth/internal/cache/actor"
	"goflare.io/hearth/internal/config"
)

var (
	// ErrStopped is returned for operations on a closed cache.
	ErrStopped = actor.ErrStopped
	// ErrTimeout is returned when a synchronous operation gets no answer in
	// time. It is always joined with context.DeadlineExceeded.
	ErrTimeout = actor.ErrTimeout

	// ErrInvalidName is returned when a cache is registered without a name.
	ErrInvalidName = config.ErrEmptyName

	ErrNameTaken   = errors.New("cache name already registered")
	ErrNotFound    = errors.New("cache not registered")
	ErrNilFallback = errors.New("fallback must not be nil")
)
