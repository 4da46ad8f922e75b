package hearth

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Infinite marks an entry that never expires.
const Infinite time.Duration = 0

// resolveTTL picks the first ttl, falling back to Infinite. Non-positive
// values also mean Infinite.
func resolveTTL(ttl ...time.Duration) time.Duration {
	if len(ttl) == 0 || ttl[0] <= 0 {
		return Infinite
	}
	return ttl[0]
}

// NormalizeTTL converts a loosely typed TTL into a duration.
//
// Durations are used as is. Integers and floats are milliseconds. Strings are
// either a number of milliseconds or a Go duration such as "1m30s". Anything
// else, and any value that is not positive, yields Infinite.
func NormalizeTTL(v any) time.Duration {
	var d time.Duration
	switch t := v.(type) {
	case time.Duration:
		d = t
	case int:
		d = millis(int64(t))
	case int32:
		d = millis(int64(t))
	case int64:
		d = millis(t)
	case uint:
		d = millisUnsigned(uint64(t))
	case uint32:
		d = millis(int64(t))
	case uint64:
		d = millisUnsigned(t)
	case float32:
		d = millisFloat(float64(t))
	case float64:
		d = millisFloat(t)
	case string:
		d = parseTTL(strings.TrimSpace(t))
	default:
		return Infinite
	}

	if d <= 0 {
		return Infinite
	}
	return d
}

func parseTTL(s string) time.Duration {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return millis(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return millisFloat(f)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return Infinite
}

func millis(n int64) time.Duration {
	if n <= 0 {
		return Infinite
	}
	if n > math.MaxInt64/int64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(n) * time.Millisecond
}

func millisUnsigned(n uint64) time.Duration {
	if n > math.MaxInt64/uint64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(n) * time.Millisecond
}

func millisFloat(f float64) time.Duration {
	if math.IsNaN(f) || f <= 0 {
		return Infinite
	}
	ns := f * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
