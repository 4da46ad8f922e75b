package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"goflare.io/hearth"
)

const (
	backendActor  = "actor"
	backendShared = "shared"
)

// report is what every command prints. Fields are exported for the gob and
// JSON encoders.
type report struct {
	Command      string        `json:"command"`
	Cache        string        `json:"cache,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	Workers      int           `json:"workers,omitempty"`
	Operations   int           `json:"operations,omitempty"`
	FallbackRuns int           `json:"fallback_runs,omitempty"`
	Stats        *hearth.Stats `json:"stats,omitempty"`
	Notes        []string      `json:"notes,omitempty"`
}

func (r report) String() string {
	var b strings.Builder
	b.WriteString(r.Command)
	if r.Cache != "" {
		fmt.Fprintf(&b, " [%s]", r.Cache)
	}
	fmt.Fprintf(&b, " finished in %s\n", r.Elapsed.Round(time.Microsecond))
	if r.Workers > 0 {
		fmt.Fprintf(&b, "  workers:       %d\n", r.Workers)
	}
	if r.Operations > 0 {
		fmt.Fprintf(&b, "  operations:    %d\n", r.Operations)
	}
	if r.FallbackRuns > 0 {
		fmt.Fprintf(&b, "  fallback runs: %d\n", r.FallbackRuns)
	}
	if s := r.Stats; s != nil {
		fmt.Fprintf(&b, "  hits=%d misses=%d puts=%d deletes=%d total=%d hit_ratio=%.3f\n",
			s.Hits, s.Misses, s.Puts, s.Deletes, s.TotalOperations, s.HitRatio())
	}
	for _, note := range r.Notes {
		fmt.Fprintf(&b, "  %s\n", note)
	}
	return b.String()
}

// runDemo stores "a" forever and "b" with ttl, waits past ttl, reads "a",
// sweeps, then reads "b".
func runDemo(ctx context.Context, e *env, ttlArg string) (report, error) {
	start := time.Now()
	ttl := hearth.NormalizeTTL(ttlArg)

	c, err := hearth.New[string, int](e.opts...)
	if err != nil {
		return report{}, err
	}
	defer func() { _ = c.Close() }()

	rep := report{Command: "demo", Cache: c.Name()}
	if err := c.Put(ctx, "a", 1); err != nil {
		return report{}, err
	}
	if err := c.Put(ctx, "b", 2, ttl); err != nil {
		return report{}, err
	}

	if ttl != hearth.Infinite {
		wait := ttl + 10*time.Millisecond
		e.logger.Debug("Waiting for entry to expire", zap.Duration("ttl", ttl), zap.Duration("wait", wait))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return report{}, ctx.Err()
		}
	}

	if err := demoGet(ctx, c, "a", &rep); err != nil {
		return report{}, err
	}

	removed, err := c.CleanupExpired(ctx)
	if err != nil {
		return report{}, err
	}
	rep.Notes = append(rep.Notes, fmt.Sprintf("cleanup_expired removed %d", removed))

	if err := demoGet(ctx, c, "b", &rep); err != nil {
		return report{}, err
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		return report{}, err
	}
	rep.Stats = &stats
	rep.Elapsed = time.Since(start)
	return rep, nil
}

func demoGet(ctx context.Context, c *hearth.Cache[string, int], key string, rep *report) error {
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		rep.Notes = append(rep.Notes, fmt.Sprintf("get %s = %d", key, v))
	} else {
		rep.Notes = append(rep.Notes, fmt.Sprintf("get %s: not found", key))
	}
	return nil
}

type benchParams struct {
	Workers int
	Keys    int
	TTL     string
}

// runBench has every worker put and read back its own keys.
func runBench(ctx context.Context, e *env, p benchParams) (report, error) {
	if p.Workers <= 0 || p.Keys <= 0 {
		return report{}, fmt.Errorf("workers and keys must be positive, got %d and %d", p.Workers, p.Keys)
	}
	ttl := hearth.NormalizeTTL(p.TTL)

	c, err := hearth.New[string, int](e.opts...)
	if err != nil {
		return report{}, err
	}
	defer func() { _ = c.Close() }()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := range p.Workers {
		g.Go(func() error {
			for i := range p.Keys {
				key := fmt.Sprintf("w%d-k%d", w, i)
				if err := c.Put(gctx, key, i, ttl); err != nil {
					return err
				}
				v, ok, err := c.Get(gctx, key)
				if err != nil {
					return err
				}
				if ok && v != i {
					return fmt.Errorf("key %s: read %d after writing %d", key, v, i)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report{}, err
	}
	elapsed := time.Since(start)

	stats, err := c.Stats(ctx)
	if err != nil {
		return report{}, err
	}
	e.logger.Debug("Bench finished", zap.Int("workers", p.Workers), zap.Duration("elapsed", elapsed))

	return report{
		Command:    "bench",
		Cache:      c.Name(),
		Elapsed:    elapsed,
		Workers:    p.Workers,
		Operations: 2 * p.Workers * p.Keys,
		Stats:      &stats,
	}, nil
}

type fetchParams struct {
	Workers int
	Backend string
	Latency time.Duration
	TTL     string
}

// runFetch starts every worker on the same missing key. Fetch does not
// de-duplicate, so the fallback usually runs once per worker.
func runFetch(ctx context.Context, e *env, p fetchParams) (report, error) {
	if p.Workers <= 0 {
		return report{}, fmt.Errorf("workers must be positive, got %d", p.Workers)
	}
	ttl := hearth.NormalizeTTL(p.TTL)

	var (
		backend hearth.Backend[string, int]
		stats   func(context.Context) (*hearth.Stats, error)
		name    string
	)
	switch p.Backend {
	case backendActor:
		c, err := hearth.New[string, int](e.opts...)
		if err != nil {
			return report{}, err
		}
		defer func() { _ = c.Close() }()
		backend, name = c, c.Name()
		stats = func(ctx context.Context) (*hearth.Stats, error) {
			s, err := c.Stats(ctx)
			return &s, err
		}
	case backendShared:
		s, err := hearth.NewShared[int](hearth.WithSharedLogger(e.logger))
		if err != nil {
			return report{}, err
		}
		defer func() { _ = s.Close() }()
		backend, name = s, backendShared
	default:
		return report{}, fmt.Errorf("unknown backend %q, want %s or %s", p.Backend, backendActor, backendShared)
	}

	runs := atomic.NewInt64(0)
	fallback := func(ctx context.Context, key string) (hearth.Result[int], error) {
		n := runs.Inc()
		select {
		case <-time.After(p.Latency):
		case <-ctx.Done():
			return hearth.Result[int]{}, ctx.Err()
		}
		e.logger.Debug("Fallback computed value", zap.String("key", key), zap.Int64("run", n))
		return hearth.Commit(int(n)), nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for range p.Workers {
		g.Go(func() error {
			_, err := hearth.Fetch[string, int](gctx, backend, "hot", fallback, ttl)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return report{}, err
	}

	rep := report{
		Command:      "fetch",
		Cache:        name,
		Elapsed:      time.Since(start),
		Workers:      p.Workers,
		FallbackRuns: int(runs.Load()),
	}

	stored, ok, err := backend.Get(ctx, "hot")
	if err != nil {
		return report{}, err
	}
	if ok {
		rep.Notes = append(rep.Notes, fmt.Sprintf("stored value comes from fallback run %d", stored))
	}
	if stats != nil {
		if rep.Stats, err = stats(ctx); err != nil {
			return report{}, err
		}
	}
	return rep, nil
}
