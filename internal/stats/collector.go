// Package stats implements the operation counters owned by a cache actor.
//
// A Collector has no synchronization of its own. It must only be touched from
// the goroutine that owns the cache it describes.
package stats

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"goflare.io/hearth/internal/models"
)

const (
	MetricHits    = "hearth.cache.hits"
	MetricMisses  = "hearth.cache.misses"
	MetricPuts    = "hearth.cache.puts"
	MetricDeletes = "hearth.cache.deletes"
	MetricExpired = "hearth.cache.expired"
)

// Collector counts hits, misses, puts and deletes. TotalOperations moves in
// lockstep with the other four counters.
//
// Every increment is mirrored to an OpenTelemetry counter. Those instruments are
// cumulative and are not rewound by Reset.
type Collector struct {
	stats models.Stats

	hits    metric.Int64Counter
	misses  metric.Int64Counter
	puts    metric.Int64Counter
	deletes metric.Int64Counter
	expired metric.Int64Counter
	attrs   metric.MeasurementOption
}

// NewCollector 創建計數器並在 meter 上註冊對應的指標
func NewCollector(meter metric.Meter, cacheName string) (*Collector, error) {
	c := &Collector{
		attrs: metric.WithAttributeSet(attribute.NewSet(attribute.String("cache", cacheName))),
	}

	var err error
	if c.hits, err = meter.Int64Counter(MetricHits,
		metric.WithDescription("Reads that returned a live entry"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricHits, err)
	}
	if c.misses, err = meter.Int64Counter(MetricMisses,
		metric.WithDescription("Reads that found no entry or an expired one"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricMisses, err)
	}
	if c.puts, err = meter.Int64Counter(MetricPuts,
		metric.WithDescription("Entries written"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricPuts, err)
	}
	if c.deletes, err = meter.Int64Counter(MetricDeletes,
		metric.WithDescription("Delete requests, whether or not the key existed"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricDeletes, err)
	}
	if c.expired, err = meter.Int64Counter(MetricExpired,
		metric.WithDescription("Entries removed by the expiry sweep"),
		metric.WithUnit("{entry}")); err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricExpired, err)
	}

	return c, nil
}

// Hit records a successful read.
func (c *Collector) Hit(ctx context.Context) {
	c.stats.Hits++
	c.stats.TotalOperations++
	c.hits.Add(ctx, 1, c.attrs)
}

// Miss records a read of a missing or stale key.
func (c *Collector) Miss(ctx context.Context) {
	c.stats.Misses++
	c.stats.TotalOperations++
	c.misses.Add(ctx, 1, c.attrs)
}

// Put records a write.
func (c *Collector) Put(ctx context.Context) {
	c.stats.Puts++
	c.stats.TotalOperations++
	c.puts.Add(ctx, 1, c.attrs)
}

// Delete records a delete request.
func (c *Collector) Delete(ctx context.Context) {
	c.stats.Deletes++
	c.stats.TotalOperations++
	c.deletes.Add(ctx, 1, c.attrs)
}

// Expired records entries removed by a sweep. It does not touch the operation
// counters.
func (c *Collector) Expired(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	c.expired.Add(ctx, int64(n), c.attrs)
}

// Reset zeroes every counter.
func (c *Collector) Reset() {
	c.stats = models.Stats{}
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() models.Stats {
	return c.stats
}
