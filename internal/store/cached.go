package store

import (
	"context"
	"log/slog"

	"github.com/i474232898/wine-insight/internal/observability"
	"github.com/i474232898/wine-insight/internal/weather"
)

// CachedSource wraps a weather.DailySource with a MemoryStore. Only complete,
// non-empty series are cached; errors always pass through uncached.
type CachedSource struct {
	inner   weather.DailySource
	store   *MemoryStore
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedSource returns a caching decorator for inner. metrics may be nil.
func NewCachedSource(inner weather.DailySource, store *MemoryStore, metrics *observability.Metrics, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{inner: inner, store: store, metrics: metrics, logger: logger}
}

// FetchDaily implements weather.DailySource.
func (c *CachedSource) FetchDaily(ctx context.Context, req weather.DailyRequest) (weather.DailySeries, error) {
	if series, err := c.store.Get(req); err == nil {
		c.metrics.ObserveCache(true)
		c.logger.Debug("series cache hit", "key", req.Key())
		return series, nil
	}
	c.metrics.ObserveCache(false)

	series, err := c.inner.FetchDaily(ctx, req)
	if err != nil {
		return weather.DailySeries{}, err
	}

	if series.Complete() && len(series.Time) > 0 {
		c.store.Put(req, series)
	}
	return series, nil
}
