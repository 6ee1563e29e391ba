// Package app contains the application services between HTTP handlers and
// the storage/cache adapters.
package app

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/preedep/MQUsageViewer/adapters/metrics"
	"github.com/preedep/MQUsageViewer/ports"
)

// Cache keys for the reference lists.
const (
	keyFunctions     = "mq:functions"
	keySystemsPrefix = "mq:systems:"
)

// ReferenceService serves the slowly-changing reference lists (distinct
// function names, distinct system names) cache-aside: cache hit wins, any
// cache trouble falls through to the store, and the result is written back
// best-effort. The store stays the source of truth; a dead cache only costs
// latency, never availability.
type ReferenceService struct {
	store   ports.UsageStore
	cache   ports.Cache // nil when no cache is configured
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// NewReferenceService creates a reference service. cache may be nil.
func NewReferenceService(store ports.UsageStore, cache ports.Cache, m *metrics.Collector, logger zerolog.Logger) *ReferenceService {
	return &ReferenceService{
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// Functions returns distinct mq_function values, sorted ascending.
func (s *ReferenceService) Functions(ctx context.Context) ([]string, error) {
	return s.getOrLoad(ctx, keyFunctions, "functions", func() ([]string, error) {
		return s.store.ListFunctions(ctx)
	})
}

// Systems returns distinct system_name values for a function, sorted
// ascending.
func (s *ReferenceService) Systems(ctx context.Context, mqFunction string) ([]string, error) {
	return s.getOrLoad(ctx, keySystemsPrefix+mqFunction, "systems", func() ([]string, error) {
		return s.store.ListSystems(ctx, mqFunction)
	})
}

// getOrLoad implements the cache-aside read path. A hit short-circuits the
// loader entirely. Misses, unreachable cache, and unparseable entries all
// fall through to the loader; the loader result is then written back with
// no TTL. A failed write is logged and otherwise ignored. Metrics are
// labeled by list, not key, so per-function keys never fan out into new
// series.
func (s *ReferenceService) getOrLoad(ctx context.Context, key, list string, loader func() ([]string, error)) ([]string, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var names []string
			if jsonErr := json.Unmarshal([]byte(cached), &names); jsonErr == nil {
				s.metrics.CacheHits.WithLabelValues(list).Inc()
				s.logger.Debug().Str("key", key).Msg("reference cache hit")
				return names, nil
			}
			s.logger.Error().Str("key", key).Msg("reference cache entry is not a JSON string array")
		} else if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.Error().Err(err).Str("key", key).Msg("reference cache unavailable, continuing without it")
		}
		s.metrics.CacheMisses.WithLabelValues(list).Inc()
	}

	names, err := loader()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		encoded, err := json.Marshal(names)
		if err == nil {
			err = s.cache.Set(ctx, key, string(encoded))
		}
		if err != nil {
			s.metrics.CacheWriteErrors.Inc()
			s.logger.Error().Err(err).Str("key", key).Msg("reference cache write failed")
		}
	}

	return names, nil
}
