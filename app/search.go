package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/preedep/MQUsageViewer/adapters/metrics"
	"github.com/preedep/MQUsageViewer/domain/usage"
	"github.com/preedep/MQUsageViewer/ports"
)

// SearchService runs the throughput queries and aggregations. It adds
// timing and logging around the store; failures propagate unchanged and
// are terminal for the request - no retries.
type SearchService struct {
	store   ports.UsageStore
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(store ports.UsageStore, m *metrics.Collector, logger zerolog.Logger) *SearchService {
	return &SearchService{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Search returns raw records matching the filter.
func (s *SearchService) Search(ctx context.Context, f usage.Filter) ([]usage.Record, error) {
	start := time.Now()
	records, err := s.store.Query(ctx, f)
	s.observe("query", start, err)

	s.logger.Debug().
		Str("mq_function", f.MQFunction).
		Str("system_name", f.SystemName).
		Int("rows", len(records)).
		Msg("usage search")

	return records, err
}

// Summary returns per-timestamp TPS totals for one function.
func (s *SearchService) Summary(ctx context.Context, f usage.Filter) ([]usage.Point, error) {
	start := time.Now()
	points, err := s.store.AggregateByTimestamp(ctx, f)
	s.observe("aggregate", start, err)
	return points, err
}

// AllSummary returns per-timestamp TPS totals across every function.
func (s *SearchService) AllSummary(ctx context.Context, from, to time.Time) ([]usage.Point, error) {
	start := time.Now()
	points, err := s.store.AggregateAllByTimestamp(ctx, from, to)
	s.observe("aggregate_all", start, err)
	return points, err
}

func (s *SearchService) observe(operation string, start time.Time, err error) {
	s.metrics.QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error().Err(err).Str("operation", operation).Msg("usage store query failed")
	}
}
