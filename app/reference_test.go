package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/preedep/MQUsageViewer/adapters/metrics"
	"github.com/preedep/MQUsageViewer/app"
	"github.com/preedep/MQUsageViewer/domain/usage"
	"github.com/preedep/MQUsageViewer/ports"
)

// fakeStore counts loader invocations and returns canned query results.
type fakeStore struct {
	functions     []string
	systems       map[string][]string
	records       []usage.Record
	points        []usage.Point
	functionCalls int
	systemCalls   int
	err           error
}

func (f *fakeStore) ListFunctions(ctx context.Context) ([]string, error) {
	f.functionCalls++
	return f.functions, f.err
}

func (f *fakeStore) ListSystems(ctx context.Context, mqFunction string) ([]string, error) {
	f.systemCalls++
	return f.systems[mqFunction], f.err
}

func (f *fakeStore) Query(ctx context.Context, _ usage.Filter) ([]usage.Record, error) {
	return f.records, f.err
}

func (f *fakeStore) AggregateByTimestamp(ctx context.Context, _ usage.Filter) ([]usage.Point, error) {
	return f.points, f.err
}

func (f *fakeStore) AggregateAllByTimestamp(ctx context.Context, _, _ time.Time) ([]usage.Point, error) {
	return f.points, f.err
}

// fakeCache is an in-memory ports.Cache with switchable failures.
type fakeCache struct {
	entries   map[string]string
	getErr    error
	setErr    error
	setCalls  int
	lastKey   string
	lastValue string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.entries[key]
	if !ok {
		return "", ports.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string) error {
	c.setCalls++
	c.lastKey, c.lastValue = key, value
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func newReference(store ports.UsageStore, cache ports.Cache) *app.ReferenceService {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	return app.NewReferenceService(store, cache, m, zerolog.Nop())
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFunctions_CacheHitShortCircuits(t *testing.T) {
	store := &fakeStore{functions: []string{"FROM_STORE"}}
	cache := newFakeCache()
	cache.entries["mq:functions"] = `["FROM_CACHE"]`

	svc := newReference(store, cache)

	got, err := svc.Functions(context.Background())
	if err != nil {
		t.Fatalf("functions: %v", err)
	}
	if !equalStrings(got, []string{"FROM_CACHE"}) {
		t.Errorf("got %v, want cached value", got)
	}
	if store.functionCalls != 0 {
		t.Errorf("loader called %d times on a hit, want 0", store.functionCalls)
	}
}

func TestFunctions_MissFallsThroughAndWritesOnce(t *testing.T) {
	store := &fakeStore{functions: []string{"A", "B"}}
	cache := newFakeCache()

	svc := newReference(store, cache)

	got, err := svc.Functions(context.Background())
	if err != nil {
		t.Fatalf("functions: %v", err)
	}
	if !equalStrings(got, []string{"A", "B"}) {
		t.Errorf("got %v, want loader value", got)
	}
	if store.functionCalls != 1 {
		t.Errorf("loader called %d times, want 1", store.functionCalls)
	}
	if cache.setCalls != 1 {
		t.Errorf("cache writes = %d, want exactly 1", cache.setCalls)
	}
	if cache.lastKey != "mq:functions" || cache.lastValue != `["A","B"]` {
		t.Errorf("cached %q=%q, want mq:functions=[\"A\",\"B\"]", cache.lastKey, cache.lastValue)
	}
}

func TestFunctions_WriteFailureDoesNotAlterResult(t *testing.T) {
	store := &fakeStore{functions: []string{"A"}}
	cache := newFakeCache()
	cache.setErr = errors.New("redis down")

	svc := newReference(store, cache)

	got, err := svc.Functions(context.Background())
	if err != nil {
		t.Fatalf("functions: %v", err)
	}
	if !equalStrings(got, []string{"A"}) {
		t.Errorf("got %v despite write failure, want loader value", got)
	}
	if cache.setCalls != 1 {
		t.Errorf("cache writes = %d, want exactly 1 attempt", cache.setCalls)
	}
}

func TestFunctions_CacheUnreachableFallsThrough(t *testing.T) {
	store := &fakeStore{functions: []string{"A"}}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")

	svc := newReference(store, cache)

	got, err := svc.Functions(context.Background())
	if err != nil {
		t.Fatalf("functions: %v", err)
	}
	if !equalStrings(got, []string{"A"}) {
		t.Errorf("got %v, want loader value", got)
	}
}

func TestFunctions_CorruptEntryFallsThrough(t *testing.T) {
	store := &fakeStore{functions: []string{"A"}}
	cache := newFakeCache()
	cache.entries["mq:functions"] = `{not json array`

	svc := newReference(store, cache)

	got, err := svc.Functions(context.Background())
	if err != nil {
		t.Fatalf("functions: %v", err)
	}
	if !equalStrings(got, []string{"A"}) {
		t.Errorf("got %v, want loader value", got)
	}
	if store.functionCalls != 1 {
		t.Errorf("loader called %d times, want 1", store.functionCalls)
	}
}

func TestFunctions_NoCacheConfigured(t *testing.T) {
	store := &fakeStore{functions: []string{"A"}}

	svc := newReference(store, nil)

	got, err := svc.Functions(context.Background())
	if err != nil {
		t.Fatalf("functions: %v", err)
	}
	if !equalStrings(got, []string{"A"}) {
		t.Errorf("got %v, want loader value", got)
	}
}

func TestFunctions_LoaderErrorPropagates(t *testing.T) {
	storeErr := errors.New("query failed")
	store := &fakeStore{err: storeErr}
	cache := newFakeCache()

	svc := newReference(store, cache)

	if _, err := svc.Functions(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want store error", err)
	}
	if cache.setCalls != 0 {
		t.Errorf("cache written after loader failure, writes = %d", cache.setCalls)
	}
}

func TestSystems_MetricsLabeledByListNotKey(t *testing.T) {
	store := &fakeStore{systems: map[string][]string{"F1": {"S"}, "F2": {"S"}}}
	cache := newFakeCache()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := app.NewReferenceService(store, cache, m, zerolog.Nop())

	// First call per function misses, second hits; both functions must land
	// on the single "systems" series.
	for _, fn := range []string{"F1", "F2"} {
		for i := 0; i < 2; i++ {
			if _, err := svc.Systems(context.Background(), fn); err != nil {
				t.Fatalf("systems(%s): %v", fn, err)
			}
		}
	}

	if got := testutil.ToFloat64(m.CacheHits.WithLabelValues("systems")); got != 2 {
		t.Errorf("cache_hits{list=systems} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMisses.WithLabelValues("systems")); got != 2 {
		t.Errorf("cache_misses{list=systems} = %v, want 2", got)
	}
}

func TestSystems_KeyPerFunction(t *testing.T) {
	store := &fakeStore{systems: map[string][]string{"F": {"SYS1"}}}
	cache := newFakeCache()

	svc := newReference(store, cache)

	got, err := svc.Systems(context.Background(), "F")
	if err != nil {
		t.Fatalf("systems: %v", err)
	}
	if !equalStrings(got, []string{"SYS1"}) {
		t.Errorf("got %v, want [SYS1]", got)
	}
	if cache.lastKey != "mq:systems:F" {
		t.Errorf("cache key = %q, want mq:systems:F", cache.lastKey)
	}
}
