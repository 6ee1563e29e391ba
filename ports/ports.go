// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/preedep/MQUsageViewer/domain/usage"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// Hasher provides password hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// UsageStore reads MQ throughput records.
type UsageStore interface {
	// ListFunctions returns distinct mq_function values, sorted ascending.
	ListFunctions(ctx context.Context) ([]string, error)

	// ListSystems returns distinct system_name values reporting under the
	// given function, sorted ascending.
	ListSystems(ctx context.Context, mqFunction string) ([]string, error)

	// Query returns raw records matching the filter. Row order is
	// storage-determined.
	Query(ctx context.Context, f usage.Filter) ([]usage.Record, error)

	// AggregateByTimestamp groups matching records by exact timestamp and
	// sums trans_per_sec within each group, ascending by timestamp.
	AggregateByTimestamp(ctx context.Context, f usage.Filter) ([]usage.Point, error)

	// AggregateAllByTimestamp is AggregateByTimestamp across every function,
	// constrained only by the time range.
	AggregateAllByTimestamp(ctx context.Context, from, to time.Time) ([]usage.Point, error)
}

// -----------------------------------------------------------------------------
// Cache Ports
// -----------------------------------------------------------------------------

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is a plain key-value cache for reference data. Entries have no
// expiry; once written they are served until externally evicted.
type Cache interface {
	// Get retrieves the value stored at key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with no TTL.
	Set(ctx context.Context, key, value string) error
}
