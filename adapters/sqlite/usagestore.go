package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/preedep/MQUsageViewer/domain/usage"
	"github.com/preedep/MQUsageViewer/ports"
)

// ErrQueryFailed wraps any storage-layer execution error.
var ErrQueryFailed = errors.New("usage query failed")

// ErrDecode wraps a row that could not be mapped to a usage.Record.
var ErrDecode = errors.New("decode usage row")

// timeFormat is how timestamps are rendered for SQLite comparison.
// Timestamps are stored and compared in UTC.
const timeFormat = "2006-01-02 15:04:05"

// Canonical column order for all selects against mqdata. Rows are scanned
// by this fixed position everywhere; never reorder.
const recordColumns = "date_time, date, minute, system_name, mq_function, work_total, trans_per_sec"

// UsageStore implements ports.UsageStore using SQLite.
type UsageStore struct {
	db *DB
}

// NewUsageStore creates a new SQLite usage store.
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db}
}

// filterClause builds the WHERE clause for a usage.Filter. Each optional
// predicate contributes a (clause, bound value) pair in lockstep, so the
// placeholder order can never drift from the argument order. Filter values
// are only ever bound parameters; identifiers are compile-time constants.
func filterClause(f usage.Filter) (string, []interface{}) {
	clauses := []string{"mq_function = ?"}
	args := []interface{}{f.MQFunction}

	if f.HasSystem() {
		clauses = append(clauses, "system_name = ?")
		args = append(args, f.SystemName)
	}
	if f.HasRange() {
		clauses = append(clauses, "datetime(date_time) >= datetime(?)", "datetime(date_time) <= datetime(?)")
		args = append(args, f.From.UTC().Format(timeFormat), f.To.UTC().Format(timeFormat))
	}

	return strings.Join(clauses, " AND "), args
}

// ListFunctions returns distinct mq_function values, sorted ascending.
func (s *UsageStore) ListFunctions(ctx context.Context) ([]string, error) {
	return s.listDistinct(ctx, "SELECT DISTINCT mq_function FROM mqdata ORDER BY mq_function ASC")
}

// ListSystems returns distinct system_name values for a function, sorted
// ascending.
func (s *UsageStore) ListSystems(ctx context.Context, mqFunction string) ([]string, error) {
	return s.listDistinct(ctx,
		"SELECT DISTINCT system_name FROM mqdata WHERE mq_function = ? ORDER BY system_name ASC",
		mqFunction)
}

func (s *UsageStore) listDistinct(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	return names, nil
}

// Query returns raw records matching the filter. Row order is
// storage-determined.
func (s *UsageStore) Query(ctx context.Context, f usage.Filter) ([]usage.Record, error) {
	where, args := filterClause(f)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM mqdata WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var r usage.Record
		err := rows.Scan(
			&r.Timestamp, &r.Date, &r.Minute, &r.SystemName,
			&r.MQFunction, &r.WorkTotal, &r.TransPerSec,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	return records, nil
}

// AggregateByTimestamp groups matching records by exact timestamp and sums
// trans_per_sec within each group, ascending by timestamp.
func (s *UsageStore) AggregateByTimestamp(ctx context.Context, f usage.Filter) ([]usage.Point, error) {
	where, args := filterClause(f)

	return s.aggregate(ctx, `
		SELECT date_time, SUM(trans_per_sec)
		FROM mqdata
		WHERE `+where+`
		GROUP BY date_time
		ORDER BY date_time ASC
	`, args...)
}

// AggregateAllByTimestamp aggregates across every function, constrained
// only by the time range.
func (s *UsageStore) AggregateAllByTimestamp(ctx context.Context, from, to time.Time) ([]usage.Point, error) {
	return s.aggregate(ctx, `
		SELECT date_time, SUM(trans_per_sec)
		FROM mqdata
		WHERE datetime(date_time) >= datetime(?) AND datetime(date_time) <= datetime(?)
		GROUP BY date_time
		ORDER BY date_time ASC
	`, from.UTC().Format(timeFormat), to.UTC().Format(timeFormat))
}

func (s *UsageStore) aggregate(ctx context.Context, query string, args ...interface{}) ([]usage.Point, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var points []usage.Point
	for rows.Next() {
		var p usage.Point
		if err := rows.Scan(&p.Timestamp, &p.TransPerSec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	return points, nil
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
