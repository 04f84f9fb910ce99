package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"cyclicexec/apperror"
	"cyclicexec/harness"
)

// ResultStore persists harness.RunMetrics to the schedule_runs table,
// implementing harness.ResultSink so a caller can swap it in for
// harness.MemorySink without touching RunAll. One method per repository
// operation; errors are wrapped as apperror so callers see the same
// taxonomy as the rest of the core.
type ResultStore struct {
	db DB
}

// NewResultStore wraps db for recording and querying run metrics.
func NewResultStore(db DB) *ResultStore {
	return &ResultStore{db: db}
}

// Record inserts one RunMetrics row, satisfying harness.ResultSink.
func (s *ResultStore) Record(ctx context.Context, result harness.RunMetrics) error {
	var errCode, errMessage any
	if result.Err != nil {
		var appErr *apperror.Error
		if errors.As(result.Err, &appErr) {
			errCode, errMessage = string(appErr.Code), appErr.Message
		} else {
			errMessage = result.Err.Error()
		}
	}

	const query = `
		INSERT INTO schedule_runs (
			id, scheduler, n_tasks, utilization, success,
			total_time_ms, error_code, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(ctx, query,
		result.RunID,
		string(result.Scheduler),
		result.NTasks,
		result.Utilization,
		result.Success,
		float64(result.TotalTime.Microseconds())/1000.0,
		errCode,
		errMessage,
	)
	if err != nil {
		return apperror.Wrap(apperror.CodeStoreUnavailable, err, "store: record run metrics")
	}
	return nil
}

// RunRecord is one row read back from schedule_runs.
type RunRecord struct {
	RunID       string
	Scheduler   string
	NTasks      int
	Utilization float64
	Success     bool
	TotalTimeMs float64
	ErrorCode   string
}

// RecentBySolver returns up to limit most recent runs for scheduler, newest
// first — the query a caller aggregating harness results across many runs
// builds on.
func (s *ResultStore) RecentBySolver(ctx context.Context, scheduler string, limit int) ([]RunRecord, error) {
	const query = `
		SELECT id, scheduler, n_tasks, utilization, success, total_time_ms,
		       COALESCE(error_code, '')
		FROM schedule_runs
		WHERE scheduler = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, scheduler, limit)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeStoreUnavailable, err, "store: query recent runs")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Scheduler, &r.NTasks, &r.Utilization, &r.Success, &r.TotalTimeMs, &r.ErrorCode); err != nil {
			return nil, apperror.Wrap(apperror.CodeStoreUnavailable, err, "store: scan run record")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.CodeStoreUnavailable, err, "store: iterate run records")
	}
	return out, nil
}

// SuccessRate computes the fraction of recorded runs for scheduler that
// succeeded, or (0, false) if no runs are recorded.
func (s *ResultStore) SuccessRate(ctx context.Context, scheduler string) (float64, bool, error) {
	const query = `
		SELECT COUNT(*) FILTER (WHERE success), COUNT(*)
		FROM schedule_runs
		WHERE scheduler = $1
	`

	var successCount, total int64
	err := s.db.QueryRow(ctx, query, scheduler).Scan(&successCount, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, apperror.Wrap(apperror.CodeStoreUnavailable, err, "store: compute success rate")
	}
	if total == 0 {
		return 0, false, nil
	}
	return float64(successCount) / float64(total), true, nil
}
