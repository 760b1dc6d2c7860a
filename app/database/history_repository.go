package database

import (
	"fmt"
)

type HistoryRepositoryImpl struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepositoryImpl {
	return &HistoryRepositoryImpl{db: db}
}

func (r *HistoryRepositoryImpl) RecordRun(run TaskRun) error {
	query := `
		INSERT INTO task_runs (task_type, target, success, detail, duration_ms, ran_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, run.TaskType, run.Target, run.Success, run.Detail, run.DurationMs, run.RanAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record task run: %w", err)
	}

	return nil
}

func (r *HistoryRepositoryImpl) GetStats(limit int) (*Stats, error) {
	stats := &Stats{}

	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0)
		FROM task_runs
	`
	if err := r.db.QueryRow(query).Scan(&stats.TotalRuns, &stats.FailedRuns); err != nil {
		return nil, fmt.Errorf("failed to count task runs: %w", err)
	}

	query = `
		SELECT task_type, target, success, detail, duration_ms, ran_at
		FROM task_runs
		ORDER BY ran_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query task runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var run TaskRun
		if err := rows.Scan(&run.TaskType, &run.Target, &run.Success, &run.Detail, &run.DurationMs, &run.RanAt); err != nil {
			return nil, fmt.Errorf("failed to scan task run: %w", err)
		}
		run.RanAt = run.RanAt.UTC()
		stats.LastRuns = append(stats.LastRuns, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task runs: %w", err)
	}

	return stats, nil
}
