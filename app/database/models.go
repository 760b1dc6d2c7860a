package database

import "time"

type TaskRun struct {
	TaskType   string    `json:"task_type"`
	Target     string    `json:"target"`
	Success    bool      `json:"success"`
	Detail     string    `json:"detail,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	RanAt      time.Time `json:"ran_at"`
}

type Stats struct {
	TotalRuns  int       `json:"total_runs"`
	FailedRuns int       `json:"failed_runs"`
	LastRuns   []TaskRun `json:"last_runs"`
}
