package database

type HistoryRepository interface {
	RecordRun(run TaskRun) error
	GetStats(limit int) (*Stats, error)
}
