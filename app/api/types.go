package api

import (
	"context"

	"github.com/calcomb/cal-comb/app/calendar"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/database"
	"github.com/calcomb/cal-comb/app/ical"
)

type ProcessorInterface interface {
	Run(ctx context.Context, name string, useCache bool) (*ical.Calendar, error)
}

var _ ProcessorInterface = (*calendar.Processor)(nil)

type Handler struct {
	processor   ProcessorInterface
	resolver    *config.Loader
	historyRepo database.HistoryRepository
}
