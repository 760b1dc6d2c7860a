package calendar

import (
	"context"
	"log/slog"

	"github.com/calcomb/cal-comb/app/cache"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/ical"
)

// Processor runs the full pipeline for one configuration: resolve, then per
// data entry load, filter and modify, then merge.
type Processor struct {
	resolver *config.Loader
	loader   *Loader
	filterer *Filterer
	modifier *Modifier
	store    *cache.Store
}

func NewProcessor(resolver *config.Loader, loader *Loader, store *cache.Store) *Processor {
	return &Processor{
		resolver: resolver,
		loader:   loader,
		filterer: NewFilterer(),
		modifier: NewModifier(),
		store:    store,
	}
}

// Run produces the merged calendar for a configuration name. When useCache
// is set and a precomputed artifact exists, it is returned directly and the
// pipeline is skipped entirely.
func (p *Processor) Run(ctx context.Context, name string, useCache bool) (*ical.Calendar, error) {
	if useCache {
		data, ok, err := p.store.ReadConfig(name)
		if err == nil && ok {
			cal, err := ical.Decode(data, "")
			if err == nil {
				slog.Debug("Serving precomputed result", "config", name)
				return cal, nil
			}
			slog.Warn("Precomputed artifact unreadable, running pipeline", "config", name, "error", err)
		}
	}

	entries, err := p.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}

	cals := make([]*ical.Calendar, 0, len(entries))
	for _, entry := range entries {
		cal, err := p.loader.Run(ctx, entry)
		if err != nil {
			return nil, err
		}

		if entry.Filters != nil {
			cal, err = p.filterer.Run(cal, entry.Filters)
			if err != nil {
				return nil, err
			}
		}

		if entry.Modify != nil {
			cal = p.modifier.Run(cal, entry.Modify)
		}

		cals = append(cals, cal)
	}

	return Merge(cals), nil
}
