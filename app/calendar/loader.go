package calendar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/calcomb/cal-comb/app/cache"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/ical"
)

// Loader obtains one source calendar, either from the artifact cache or
// from the network.
type Loader struct {
	store      *cache.Store
	httpClient *http.Client
	userAgent  string
}

func NewLoader(store *cache.Store, httpClient *http.Client, userAgent string) *Loader {
	return &Loader{
		store:      store,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Run resolves one entry to a calendar. Cached entries are served from the
// artifact store only; a missing artifact degrades to an empty calendar so
// one unavailable source never takes down the merged view. Live entries are
// fetched, decoded and stamped with a fetch marker.
func (l *Loader) Run(ctx context.Context, entry config.Entry) (*ical.Calendar, error) {
	if entry.Cached() {
		data, ok, err := l.store.ReadURL(entry.URL)
		if err != nil {
			slog.Warn("Cache artifact unreadable, treating source as not cached", "source", entry.Name, "error", err)
			return ical.NewCalendar(), nil
		}
		if !ok {
			slog.Debug("Source not cached yet, contributing empty calendar", "source", entry.Name)
			return ical.NewCalendar(), nil
		}

		cal, err := ical.Decode(data, "")
		if err != nil {
			return nil, fmt.Errorf("failed to parse cached calendar for %s: %w", entry.Name, err)
		}
		return cal, nil
	}

	cal, err := l.FetchRemote(ctx, entry)
	if err != nil {
		return nil, err
	}

	ical.Horodate(cal, ical.FetchedMarker, time.Now().UTC())
	return cal, nil
}

// FetchRemote fetches and decodes the entry's calendar from the network,
// without stamping or caching.
func (l *Loader) FetchRemote(ctx context.Context, entry config.Entry) (*ical.Calendar, error) {
	data, err := l.fetch(ctx, entry.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source %s: %w", entry.Name, err)
	}

	cal, err := ical.Decode(data, entry.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source %s: %w", entry.Name, err)
	}

	return cal, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
