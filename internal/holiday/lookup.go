package holiday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of year-month listings kept by Lookup.
const DefaultCacheSize = 48

// Lookup resolves holidays through an optional Provider, falling back to the
// static Calendar when the provider is absent or fails. It is safe for
// concurrent use.
type Lookup struct {
	static   *Calendar
	provider Provider
	cache    *lru.Cache[string, []Holiday]
	group    singleflight.Group
	logger   *slog.Logger
}

// NewLookup constructs a Lookup. A nil provider means the static table is
// authoritative; a non-positive cacheSize uses DefaultCacheSize.
func NewLookup(static *Calendar, provider Provider, cacheSize int, logger *slog.Logger) (*Lookup, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []Holiday](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("holiday: create cache: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Lookup{static: static, provider: provider, cache: cache, logger: logger}, nil
}

// HolidaysForMonth lists the month's holidays ordered by date. Provider
// failures are logged and answered from the static table.
func (l *Lookup) HolidaysForMonth(ctx context.Context, year int, month time.Month) []Holiday {
	if l.provider == nil {
		return l.static.HolidaysForMonth(year, month)
	}

	key := fmt.Sprintf("%04d-%02d", year, int(month))
	if cached, ok := l.cache.Get(key); ok {
		return clone(cached)
	}

	value, err, _ := l.group.Do(key, func() (interface{}, error) {
		if cached, ok := l.cache.Get(key); ok {
			return cached, nil
		}
		holidays, err := l.provider.Holidays(ctx, year, month)
		if err != nil {
			return nil, err
		}
		l.cache.Add(key, holidays)
		return holidays, nil
	})
	if err != nil {
		l.logger.WarnContext(ctx, "holiday provider failed, using static table",
			"year", year,
			"month", int(month),
			"error", err,
		)
		return l.static.HolidaysForMonth(year, month)
	}
	return clone(value.([]Holiday))
}

// HolidayFor reports the holiday on the date's calendar day.
func (l *Lookup) HolidayFor(ctx context.Context, date time.Time) (Holiday, bool) {
	if l.provider == nil {
		return l.static.HolidayFor(date)
	}
	want := date.Format(DateLayout)
	for _, h := range l.HolidaysForMonth(ctx, date.Year(), date.Month()) {
		if h.Date == want {
			return h, true
		}
	}
	return Holiday{}, false
}

// InRange returns the holidays between from and to (inclusive, by calendar
// date) keyed by YYYY-MM-DD.
func (l *Lookup) InRange(ctx context.Context, from, to time.Time) map[string]Holiday {
	out := make(map[string]Holiday)
	if to.Before(from) {
		return out
	}
	lo := from.Format(DateLayout)
	hi := to.Format(DateLayout)

	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		for _, h := range l.HolidaysForMonth(ctx, cursor.Year(), cursor.Month()) {
			if h.Date >= lo && h.Date <= hi {
				out[h.Date] = h
			}
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out
}

func clone(in []Holiday) []Holiday {
	out := make([]Holiday, len(in))
	copy(out, in)
	return out
}
