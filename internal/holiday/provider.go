package holiday

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// maxFeedBytes bounds the provider response body.
const maxFeedBytes = 1 << 20

// ErrProviderUnavailable indicates the provider could not produce a listing.
var ErrProviderUnavailable = errors.New("holiday: provider unavailable")

// Provider lists holidays for a single month from an external source.
type Provider interface {
	Holidays(ctx context.Context, year int, month time.Month) ([]Holiday, error)
}

// ICSProvider fetches holidays as an iCalendar feed keyed by year and month.
type ICSProvider struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewICSProvider constructs an ICSProvider. A nil client uses a client with a
// ten second timeout.
func NewICSProvider(baseURL, key string, client *http.Client) (*ICSProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("holiday: provider url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("holiday: invalid provider url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ICSProvider{baseURL: baseURL, key: key, client: client}, nil
}

// Holidays issues GET <base>?year=YYYY&month=MM&key=... and parses the feed.
// Events outside the requested month are dropped.
func (p *ICSProvider) Holidays(ctx context.Context, year int, month time.Month) ([]Holiday, error) {
	endpoint, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	query := endpoint.Query()
	query.Set("year", strconv.Itoa(year))
	query.Set("month", fmt.Sprintf("%02d", int(month)))
	if p.key != "" {
		query.Set("key", p.key)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	return ParseFeed(io.LimitReader(resp.Body, maxFeedBytes), year, month)
}

// ParseFeed extracts the all-day or dated VEVENTs of an iCalendar document
// that fall inside the given month.
func ParseFeed(r io.Reader, year int, month time.Month) ([]Holiday, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed: %v", ErrProviderUnavailable, err)
	}

	seen := make(map[string]struct{})
	out := make([]Holiday, 0)
	for _, event := range cal.Events() {
		start, ok := eventDate(event)
		if !ok || start.Year() != year || start.Month() != month {
			continue
		}
		date := start.Format(DateLayout)
		if _, dup := seen[date]; dup {
			continue
		}
		name := ""
		if prop := event.GetProperty(ics.ComponentPropertySummary); prop != nil {
			name = strings.TrimSpace(prop.Value)
		}
		if name == "" {
			continue
		}
		seen[date] = struct{}{}
		out = append(out, Holiday{Date: date, Name: name, IsHoliday: true})
	}

	sortByDate(out)
	return out, nil
}

// eventDate reads the calendar date of DTSTART. Only the YYYYMMDD prefix is
// used so that DATE and DATE-TIME values resolve to the same day regardless
// of TZID.
func eventDate(event *ics.VEvent) (time.Time, bool) {
	prop := event.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil || len(prop.Value) < 8 {
		return time.Time{}, false
	}
	date, err := time.Parse("20060102", prop.Value[:8])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
