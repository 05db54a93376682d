package calendar

import (
	"sort"
	"time"
)

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns the last nanosecond of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func midday(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).Add(12 * time.Hour)
}

// ItemsForDate keeps the items covering day. Membership is decided at the
// midday instant of day so that DST shifts and zone offsets near midnight
// cannot move an item onto a neighbouring date.
func ItemsForDate(items []Item, day time.Time, loc *time.Location) []Item {
	probe := midday(day, loc)
	out := make([]Item, 0)
	for _, item := range items {
		if probe.Before(StartOfDay(item.StartAt, loc)) {
			continue
		}
		if probe.After(EndOfDay(item.EndAt, loc)) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// SortItems orders items in place: all-day items first, then timed items by
// ascending start. Ties keep their input order.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.AllDay != b.AllDay {
			return a.AllDay
		}
		if a.AllDay {
			return false
		}
		return a.StartAt.Before(b.StartAt)
	})
}

// IsMultiDay reports whether the item's end falls on a later calendar day
// than its start.
func IsMultiDay(item Item, loc *time.Location) bool {
	return daySpan(item.StartAt, item.EndAt, loc) >= 1
}

func daySpan(start, end time.Time, loc *time.Location) int {
	s := StartOfDay(start, loc)
	e := StartOfDay(end, loc)
	// Calendar dates are compared in UTC to keep DST days from counting short.
	sd := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	ed := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	return int(ed.Sub(sd) / (24 * time.Hour))
}

// SplitLanes routes items into the multi-day and single-day lanes, keeping the
// relative order of the input.
func SplitLanes(items []Item, loc *time.Location) (multi, single []Item) {
	multi = make([]Item, 0)
	single = make([]Item, 0)
	for _, item := range items {
		if IsMultiDay(item, loc) {
			multi = append(multi, item)
			continue
		}
		single = append(single, item)
	}
	return multi, single
}
