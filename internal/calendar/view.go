package calendar

import (
	"time"

	"github.com/example/groupcal/internal/holiday"
)

// OwnershipToggleVisible reports whether the all/mine switch is offered: only
// to elevated viewers in groups with more than one instructor.
func OwnershipToggleVisible(elevated bool, instructorCount int) bool {
	return elevated && instructorCount > 1
}

// EffectiveScope returns the scope a merge should use. A hidden toggle always
// means ScopeAll.
func EffectiveScope(requested Scope, toggleVisible bool) Scope {
	if !toggleVisible {
		return ScopeAll
	}
	if requested == ScopeMine {
		return ScopeMine
	}
	return ScopeAll
}

// Day is one rendered calendar date.
type Day struct {
	Date      string           `json:"date"`
	Holiday   *holiday.Holiday `json:"holiday,omitempty"`
	MultiDay  []Item           `json:"multi_day"`
	SingleDay []Item           `json:"single_day"`
}

// BuildDays lays items out per calendar date of window with the holiday
// overlay. holidays is keyed by YYYY-MM-DD.
func BuildDays(items []Item, holidays map[string]holiday.Holiday, window Window, loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}
	days := make([]Day, 0)
	for _, date := range window.Days() {
		onDate := ItemsForDate(items, date, loc)
		SortItems(onDate)
		multi, single := SplitLanes(onDate, loc)

		day := Day{
			Date:      date.Format(holiday.DateLayout),
			MultiDay:  multi,
			SingleDay: single,
		}
		if h, ok := holidays[day.Date]; ok {
			h := h
			day.Holiday = &h
		}
		days = append(days, day)
	}
	return days
}
