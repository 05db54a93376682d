package calendar

import (
	"time"

	"github.com/example/groupcal/internal/recurrence"
)

// Scope selects between the whole group's calendar and the viewer's own items.
type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeMine Scope = "mine"
)

// ParseScope maps request input onto a Scope, defaulting to ScopeAll.
func ParseScope(value string) Scope {
	if Scope(value) == ScopeMine {
		return ScopeMine
	}
	return ScopeAll
}

// Options tunes a merge.
type Options struct {
	Location *time.Location
	Scope    Scope
	ViewerID string
	Palette  []string
	// ColorIDs is the ordered grouping-key list colours are assigned from.
	// When empty, keys are taken from the merged items in order of appearance.
	ColorIDs []string
}

// MergeResult carries the merged items and the number of source records that
// were dropped for having missing or malformed bounds.
type MergeResult struct {
	Items   []Item
	Skipped int
}

// Merge projects every source record into an Item, keeps the items that
// intersect window, applies the ownership scope, assigns colours and returns
// the items sorted. Bad records are skipped and counted, never fatal.
func Merge(sources Sources, window Window, opts Options) MergeResult {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	mine := opts.Scope == ScopeMine && opts.ViewerID != ""

	var result MergeResult
	items := make([]Item, 0)
	keep := func(item Item) {
		if !intersects(item, window, loc) {
			return
		}
		if mine && item.Kind != KindEvent && item.OwnerID != opts.ViewerID {
			return
		}
		items = append(items, item)
	}

	for _, event := range sources.Events {
		item, ok := projectEvent(event, loc)
		if !ok {
			result.Skipped++
			continue
		}
		keep(item)
	}
	for _, lesson := range sources.Lessons {
		if lesson.Status == LessonCancelled {
			continue
		}
		item, ok := projectLesson(lesson, loc)
		if !ok {
			result.Skipped++
			continue
		}
		keep(item)
	}
	for _, reservation := range sources.Reservations {
		item, ok := projectReservation(reservation, loc)
		if !ok {
			result.Skipped++
			continue
		}
		keep(item)
	}
	engine := recurrence.NewEngine(loc)
	for _, schedule := range sources.Recurring {
		expanded, ok := expandRecurring(engine, schedule, window)
		if !ok {
			result.Skipped++
			continue
		}
		for _, item := range expanded {
			keep(item)
		}
	}

	colorIDs := opts.ColorIDs
	if len(colorIDs) == 0 {
		colorIDs = colorKeysInOrder(items)
	}
	colors := AssignColors(colorIDs, opts.Palette)
	for i := range items {
		items[i].Color = colors[items[i].ColorKey]
	}

	SortItems(items)
	result.Items = items
	return result
}

func intersects(item Item, window Window, loc *time.Location) bool {
	if window.Empty() {
		return false
	}
	return StartOfDay(item.StartAt, loc).Before(window.End) && !EndOfDay(item.EndAt, loc).Before(window.Start)
}

func colorKeysInOrder(items []Item) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, item := range items {
		if item.ColorKey == "" {
			continue
		}
		if _, ok := seen[item.ColorKey]; ok {
			continue
		}
		seen[item.ColorKey] = struct{}{}
		keys = append(keys, item.ColorKey)
	}
	return keys
}

func projectEvent(event Event, loc *time.Location) (Item, bool) {
	if event.StartAt.IsZero() {
		return Item{}, false
	}
	item := Item{
		ID:       string(KindEvent) + ":" + event.ID,
		SourceID: event.ID,
		Kind:     KindEvent,
		Title:    event.Title,
		AllDay:   event.AllDay,
		ColorKey: event.ColorKey,
		OwnerID:  event.CreatedBy,
	}
	if event.AllDay {
		end := event.EndAt
		if end.IsZero() {
			end = event.StartAt
		}
		if end.Before(event.StartAt) {
			return Item{}, false
		}
		item.StartAt = StartOfDay(event.StartAt, loc)
		item.EndAt = EndOfDay(end, loc)
		item.Date = item.StartAt.Format("2006-01-02")
		return item, true
	}
	if event.EndAt.IsZero() || event.EndAt.Before(event.StartAt) {
		return Item{}, false
	}
	item.StartAt = event.StartAt.In(loc)
	item.EndAt = event.EndAt.In(loc)
	return item, true
}

func projectLesson(lesson Lesson, loc *time.Location) (Item, bool) {
	if lesson.ScheduledAt.IsZero() || lesson.DurationMinutes < 0 {
		return Item{}, false
	}
	start := lesson.ScheduledAt.In(loc)
	return Item{
		ID:       string(KindLesson) + ":" + lesson.ID,
		SourceID: lesson.ID,
		Kind:     KindLesson,
		Title:    lesson.Title,
		StartAt:  start,
		EndAt:    start.Add(time.Duration(lesson.DurationMinutes) * time.Minute),
		ColorKey: lesson.ClassroomID,
		OwnerID:  lesson.InstructorID,
	}, true
}

func projectReservation(reservation Reservation, loc *time.Location) (Item, bool) {
	if reservation.StartAt.IsZero() || reservation.EndAt.IsZero() || reservation.EndAt.Before(reservation.StartAt) {
		return Item{}, false
	}
	return Item{
		ID:       string(KindReservation) + ":" + reservation.ID,
		SourceID: reservation.ID,
		Kind:     KindReservation,
		Title:    reservation.Title,
		StartAt:  reservation.StartAt.In(loc),
		EndAt:    reservation.EndAt.In(loc),
		ColorKey: reservation.RoomID,
		OwnerID:  reservation.ReservedBy,
	}, true
}

func expandRecurring(engine *recurrence.Engine, schedule RecurringSchedule, window Window) ([]Item, bool) {
	if schedule.ValidFrom.IsZero() {
		return nil, false
	}
	if schedule.ValidUntil != nil && schedule.ValidUntil.Before(schedule.ValidFrom) {
		return nil, false
	}
	frequency, err := recurrence.ParseFrequency(schedule.Frequency)
	if err != nil {
		return nil, false
	}
	// Start a day early so an overnight slot from the previous evening is kept.
	occurrences, err := engine.Expand(recurrence.Rule{
		ID:         schedule.ID,
		Frequency:  frequency,
		Weekdays:   schedule.Weekdays,
		StartClock: schedule.StartClock,
		EndClock:   schedule.EndClock,
		StartsOn:   schedule.ValidFrom,
		EndsOn:     schedule.ValidUntil,
		Except:     schedule.ExceptDates,
	}, window.Start.AddDate(0, 0, -1), window.End)
	if err != nil {
		return nil, false
	}

	items := make([]Item, 0, len(occurrences))
	for _, occ := range occurrences {
		items = append(items, Item{
			ID:       string(KindRecurring) + ":" + schedule.ID + ":" + occ.Start.Format("2006-01-02"),
			SourceID: schedule.ID,
			Kind:     KindRecurring,
			Title:    schedule.Title,
			StartAt:  occ.Start,
			EndAt:    occ.End,
			ColorKey: schedule.ClassroomID,
			OwnerID:  schedule.InstructorID,
		})
	}
	return items, true
}
