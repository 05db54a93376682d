// Package calendar merges events, lessons, room reservations and recurring
// schedules into a single ordered, coloured, per-day view. Everything in this
// package is pure: callers load the source records and pass them in.
package calendar

import (
	"time"
)

// Kind tags the source a calendar item was projected from.
type Kind string

const (
	KindEvent       Kind = "event"
	KindLesson      Kind = "lesson"
	KindReservation Kind = "reservation"
	KindRecurring   Kind = "recurring"
)

// Item is the unified, display-ready projection of a source record. Items are
// built per query and never stored.
type Item struct {
	ID       string    `json:"id"`
	SourceID string    `json:"source_id"`
	Kind     Kind      `json:"kind"`
	Title    string    `json:"title"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	AllDay   bool      `json:"all_day"`
	// Date is the first calendar day (YYYY-MM-DD) of an all-day item.
	Date     string `json:"date,omitempty"`
	ColorKey string `json:"color_key,omitempty"`
	Color    string `json:"color,omitempty"`
	OwnerID  string `json:"owner_id,omitempty"`
}

// LessonStatus mirrors the lifecycle of a scheduled lesson.
type LessonStatus string

const (
	LessonScheduled LessonStatus = "scheduled"
	LessonCompleted LessonStatus = "completed"
	LessonCancelled LessonStatus = "cancelled"
)

// Event is an ad-hoc group calendar entry. For all-day events EndAt is the
// last day covered (inclusive); a zero EndAt means a single day.
type Event struct {
	ID        string
	Title     string
	StartAt   time.Time
	EndAt     time.Time
	AllDay    bool
	ColorKey  string
	CreatedBy string
}

// Lesson is a scheduled one-off lesson.
type Lesson struct {
	ID              string
	Title           string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          LessonStatus
	StudentID       string
	InstructorID    string
	ClassroomID     string
}

// Reservation is a room booking.
type Reservation struct {
	ID         string
	RoomID     string
	ReservedBy string
	Title      string
	StartAt    time.Time
	EndAt      time.Time
}

// RecurringSchedule is a weekly or daily slot valid between ValidFrom and
// ValidUntil (inclusive). Clocks use the "15:04" layout in the view's location;
// an EndClock before StartClock ends the next day. Frequency is "weekly"
// (blank) or "daily". ExceptDates are calendar dates the slot is cancelled on.
type RecurringSchedule struct {
	ID           string
	Title        string
	InstructorID string
	ClassroomID  string
	Frequency    string
	Weekdays     []time.Weekday
	StartClock   string
	EndClock     string
	ValidFrom    time.Time
	ValidUntil   *time.Time
	ExceptDates  []time.Time
}

// Sources groups the raw records a view is built from. Within each kind the
// slice order is the source order used to break sort ties.
type Sources struct {
	Events       []Event
	Lessons      []Lesson
	Reservations []Reservation
	Recurring    []RecurringSchedule
}

// Window is a half-open interval [Start, End) aligned to day boundaries.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the window covering the calendar day of date in loc.
func DayWindow(date time.Time, loc *time.Location) Window {
	start := StartOfDay(date, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// RangeWindow returns the window covering every calendar day from from to to
// inclusive. A reversed range yields an empty window.
func RangeWindow(from, to time.Time, loc *time.Location) Window {
	start := StartOfDay(from, loc)
	end := StartOfDay(to, loc).AddDate(0, 0, 1)
	if end.Before(start) {
		end = start
	}
	return Window{Start: start, End: end}
}

// Days lists the start of every calendar day in the window.
func (w Window) Days() []time.Time {
	days := make([]time.Time, 0)
	for day := w.Start; day.Before(w.End); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// Empty reports whether the window covers no time.
func (w Window) Empty() bool {
	return !w.Start.Before(w.End)
}
