package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/groupcal/internal/calendar"
	"github.com/example/groupcal/internal/holiday"
)

// MaxCalendarDays caps the number of days a single view may span.
const MaxCalendarDays = 62

// CalendarSourceRepository loads the raw records a calendar view is merged
// from. Listings return every record overlapping [from, to].
type CalendarSourceRepository interface {
	ListEvents(ctx context.Context, groupID string, from, to time.Time) ([]calendar.Event, error)
	ListReservations(ctx context.Context, groupID string, from, to time.Time) ([]calendar.Reservation, error)
	ListRecurringSchedules(ctx context.Context, groupID string, from, to time.Time) ([]calendar.RecurringSchedule, error)
	ListClassrooms(ctx context.Context, groupID string) ([]Classroom, error)
}

// HolidaySource resolves public holidays. *holiday.Lookup satisfies it.
type HolidaySource interface {
	HolidaysForMonth(ctx context.Context, year int, month time.Month) []holiday.Holiday
	InRange(ctx context.Context, from, to time.Time) map[string]holiday.Holiday
}

// CalendarService assembles calendar views for a group.
type CalendarService struct {
	sources  CalendarSourceRepository
	lessons  LessonRepository
	members  MemberDirectory
	holidays HolidaySource
	location *time.Location
	palette  []string
	now      func() time.Time
	logger   *slog.Logger
}

// NewCalendarService constructs a calendar service with the provided dependencies.
func NewCalendarService(sources CalendarSourceRepository, lessons LessonRepository, members MemberDirectory, holidays HolidaySource, location *time.Location, now func() time.Time) *CalendarService {
	return NewCalendarServiceWithLogger(sources, lessons, members, holidays, location, now, nil)
}

// NewCalendarServiceWithLogger constructs a calendar service with a specified logger.
func NewCalendarServiceWithLogger(sources CalendarSourceRepository, lessons LessonRepository, members MemberDirectory, holidays HolidaySource, location *time.Location, now func() time.Time, logger *slog.Logger) *CalendarService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		sources:  sources,
		lessons:  lessons,
		members:  members,
		holidays: holidays,
		location: location,
		palette:  calendar.DefaultPalette,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// Location reports the zone views are rendered in.
func (s *CalendarService) Location() *time.Location {
	if s == nil {
		return time.UTC
	}
	return s.location
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// CalendarView merges every schedule source of the group into a per-day view
// with the holiday overlay and the ownership scope applied.
func (s *CalendarService) CalendarView(ctx context.Context, params CalendarViewParams) (view View, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CalendarView",
		"group_id", params.Group.GroupID,
		"principal_id", params.Group.ViewerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build calendar view", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"days", len(view.Days),
			"items", len(view.Items),
			"skipped", view.Skipped,
			"scope", view.Scope,
		).InfoContext(ctx, "calendar view built")
	}()

	if !params.Group.valid() {
		err = ErrUnauthorized
		return
	}

	var window calendar.Window
	window, err = s.resolveWindow(params.From, params.To)
	if err != nil {
		return
	}

	toggle := false
	if params.Group.Elevated() && s.members != nil {
		var instructors int
		instructors, err = s.members.CountMembersByRole(ctx, params.Group.GroupID, RoleOwner, RoleInstructor)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		toggle = calendar.OwnershipToggleVisible(true, instructors)
	}
	scope := calendar.EffectiveScope(params.Scope, toggle)

	var (
		sources  calendar.Sources
		colorIDs []string
	)
	sources, colorIDs, err = s.loadSources(ctx, params.Group.GroupID, window)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	result := calendar.Merge(sources, window, calendar.Options{
		Location: s.location,
		Scope:    scope,
		ViewerID: params.Group.ViewerID,
		Palette:  s.palette,
		ColorIDs: colorIDs,
	})
	if result.Skipped > 0 {
		logger.WarnContext(ctx, "skipped malformed calendar records", "skipped", result.Skipped)
	}

	var holidays map[string]holiday.Holiday
	if s.holidays != nil {
		holidays = s.holidays.InRange(ctx, window.Start, window.End.Add(-time.Nanosecond))
	}

	view = View{
		Days:            calendar.BuildDays(result.Items, holidays, window, s.location),
		Scope:           scope,
		OwnershipToggle: toggle,
		Skipped:         result.Skipped,
		Items:           result.Items,
	}
	return
}

func (s *CalendarService) resolveWindow(from, to time.Time) (calendar.Window, error) {
	if from.IsZero() {
		from = s.now()
	}
	if to.IsZero() {
		return calendar.DayWindow(from, s.location), nil
	}

	vErr := &ValidationError{}
	window := calendar.RangeWindow(from, to, s.location)
	switch {
	case calendar.StartOfDay(to, s.location).Before(calendar.StartOfDay(from, s.location)):
		vErr.add("to", "end date must not be before start date")
	case len(window.Days()) > MaxCalendarDays:
		vErr.add("to", fmt.Sprintf("range must not exceed %d days", MaxCalendarDays))
	}
	if vErr.HasErrors() {
		return calendar.Window{}, vErr
	}
	return window, nil
}

// loadSources fetches every record that could touch window. Queries are
// widened by a day on each side so that zone offsets never hide a record; the
// merge does the exact filtering.
func (s *CalendarService) loadSources(ctx context.Context, groupID string, window calendar.Window) (calendar.Sources, []string, error) {
	var sources calendar.Sources
	from := window.Start.Add(-24 * time.Hour)
	to := window.End.Add(24 * time.Hour)

	if s.lessons != nil {
		lessons, err := s.lessons.ListLessons(ctx, LessonFilter{GroupID: groupID, From: &from, To: &to})
		if err != nil {
			return sources, nil, fmt.Errorf("list lessons: %w", err)
		}
		for _, lesson := range lessons {
			sources.Lessons = append(sources.Lessons, calendar.Lesson{
				ID:              lesson.ID,
				Title:           lesson.Title,
				ScheduledAt:     lesson.ScheduledAt,
				DurationMinutes: lesson.DurationMinutes,
				Status:          lesson.Status,
				StudentID:       lesson.StudentID,
				InstructorID:    lesson.InstructorID,
				ClassroomID:     lesson.ClassroomID,
			})
		}
	}
	if s.sources == nil {
		return sources, nil, nil
	}

	var err error
	if sources.Events, err = s.sources.ListEvents(ctx, groupID, from, to); err != nil {
		return sources, nil, fmt.Errorf("list events: %w", err)
	}
	if sources.Reservations, err = s.sources.ListReservations(ctx, groupID, from, to); err != nil {
		return sources, nil, fmt.Errorf("list reservations: %w", err)
	}
	if sources.Recurring, err = s.sources.ListRecurringSchedules(ctx, groupID, from, to); err != nil {
		return sources, nil, fmt.Errorf("list recurring schedules: %w", err)
	}

	classrooms, err := s.sources.ListClassrooms(ctx, groupID)
	if err != nil {
		return sources, nil, fmt.Errorf("list classrooms: %w", err)
	}
	colorIDs := make([]string, 0, len(classrooms))
	for _, classroom := range classrooms {
		colorIDs = append(colorIDs, classroom.ID)
	}
	return sources, colorIDs, nil
}

// Holidays lists the public holidays of a month.
func (s *CalendarService) Holidays(ctx context.Context, year int, month time.Month) (holidays []holiday.Holiday, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Holidays", "year", year, "month", int(month))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list holidays", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(holidays)).DebugContext(ctx, "holidays listed")
	}()

	if month < time.January || month > time.December {
		vErr := &ValidationError{}
		vErr.add("month", "month must be between 1 and 12")
		err = vErr
		return
	}
	if year < 1 || year > 9999 {
		vErr := &ValidationError{}
		vErr.add("year", "year is out of range")
		err = vErr
		return
	}
	if s.holidays == nil {
		return []holiday.Holiday{}, nil
	}
	holidays = s.holidays.HolidaysForMonth(ctx, year, month)
	if holidays == nil {
		holidays = []holiday.Holiday{}
	}
	return
}
