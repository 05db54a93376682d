package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/groupcal/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Location    *time.Location
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Location:    KST,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Location == nil {
		factory.Location = KST
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLocation overrides the zone services operate in.
func WithLocation(loc *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = loc
	}
}

// AttendanceServiceDeps captures dependencies for constructing an attendance service.
type AttendanceServiceDeps struct {
	Codes    application.AttendanceCodeRepository
	Records  application.AttendanceRecordRepository
	Lessons  application.LessonRepository
	Members  application.MemberDirectory
	Settings application.AttendanceSettings
	Logger   *slog.Logger
}

// NewAttendanceService builds an attendance service using the supplied
// dependencies combined with the factory clock and identifiers. A zero
// settings location falls back to the factory location.
func (f *ServiceFactory) NewAttendanceService(deps AttendanceServiceDeps) *application.AttendanceService {
	settings := deps.Settings
	if settings.Location == nil {
		settings.Location = f.Location
	}
	return application.NewAttendanceServiceWithLogger(
		deps.Codes,
		deps.Records,
		deps.Lessons,
		deps.Members,
		settings,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}

// RescheduleServiceDeps captures dependencies for constructing a reschedule service.
type RescheduleServiceDeps struct {
	Requests application.RescheduleRequestRepository
	Lessons  application.LessonRepository
	Settings application.RescheduleSettings
	Logger   *slog.Logger
}

// NewRescheduleService builds a reschedule service. A zero settings location
// falls back to the factory location.
func (f *ServiceFactory) NewRescheduleService(deps RescheduleServiceDeps) *application.RescheduleService {
	settings := deps.Settings
	if settings.Location == nil {
		settings.Location = f.Location
	}
	return application.NewRescheduleServiceWithLogger(
		deps.Requests,
		deps.Lessons,
		settings,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Logger,
	)
}

// CalendarServiceDeps captures dependencies for constructing a calendar service.
type CalendarServiceDeps struct {
	Sources  application.CalendarSourceRepository
	Lessons  application.LessonRepository
	Members  application.MemberDirectory
	Holidays application.HolidaySource
	Logger   *slog.Logger
}

// NewCalendarService builds a calendar service in the factory location.
func (f *ServiceFactory) NewCalendarService(deps CalendarServiceDeps) *application.CalendarService {
	return application.NewCalendarServiceWithLogger(
		deps.Sources,
		deps.Lessons,
		deps.Members,
		deps.Holidays,
		f.Location,
		f.Clock.NowFunc(),
		deps.Logger,
	)
}
