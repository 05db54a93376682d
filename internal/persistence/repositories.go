package persistence

import (
	"context"
	"time"
)

// TimeRange bounds listings to records overlapping [From, To].
type TimeRange struct {
	From time.Time
	To   time.Time
}

// LessonFilter narrows lesson queries. Zero values are ignored.
type LessonFilter struct {
	GroupID      string
	StudentID    string
	InstructorID string
	Status       string
	From         *time.Time
	To           *time.Time
}

// EventRepository stores group calendar events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event CalendarEvent) error
	ListEvents(ctx context.Context, groupID string, window TimeRange) ([]CalendarEvent, error)
}

// LessonRepository stores lessons.
type LessonRepository interface {
	CreateLesson(ctx context.Context, lesson Lesson) error
	GetLesson(ctx context.Context, id string) (Lesson, error)
	ListLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error)
}

// ReservationRepository stores room reservations.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	ListReservations(ctx context.Context, groupID string, window TimeRange) ([]Reservation, error)
}

// RecurringScheduleRepository stores weekly schedule slots.
type RecurringScheduleRepository interface {
	CreateRecurringSchedule(ctx context.Context, schedule RecurringSchedule) error
	ListRecurringSchedules(ctx context.Context, groupID string, window TimeRange) ([]RecurringSchedule, error)
}

// ClassroomRepository stores classrooms.
type ClassroomRepository interface {
	CreateClassroom(ctx context.Context, classroom Classroom) error
	ListClassrooms(ctx context.Context, groupID string) ([]Classroom, error)
}

// MemberRepository stores group membership.
type MemberRepository interface {
	UpsertMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, groupID, id string) (Member, error)
	CountMembersByRole(ctx context.Context, groupID string, roles ...string) (int, error)
}

// AttendanceCodeRepository stores check-in codes.
type AttendanceCodeRepository interface {
	CreateCode(ctx context.Context, code AttendanceCode) error
	GetCode(ctx context.Context, groupID, code string) (AttendanceCode, error)
	DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}

// AttendanceRecordRepository stores check-ins. (LessonID, MemberID) is unique.
type AttendanceRecordRepository interface {
	CreateRecord(ctx context.Context, record AttendanceRecord) error
	GetRecord(ctx context.Context, lessonID, memberID string) (AttendanceRecord, error)
	ListRecordsForLesson(ctx context.Context, lessonID string) ([]AttendanceRecord, error)
}

// RescheduleRequestRepository stores reschedule requests.
type RescheduleRequestRepository interface {
	CreateRequest(ctx context.Context, request RescheduleRequest) error
	ListRequestsForLesson(ctx context.Context, lessonID string) ([]RescheduleRequest, error)
}
