package persistence

import "time"

// CalendarEvent is an ad-hoc entry on a group calendar.
type CalendarEvent struct {
	ID        string
	GroupID   string
	Title     string
	StartAt   time.Time
	EndAt     time.Time
	AllDay    bool
	ColorKey  string
	CreatedBy string
	CreatedAt time.Time
}

// Lesson is a scheduled lesson between an instructor and a student.
type Lesson struct {
	ID              string
	GroupID         string
	Title           string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          string
	StudentID       string
	InstructorID    string
	ClassroomID     string
	CreatedAt       time.Time
}

// Reservation is a room booking.
type Reservation struct {
	ID         string
	GroupID    string
	RoomID     string
	ReservedBy string
	Title      string
	StartAt    time.Time
	EndAt      time.Time
	CreatedAt  time.Time
}

// RecurringSchedule is a repeating lesson slot. Frequency is "weekly" or
// "daily"; ExceptDates hold the dates the slot is cancelled on.
type RecurringSchedule struct {
	ID           string
	GroupID      string
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
	CreatedAt    time.Time
}

// Classroom is a teaching location; Position orders colour assignment.
type Classroom struct {
	ID       string
	GroupID  string
	Name     string
	Position int
}

// Member is a person belonging to a group.
type Member struct {
	ID          string
	GroupID     string
	DisplayName string
	Role        string
	JoinedAt    time.Time
}

// AttendanceCode opens a check-in window for a lesson.
type AttendanceCode struct {
	Code      string
	GroupID   string
	LessonID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AttendanceRecord is a member's accepted check-in for a lesson.
type AttendanceRecord struct {
	ID        string
	LessonID  string
	MemberID  string
	Status    string
	CheckInAt time.Time
}

// RescheduleRequest proposes a new slot for a lesson.
type RescheduleRequest struct {
	ID            string
	LessonID      string
	RequestedBy   string
	RequestedDate time.Time
	Reason        string
	Status        string
	CreatedAt     time.Time
}
