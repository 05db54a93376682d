package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/groupcal/internal/application"
	"github.com/example/groupcal/internal/calendar"
	"github.com/example/groupcal/internal/persistence"
)

var (
	lessonCounter uint64
	memberCounter uint64
	codeCounter   uint64
)

// KST is the fixed +09:00 zone fixtures are expressed in.
var KST = time.FixedZone("KST", 9*60*60)

var referenceTime = time.Date(2024, time.March, 4, 15, 0, 0, 0, KST)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Member fixtures -----------------------------

// MemberFixture represents a deterministic group member.
type MemberFixture struct {
	ID          string
	GroupID     string
	DisplayName string
	Role        application.Role
	JoinedAt    time.Time
}

// MemberOption configures the generated member fixture.
type MemberOption func(*MemberFixture)

// NewMemberFixture returns a member of group-1 with the member role.
func NewMemberFixture(opts ...MemberOption) MemberFixture {
	idx := atomic.AddUint64(&memberCounter, 1)
	fixture := MemberFixture{
		ID:          fmt.Sprintf("member-%03d", idx),
		GroupID:     "group-1",
		DisplayName: fmt.Sprintf("Member %03d", idx),
		Role:        application.RoleMember,
		JoinedAt:    referenceTime.AddDate(0, -1, 0),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMemberID overrides the member identifier.
func WithMemberID(id string) MemberOption {
	return func(f *MemberFixture) {
		f.ID = id
	}
}

// WithMemberGroup overrides the member's group.
func WithMemberGroup(groupID string) MemberOption {
	return func(f *MemberFixture) {
		f.GroupID = groupID
	}
}

// WithMemberName overrides the display name.
func WithMemberName(name string) MemberOption {
	return func(f *MemberFixture) {
		f.DisplayName = name
	}
}

// WithMemberRole overrides the member role.
func WithMemberRole(role application.Role) MemberOption {
	return func(f *MemberFixture) {
		f.Role = role
	}
}

// Application converts the fixture into an application member.
func (f MemberFixture) Application() application.Member {
	return application.Member{ID: f.ID, GroupID: f.GroupID, DisplayName: f.DisplayName, Role: f.Role}
}

// Persistence converts the fixture into a persistence member.
func (f MemberFixture) Persistence() persistence.Member {
	return persistence.Member{ID: f.ID, GroupID: f.GroupID, DisplayName: f.DisplayName, Role: string(f.Role), JoinedAt: f.JoinedAt}
}

// GroupContext returns the identity of the member as a viewer.
func (f MemberFixture) GroupContext() application.GroupContext {
	return application.GroupContext{GroupID: f.GroupID, ViewerID: f.ID, Role: f.Role}
}

// ----------------------------- Lesson fixtures -----------------------------

// LessonFixture represents a deterministic scheduled lesson.
type LessonFixture struct {
	ID              string
	GroupID         string
	Title           string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          calendar.LessonStatus
	StudentID       string
	InstructorID    string
	ClassroomID     string
	CreatedAt       time.Time
}

// LessonOption configures the generated lesson fixture.
type LessonOption func(*LessonFixture)

// NewLessonFixture returns a scheduled 50 minute lesson two days after the
// reference time.
func NewLessonFixture(opts ...LessonOption) LessonFixture {
	idx := atomic.AddUint64(&lessonCounter, 1)
	fixture := LessonFixture{
		ID:              fmt.Sprintf("lesson-%03d", idx),
		GroupID:         "group-1",
		Title:           fmt.Sprintf("Lesson %03d", idx),
		ScheduledAt:     time.Date(2024, time.March, 6, 10, 0, 0, 0, KST),
		DurationMinutes: 50,
		Status:          calendar.LessonScheduled,
		StudentID:       "student-1",
		InstructorID:    "inst-1",
		ClassroomID:     "room-a",
		CreatedAt:       referenceTime.AddDate(0, 0, -7),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithLessonID overrides the lesson identifier.
func WithLessonID(id string) LessonOption {
	return func(f *LessonFixture) {
		f.ID = id
	}
}

// WithLessonGroup overrides the lesson's group.
func WithLessonGroup(groupID string) LessonOption {
	return func(f *LessonFixture) {
		f.GroupID = groupID
	}
}

// WithLessonAt overrides the scheduled start.
func WithLessonAt(at time.Time) LessonOption {
	return func(f *LessonFixture) {
		f.ScheduledAt = at
	}
}

// WithLessonStatus overrides the lesson status.
func WithLessonStatus(status calendar.LessonStatus) LessonOption {
	return func(f *LessonFixture) {
		f.Status = status
	}
}

// WithLessonStudent overrides the student.
func WithLessonStudent(id string) LessonOption {
	return func(f *LessonFixture) {
		f.StudentID = id
	}
}

// WithLessonInstructor overrides the instructor.
func WithLessonInstructor(id string) LessonOption {
	return func(f *LessonFixture) {
		f.InstructorID = id
	}
}

// WithLessonClassroom overrides the classroom.
func WithLessonClassroom(id string) LessonOption {
	return func(f *LessonFixture) {
		f.ClassroomID = id
	}
}

// Application converts the fixture into an application lesson.
func (f LessonFixture) Application() application.Lesson {
	return application.Lesson{
		ID:              f.ID,
		GroupID:         f.GroupID,
		Title:           f.Title,
		ScheduledAt:     f.ScheduledAt,
		DurationMinutes: f.DurationMinutes,
		Status:          f.Status,
		StudentID:       f.StudentID,
		InstructorID:    f.InstructorID,
		ClassroomID:     f.ClassroomID,
	}
}

// Persistence converts the fixture into a persistence lesson.
func (f LessonFixture) Persistence() persistence.Lesson {
	return persistence.Lesson{
		ID:              f.ID,
		GroupID:         f.GroupID,
		Title:           f.Title,
		ScheduledAt:     f.ScheduledAt,
		DurationMinutes: f.DurationMinutes,
		Status:          string(f.Status),
		StudentID:       f.StudentID,
		InstructorID:    f.InstructorID,
		ClassroomID:     f.ClassroomID,
		CreatedAt:       f.CreatedAt,
	}
}

// ------------------------- Attendance code fixtures -------------------------

// AttendanceCodeFixture represents an issued check-in code.
type AttendanceCodeFixture struct {
	Code      string
	GroupID   string
	LessonID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AttendanceCodeOption configures the generated code fixture.
type AttendanceCodeOption func(*AttendanceCodeFixture)

// NewAttendanceCodeFixture returns a code for lessonID issued at the
// reference time with the default ten minute window.
func NewAttendanceCodeFixture(lessonID string, opts ...AttendanceCodeOption) AttendanceCodeFixture {
	idx := atomic.AddUint64(&codeCounter, 1)
	fixture := AttendanceCodeFixture{
		Code:      fmt.Sprintf("code-%03d", idx),
		GroupID:   "group-1",
		LessonID:  lessonID,
		CreatedAt: referenceTime,
		ExpiresAt: referenceTime.Add(application.DefaultCodeTTL),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCode overrides the code value.
func WithCode(code string) AttendanceCodeOption {
	return func(f *AttendanceCodeFixture) {
		f.Code = code
	}
}

// WithCodeGroup overrides the issuing group.
func WithCodeGroup(groupID string) AttendanceCodeOption {
	return func(f *AttendanceCodeFixture) {
		f.GroupID = groupID
	}
}

// WithCodeExpiresAt overrides the expiry instant.
func WithCodeExpiresAt(t time.Time) AttendanceCodeOption {
	return func(f *AttendanceCodeFixture) {
		f.ExpiresAt = t
	}
}

// Application converts the fixture into an application code.
func (f AttendanceCodeFixture) Application() application.AttendanceCode {
	return application.AttendanceCode{Code: f.Code, GroupID: f.GroupID, LessonID: f.LessonID, ExpiresAt: f.ExpiresAt, CreatedAt: f.CreatedAt}
}

// Persistence converts the fixture into a persistence code.
func (f AttendanceCodeFixture) Persistence() persistence.AttendanceCode {
	return persistence.AttendanceCode{Code: f.Code, GroupID: f.GroupID, LessonID: f.LessonID, ExpiresAt: f.ExpiresAt, CreatedAt: f.CreatedAt}
}
