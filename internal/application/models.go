package application

import (
	"time"

	"github.com/example/groupcal/internal/calendar"
)

// Role is a member's role inside a group.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleMember     Role = "member"
)

// ParseRole maps request input onto a Role. Unknown values become RoleMember.
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleOwner, RoleAdmin, RoleInstructor:
		return Role(value)
	}
	return RoleMember
}

// GroupContext identifies the group and viewer a request acts for. It is built
// once per request and passed by value to every service call.
type GroupContext struct {
	GroupID  string
	ViewerID string
	Role     Role
}

// Elevated reports whether the viewer may manage the group's schedule.
func (g GroupContext) Elevated() bool {
	switch g.Role {
	case RoleOwner, RoleAdmin, RoleInstructor:
		return true
	}
	return false
}

func (g GroupContext) valid() bool {
	return g.GroupID != "" && g.ViewerID != ""
}

// Member is a person belonging to a group.
type Member struct {
	ID          string
	GroupID     string
	DisplayName string
	Role        Role
}

// Lesson is a scheduled lesson.
type Lesson struct {
	ID              string
	GroupID         string
	Title           string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          calendar.LessonStatus
	StudentID       string
	InstructorID    string
	ClassroomID     string
}

// LessonFilter narrows lesson listings. Zero values are ignored.
type LessonFilter struct {
	GroupID   string
	StudentID string
	Status    calendar.LessonStatus
	From      *time.Time
	To        *time.Time
}

// Classroom is a teaching location. Listing order drives colour assignment.
type Classroom struct {
	ID   string
	Name string
}

// AttendanceCode opens a check-in window for one lesson in one group.
type AttendanceCode struct {
	Code      string
	GroupID   string
	LessonID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AttendanceStatus classifies an accepted check-in.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
)

// AttendanceRecord is a member's accepted check-in for a lesson.
type AttendanceRecord struct {
	ID        string
	LessonID  string
	MemberID  string
	Status    AttendanceStatus
	CheckInAt time.Time
}

// CheckInState is the terminal state a scan ends in.
type CheckInState string

const (
	CheckInAccepted CheckInState = "accepted"
	CheckInRejected CheckInState = "rejected"
)

// RejectReason explains a rejected scan.
type RejectReason string

const (
	RejectInvalidCode  RejectReason = "invalid code"
	RejectExpired      RejectReason = "expired"
	RejectDuplicate    RejectReason = "duplicate"
	RejectStorageError RejectReason = "storage error"
)

// CheckInParams carries a scanned code for the viewer in Group.
type CheckInParams struct {
	Group GroupContext
	Code  string
}

// CheckInOutcome is the result of a scan. Accepted outcomes carry the record,
// the lesson's scheduled time and the member's display name.
type CheckInOutcome struct {
	State       CheckInState
	Status      AttendanceStatus
	Reason      RejectReason
	LessonID    string
	ScheduledAt time.Time
	MemberName  string
	Record      AttendanceRecord
}

// IssueCodeParams asks for a new check-in code for a lesson.
type IssueCodeParams struct {
	Group    GroupContext
	LessonID string
}

// RescheduleStatus tracks an approver's decision.
type RescheduleStatus string

const (
	ReschedulePending  RescheduleStatus = "pending"
	RescheduleApproved RescheduleStatus = "approved"
	RescheduleRejected RescheduleStatus = "rejected"
)

// RescheduleRequest proposes a new slot for a lesson.
type RescheduleRequest struct {
	ID            string
	LessonID      string
	RequestedBy   string
	RequestedDate time.Time
	Reason        string
	Status        RescheduleStatus
	CreatedAt     time.Time
}

// PendingPolicy decides whether a lesson may carry several pending requests.
type PendingPolicy string

const (
	PendingAllowMultiple PendingPolicy = "allow_multiple"
	PendingSingle        PendingPolicy = "single"
)

// ParsePendingPolicy maps configuration input onto a PendingPolicy.
func ParsePendingPolicy(value string) (PendingPolicy, bool) {
	switch PendingPolicy(value) {
	case "", PendingAllowMultiple:
		return PendingAllowMultiple, true
	case PendingSingle:
		return PendingSingle, true
	}
	return "", false
}

// EligibleLessonsParams selects the viewer's reschedulable lessons.
type EligibleLessonsParams struct {
	Group GroupContext
}

// SubmitRescheduleParams carries a reschedule request from the form.
type SubmitRescheduleParams struct {
	Group       GroupContext
	LessonID    string
	RequestedAt time.Time
	Reason      string
}

// CalendarViewParams selects a calendar window. When To is zero the view
// covers the single day From.
type CalendarViewParams struct {
	Group GroupContext
	From  time.Time
	To    time.Time
	Scope calendar.Scope
}

// View is a rendered calendar window.
type View struct {
	Days            []calendar.Day  `json:"days"`
	Scope           calendar.Scope  `json:"scope"`
	OwnershipToggle bool            `json:"ownership_toggle"`
	Skipped         int             `json:"skipped"`
	Items           []calendar.Item `json:"-"`
}
