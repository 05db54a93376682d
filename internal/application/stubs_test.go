package application

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/groupcal/internal/calendar"
	"github.com/example/groupcal/internal/persistence"
)

var kst = time.FixedZone("KST", 9*60*60)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

type codeRepoStub struct {
	codes   map[string]AttendanceCode
	getErr  error
	created []AttendanceCode
	saveErr error
}

func (r *codeRepoStub) CreateCode(ctx context.Context, code AttendanceCode) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.created = append(r.created, code)
	if r.codes == nil {
		r.codes = make(map[string]AttendanceCode)
	}
	r.codes[code.GroupID+"/"+code.Code] = code
	return nil
}

func (r *codeRepoStub) GetCode(ctx context.Context, groupID, code string) (AttendanceCode, error) {
	if r.getErr != nil {
		return AttendanceCode{}, r.getErr
	}
	found, ok := r.codes[groupID+"/"+code]
	if !ok {
		return AttendanceCode{}, persistence.ErrNotFound
	}
	return found, nil
}

type recordRepoStub struct {
	mu        sync.Mutex
	records   map[string]AttendanceRecord
	getErr    error
	createErr error

	// hidePreCheck makes GetRecord report not found even when a record exists,
	// simulating a concurrent scan that inserted after the pre-check.
	hidePreCheck bool
}

func (r *recordRepoStub) key(lessonID, memberID string) string {
	return lessonID + "/" + memberID
}

func (r *recordRepoStub) GetRecord(ctx context.Context, lessonID, memberID string) (AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return AttendanceRecord{}, r.getErr
	}
	record, ok := r.records[r.key(lessonID, memberID)]
	if !ok || r.hidePreCheck {
		return AttendanceRecord{}, persistence.ErrNotFound
	}
	return record, nil
}

func (r *recordRepoStub) CreateRecord(ctx context.Context, record AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.records == nil {
		r.records = make(map[string]AttendanceRecord)
	}
	k := r.key(record.LessonID, record.MemberID)
	if _, exists := r.records[k]; exists {
		return persistence.ErrDuplicate
	}
	r.records[k] = record
	return nil
}

func (r *recordRepoStub) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type lessonRepoStub struct {
	lessons []Lesson
	getErr  error
	listErr error
	filters []LessonFilter
}

func (r *lessonRepoStub) GetLesson(ctx context.Context, id string) (Lesson, error) {
	if r.getErr != nil {
		return Lesson{}, r.getErr
	}
	for _, lesson := range r.lessons {
		if lesson.ID == id {
			return lesson, nil
		}
	}
	return Lesson{}, persistence.ErrNotFound
}

func (r *lessonRepoStub) ListLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error) {
	r.filters = append(r.filters, filter)
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Lesson, 0)
	for _, lesson := range r.lessons {
		if filter.GroupID != "" && lesson.GroupID != filter.GroupID {
			continue
		}
		if filter.StudentID != "" && lesson.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && lesson.Status != filter.Status {
			continue
		}
		if filter.From != nil && lesson.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && lesson.ScheduledAt.After(*filter.To) {
			continue
		}
		out = append(out, lesson)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

type memberDirectoryStub struct {
	members  []Member
	getErr   error
	countErr error
}

func (d *memberDirectoryStub) GetMember(ctx context.Context, groupID, id string) (Member, error) {
	if d.getErr != nil {
		return Member{}, d.getErr
	}
	for _, member := range d.members {
		if member.GroupID == groupID && member.ID == id {
			return member, nil
		}
	}
	return Member{}, persistence.ErrNotFound
}

func (d *memberDirectoryStub) CountMembersByRole(ctx context.Context, groupID string, roles ...Role) (int, error) {
	if d.countErr != nil {
		return 0, d.countErr
	}
	count := 0
	for _, member := range d.members {
		if member.GroupID != groupID {
			continue
		}
		for _, role := range roles {
			if member.Role == role {
				count++
				break
			}
		}
	}
	return count, nil
}

func scheduledLesson(id string, at time.Time) Lesson {
	return Lesson{
		ID:              id,
		GroupID:         "group-1",
		Title:           "Piano",
		ScheduledAt:     at,
		DurationMinutes: 50,
		Status:          calendar.LessonScheduled,
		StudentID:       "student-1",
		InstructorID:    "inst-1",
		ClassroomID:     "room-a",
	}
}
