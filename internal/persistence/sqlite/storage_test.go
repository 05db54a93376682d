package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/groupcal/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return storage
}

var base = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func seedLesson(t *testing.T, storage *Storage, id string, scheduledAt time.Time) persistence.Lesson {
	t.Helper()
	lesson := persistence.Lesson{
		ID:              id,
		GroupID:         "group-1",
		Title:           "Piano",
		ScheduledAt:     scheduledAt,
		DurationMinutes: 50,
		Status:          "scheduled",
		StudentID:       "student-1",
		InstructorID:    "inst-1",
		ClassroomID:     "room-a",
		CreatedAt:       base,
	}
	if err := storage.CreateLesson(context.Background(), lesson); err != nil {
		t.Fatalf("CreateLesson failed: %v", err)
	}
	return lesson
}

func TestMigrateIsIdempotent(t *testing.T) {
	storage := newTestStorage(t)
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestLessonRepository(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	seedLesson(t, storage, "lesson-1", base)
	seedLesson(t, storage, "lesson-2", base.Add(48*time.Hour))

	fetched, err := storage.GetLesson(ctx, "lesson-1")
	if err != nil {
		t.Fatalf("GetLesson failed: %v", err)
	}
	if !fetched.ScheduledAt.Equal(base) || fetched.ClassroomID != "room-a" {
		t.Fatalf("unexpected lesson %#v", fetched)
	}

	if _, err := storage.GetLesson(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	from := base.Add(time.Hour)
	lessons, err := storage.ListLessons(ctx, persistence.LessonFilter{StudentID: "student-1", Status: "scheduled", From: &from})
	if err != nil {
		t.Fatalf("ListLessons failed: %v", err)
	}
	if len(lessons) != 1 || lessons[0].ID != "lesson-2" {
		t.Fatalf("unexpected filtered lessons %#v", lessons)
	}

	err = storage.CreateLesson(ctx, persistence.Lesson{ID: "lesson-3", GroupID: "group-1", Status: "postponed", CreatedAt: base})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for unknown status, got %v", err)
	}
}

func TestAttendanceRecordUniqueness(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedLesson(t, storage, "lesson-1", base)

	record := persistence.AttendanceRecord{ID: "rec-1", LessonID: "lesson-1", MemberID: "member-1", Status: "present", CheckInAt: base}
	if err := storage.CreateRecord(ctx, record); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	record.ID = "rec-2"
	record.Status = "late"
	if err := storage.CreateRecord(ctx, record); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	records, err := storage.ListRecordsForLesson(ctx, "lesson-1")
	if err != nil {
		t.Fatalf("ListRecordsForLesson failed: %v", err)
	}
	if len(records) != 1 || records[0].Status != "present" {
		t.Fatalf("expected the first record only, got %#v", records)
	}

	fetched, err := storage.GetRecord(ctx, "lesson-1", "member-1")
	if err != nil || fetched.ID != "rec-1" {
		t.Fatalf("GetRecord = %#v, %v", fetched, err)
	}
	if _, err := storage.GetRecord(ctx, "lesson-1", "member-2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttendanceRecordRequiresLesson(t *testing.T) {
	storage := newTestStorage(t)
	err := storage.CreateRecord(context.Background(), persistence.AttendanceRecord{
		ID: "rec-1", LessonID: "missing", MemberID: "member-1", Status: "present", CheckInAt: base,
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestTimestampsKeepSubSecondPrecision(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	scheduledAt := base.Add(600 * time.Millisecond)
	seedLesson(t, storage, "lesson-1", scheduledAt)
	seedLesson(t, storage, "lesson-2", base.Add(500*time.Millisecond))

	fetched, err := storage.GetLesson(ctx, "lesson-1")
	if err != nil {
		t.Fatalf("GetLesson failed: %v", err)
	}
	if !fetched.ScheduledAt.Equal(scheduledAt) {
		t.Fatalf("expected %v, got %v", scheduledAt, fetched.ScheduledAt)
	}

	lessons, err := storage.ListLessons(ctx, persistence.LessonFilter{StudentID: "student-1", From: &scheduledAt})
	if err != nil {
		t.Fatalf("ListLessons failed: %v", err)
	}
	if len(lessons) != 1 || lessons[0].ID != "lesson-1" {
		t.Fatalf("expected only the lesson at or after the sub-second bound, got %#v", lessons)
	}

	expiresAt := base.Add(10*time.Minute + 250*time.Millisecond)
	if err := storage.CreateCode(ctx, persistence.AttendanceCode{
		Code: "scan-me", GroupID: "group-1", LessonID: "lesson-1", ExpiresAt: expiresAt, CreatedAt: base,
	}); err != nil {
		t.Fatalf("CreateCode failed: %v", err)
	}
	code, err := storage.GetCode(ctx, "group-1", "scan-me")
	if err != nil || !code.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("GetCode = %v, %v; want expiry %v", code.ExpiresAt, err, expiresAt)
	}

	checkInAt := scheduledAt.Add(4*time.Minute + 59*time.Second + 900*time.Millisecond)
	if err := storage.CreateRecord(ctx, persistence.AttendanceRecord{
		ID: "rec-1", LessonID: "lesson-1", MemberID: "member-1", Status: "present", CheckInAt: checkInAt,
	}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	record, err := storage.GetRecord(ctx, "lesson-1", "member-1")
	if err != nil || !record.CheckInAt.Equal(checkInAt) {
		t.Fatalf("GetRecord = %v, %v; want check-in %v", record.CheckInAt, err, checkInAt)
	}
}

func TestAttendanceCodes(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedLesson(t, storage, "lesson-1", base)

	code := persistence.AttendanceCode{Code: "scan-me", GroupID: "group-1", LessonID: "lesson-1", ExpiresAt: base.Add(10 * time.Minute), CreatedAt: base}
	if err := storage.CreateCode(ctx, code); err != nil {
		t.Fatalf("CreateCode failed: %v", err)
	}

	var stored string
	if err := storage.pool.DB().QueryRowContext(ctx, `SELECT code_digest FROM attendance_codes`).Scan(&stored); err != nil {
		t.Fatalf("query digest: %v", err)
	}
	if stored == "scan-me" || len(stored) != 64 {
		t.Fatalf("expected a hex digest at rest, got %q", stored)
	}

	fetched, err := storage.GetCode(ctx, "group-1", "scan-me")
	if err != nil {
		t.Fatalf("GetCode failed: %v", err)
	}
	if fetched.LessonID != "lesson-1" || !fetched.ExpiresAt.Equal(code.ExpiresAt) || fetched.Code != "scan-me" {
		t.Fatalf("unexpected code %#v", fetched)
	}

	if _, err := storage.GetCode(ctx, "group-2", "scan-me"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected other groups not to see the code, got %v", err)
	}

	deleted, err := storage.DeleteExpiredCodes(ctx, base.Add(time.Hour))
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteExpiredCodes = %d, %v", deleted, err)
	}
	if _, err := storage.GetCode(ctx, "group-1", "scan-me"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected code to be deleted, got %v", err)
	}
}

func TestRescheduleRequests(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedLesson(t, storage, "lesson-1", base)

	for i, id := range []string{"req-1", "req-2"} {
		err := storage.CreateRequest(ctx, persistence.RescheduleRequest{
			ID:            id,
			LessonID:      "lesson-1",
			RequestedBy:   "student-1",
			RequestedDate: base.AddDate(0, 0, 7+i),
			Reason:        "school trip",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}
	}

	requests, err := storage.ListRequestsForLesson(ctx, "lesson-1")
	if err != nil {
		t.Fatalf("ListRequestsForLesson failed: %v", err)
	}
	if len(requests) != 2 || requests[0].ID != "req-1" || requests[1].Status != "pending" {
		t.Fatalf("unexpected requests %#v", requests)
	}
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	members := []persistence.Member{
		{ID: "owner-1", GroupID: "group-1", DisplayName: "Kim", Role: "owner", JoinedAt: base},
		{ID: "inst-1", GroupID: "group-1", DisplayName: "Lee", Role: "instructor", JoinedAt: base},
		{ID: "student-1", GroupID: "group-1", DisplayName: "Park", Role: "member", JoinedAt: base},
		{ID: "inst-9", GroupID: "group-2", DisplayName: "Choi", Role: "instructor", JoinedAt: base},
	}
	for _, member := range members {
		if err := storage.UpsertMember(ctx, member); err != nil {
			t.Fatalf("UpsertMember failed: %v", err)
		}
	}

	count, err := storage.CountMembersByRole(ctx, "group-1", "owner", "instructor")
	if err != nil || count != 2 {
		t.Fatalf("CountMembersByRole = %d, %v", count, err)
	}

	members[2].DisplayName = "Park Updated"
	if err := storage.UpsertMember(ctx, members[2]); err != nil {
		t.Fatalf("UpsertMember update failed: %v", err)
	}
	fetched, err := storage.GetMember(ctx, "group-1", "student-1")
	if err != nil || fetched.DisplayName != "Park Updated" {
		t.Fatalf("GetMember = %#v, %v", fetched, err)
	}
	if _, err := storage.GetMember(ctx, "group-2", "student-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound across groups, got %v", err)
	}
}

func TestCalendarListings(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	window := persistence.TimeRange{From: base.Add(-24 * time.Hour), To: base.Add(48 * time.Hour)}

	if err := storage.CreateEvent(ctx, persistence.CalendarEvent{ID: "e1", GroupID: "group-1", Title: "Concert", StartAt: base, EndAt: base.Add(2 * time.Hour), CreatedBy: "owner-1", CreatedAt: base}); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if err := storage.CreateEvent(ctx, persistence.CalendarEvent{ID: "e2", GroupID: "group-1", Title: "Later", StartAt: base.AddDate(0, 1, 0), EndAt: base.AddDate(0, 1, 0), CreatedBy: "owner-1", CreatedAt: base}); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if _, err := storage.pool.DB().ExecContext(ctx,
		`INSERT INTO calendar_events (id, group_id, title, start_at, end_at, all_day, created_by, created_at) VALUES ('e3', 'group-1', 'Corrupt', 'not-a-time', NULL, 0, 'owner-1', 'x')`); err != nil {
		t.Fatalf("seed corrupt event: %v", err)
	}

	events, err := storage.ListEvents(ctx, "group-1", window)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	ids := map[string]persistence.CalendarEvent{}
	for _, event := range events {
		ids[event.ID] = event
	}
	if _, ok := ids["e2"]; ok {
		t.Fatalf("event outside the window must not be listed")
	}
	if _, ok := ids["e1"]; !ok {
		t.Fatalf("expected e1 in window")
	}
	if corrupt, ok := ids["e3"]; ok && !corrupt.StartAt.IsZero() {
		t.Fatalf("corrupt timestamps must surface as zero times, got %v", corrupt.StartAt)
	}

	if err := storage.CreateReservation(ctx, persistence.Reservation{ID: "r1", GroupID: "group-1", RoomID: "room-a", ReservedBy: "inst-1", Title: "Ensemble", StartAt: base, EndAt: base.Add(time.Hour), CreatedAt: base}); err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}
	reservations, err := storage.ListReservations(ctx, "group-1", window)
	if err != nil || len(reservations) != 1 {
		t.Fatalf("ListReservations = %#v, %v", reservations, err)
	}

	until := base.AddDate(0, 0, 30)
	schedule := persistence.RecurringSchedule{
		ID: "s1", GroupID: "group-1", Title: "Theory", InstructorID: "inst-1", ClassroomID: "room-b",
		Weekdays:   []time.Weekday{time.Monday, time.Thursday},
		StartClock: "18:00", EndClock: "19:00", ValidFrom: base, ValidUntil: &until, CreatedAt: base,
	}
	if err := storage.CreateRecurringSchedule(ctx, schedule); err != nil {
		t.Fatalf("CreateRecurringSchedule failed: %v", err)
	}
	schedules, err := storage.ListRecurringSchedules(ctx, "group-1", window)
	if err != nil || len(schedules) != 1 {
		t.Fatalf("ListRecurringSchedules = %#v, %v", schedules, err)
	}
	if got := schedules[0].Weekdays; len(got) != 2 || got[0] != time.Monday || got[1] != time.Thursday {
		t.Fatalf("unexpected weekdays %v", got)
	}
	if schedules[0].ValidUntil == nil || !schedules[0].ValidUntil.Equal(until) {
		t.Fatalf("unexpected valid_until %v", schedules[0].ValidUntil)
	}

	for i, id := range []string{"room-b", "room-a"} {
		if err := storage.CreateClassroom(ctx, persistence.Classroom{ID: id, GroupID: "group-1", Name: id, Position: i}); err != nil {
			t.Fatalf("CreateClassroom failed: %v", err)
		}
	}
	classrooms, err := storage.ListClassrooms(ctx, "group-1")
	if err != nil || len(classrooms) != 2 || classrooms[0].ID != "room-b" {
		t.Fatalf("ListClassrooms = %#v, %v", classrooms, err)
	}
}

func TestRecurringScheduleFrequencyAndExceptions(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	window := persistence.TimeRange{From: base, To: base.AddDate(0, 0, 7)}

	weekly := persistence.RecurringSchedule{
		ID: "weekly", GroupID: "group-1", Title: "Theory", InstructorID: "inst-1",
		Weekdays: []time.Weekday{time.Monday}, StartClock: "18:00", EndClock: "19:00", ValidFrom: base, CreatedAt: base,
	}
	kst := time.FixedZone("KST", 9*60*60)
	daily := persistence.RecurringSchedule{
		ID: "daily", GroupID: "group-1", Title: "Warm-up", InstructorID: "inst-1", Frequency: "daily",
		StartClock: "08:00", EndClock: "08:30", ValidFrom: base, CreatedAt: base.Add(time.Second),
		ExceptDates: []time.Time{
			time.Date(2024, time.March, 6, 0, 0, 0, 0, kst),
			time.Date(2024, time.March, 8, 0, 0, 0, 0, kst),
		},
	}
	for _, schedule := range []persistence.RecurringSchedule{weekly, daily} {
		if err := storage.CreateRecurringSchedule(ctx, schedule); err != nil {
			t.Fatalf("CreateRecurringSchedule(%s) failed: %v", schedule.ID, err)
		}
	}

	schedules, err := storage.ListRecurringSchedules(ctx, "group-1", window)
	if err != nil || len(schedules) != 2 {
		t.Fatalf("ListRecurringSchedules = %#v, %v", schedules, err)
	}
	if schedules[0].Frequency != "weekly" || len(schedules[0].ExceptDates) != 0 {
		t.Fatalf("expected a weekly slot without exceptions, got %#v", schedules[0])
	}
	got := schedules[1]
	if got.Frequency != "daily" || len(got.ExceptDates) != 2 {
		t.Fatalf("unexpected daily slot %#v", got)
	}
	for i, want := range []string{"2024-03-06", "2024-03-08"} {
		if date := got.ExceptDates[i].Format("2006-01-02"); date != want {
			t.Fatalf("exception %d: expected %s, got %s", i, want, date)
		}
	}

	bad := weekly
	bad.ID = "monthly"
	bad.Frequency = "monthly"
	if err := storage.CreateRecurringSchedule(ctx, bad); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for an unknown frequency, got %v", err)
	}
}
