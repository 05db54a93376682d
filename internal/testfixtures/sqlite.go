package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/groupcal/internal/persistence"
	"github.com/example/groupcal/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests.
type SQLiteHarness struct {
	Storage     *sqlite.Storage
	Lessons     persistence.LessonRepository
	Members     persistence.MemberRepository
	Codes       persistence.AttendanceCodeRepository
	Records     persistence.AttendanceRecordRepository
	Reschedules persistence.RescheduleRequestRepository
	Events      persistence.EventRepository
	Classrooms  persistence.ClassroomRepository

	tb      testing.TB
	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "groupcal.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:     storage,
		Lessons:     storage,
		Members:     storage,
		Codes:       storage,
		Records:     storage,
		Reschedules: storage,
		Events:      storage,
		Classrooms:  storage,
		tb:          tb,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedMembers stores the given members, failing the test on error.
func (h *SQLiteHarness) SeedMembers(members ...MemberFixture) {
	h.tb.Helper()
	for _, member := range members {
		if err := h.Members.UpsertMember(context.Background(), member.Persistence()); err != nil {
			h.tb.Fatalf("failed to seed member %s: %v", member.ID, err)
		}
	}
}

// SeedLessons stores the given lessons, failing the test on error.
func (h *SQLiteHarness) SeedLessons(lessons ...LessonFixture) {
	h.tb.Helper()
	for _, lesson := range lessons {
		if err := h.Lessons.CreateLesson(context.Background(), lesson.Persistence()); err != nil {
			h.tb.Fatalf("failed to seed lesson %s: %v", lesson.ID, err)
		}
	}
}

// SeedCodes stores the given attendance codes, failing the test on error.
func (h *SQLiteHarness) SeedCodes(codes ...AttendanceCodeFixture) {
	h.tb.Helper()
	for _, code := range codes {
		if err := h.Codes.CreateCode(context.Background(), code.Persistence()); err != nil {
			h.tb.Fatalf("failed to seed code %s: %v", code.Code, err)
		}
	}
}
