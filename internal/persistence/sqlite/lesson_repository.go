package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/groupcal/internal/persistence"
)

// LessonRepository implements persistence.LessonRepository using SQLite
type LessonRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewLessonRepository creates a new SQLite lesson repository
func NewLessonRepository(pool *ConnectionPool) *LessonRepository {
	return &LessonRepository{pool: pool, mapper: NewErrorMapper()}
}

const lessonColumns = `id, group_id, title, scheduled_at, duration_minutes, status, student_id, instructor_id, classroom_id, created_at`

// CreateLesson inserts a lesson.
func (r *LessonRepository) CreateLesson(ctx context.Context, lesson persistence.Lesson) error {
	if lesson.ID == "" || lesson.GroupID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO lessons (`+lessonColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lesson.ID,
		lesson.GroupID,
		lesson.Title,
		formatTime(lesson.ScheduledAt),
		lesson.DurationMinutes,
		lesson.Status,
		lesson.StudentID,
		lesson.InstructorID,
		nullableString(lesson.ClassroomID),
		formatTime(lesson.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// GetLesson retrieves a lesson by ID.
func (r *LessonRepository) GetLesson(ctx context.Context, id string) (persistence.Lesson, error) {
	if id == "" {
		return persistence.Lesson{}, persistence.ErrNotFound
	}
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id)
	lesson, err := scanLesson(row)
	if err != nil {
		return persistence.Lesson{}, r.mapper.MapError(err)
	}
	return lesson, nil
}

// ListLessons returns lessons matching the filter ordered by scheduled time.
func (r *LessonRepository) ListLessons(ctx context.Context, filter persistence.LessonFilter) ([]persistence.Lesson, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.GroupID != "" {
		clauses = append(clauses, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.StudentID != "" {
		clauses = append(clauses, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.InstructorID != "" {
		clauses = append(clauses, "instructor_id = ?")
		args = append(args, filter.InstructorID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		clauses = append(clauses, "scheduled_at >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "scheduled_at <= ?")
		args = append(args, formatTime(*filter.To))
	}

	query := `SELECT ` + lessonColumns + ` FROM lessons`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY scheduled_at ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	lessons := make([]persistence.Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return lessons, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (persistence.Lesson, error) {
	var (
		lesson                 persistence.Lesson
		scheduledAt, createdAt sql.NullString
		classroomID            sql.NullString
	)
	if err := row.Scan(&lesson.ID, &lesson.GroupID, &lesson.Title, &scheduledAt, &lesson.DurationMinutes, &lesson.Status,
		&lesson.StudentID, &lesson.InstructorID, &classroomID, &createdAt); err != nil {
		return persistence.Lesson{}, err
	}
	lesson.ScheduledAt = parseTimeLenient(scheduledAt)
	lesson.ClassroomID = classroomID.String
	lesson.CreatedAt = parseTimeLenient(createdAt)
	return lesson, nil
}
