package sqlite

import (
	"context"

	"github.com/example/groupcal/internal/persistence"
)

// ClassroomRepository implements persistence.ClassroomRepository using SQLite
type ClassroomRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewClassroomRepository creates a new SQLite classroom repository
func NewClassroomRepository(pool *ConnectionPool) *ClassroomRepository {
	return &ClassroomRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateClassroom inserts a classroom.
func (r *ClassroomRepository) CreateClassroom(ctx context.Context, classroom persistence.Classroom) error {
	if classroom.ID == "" || classroom.GroupID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO classrooms (id, group_id, name, position) VALUES (?, ?, ?, ?)`,
		classroom.ID, classroom.GroupID, classroom.Name, classroom.Position,
	)
	return r.mapper.MapError(err)
}

// ListClassrooms returns the group's classrooms ordered by position then ID.
func (r *ClassroomRepository) ListClassrooms(ctx context.Context, groupID string) ([]persistence.Classroom, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, group_id, name, position
		FROM classrooms
		WHERE group_id = ?
		ORDER BY position ASC, id ASC`, groupID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	classrooms := make([]persistence.Classroom, 0)
	for rows.Next() {
		var classroom persistence.Classroom
		if err := rows.Scan(&classroom.ID, &classroom.GroupID, &classroom.Name, &classroom.Position); err != nil {
			return nil, r.mapper.MapError(err)
		}
		classrooms = append(classrooms, classroom)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return classrooms, nil
}
