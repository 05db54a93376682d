package sqlite

import (
	"context"

	"github.com/example/groupcal/internal/persistence"
)

// RescheduleRequestRepository implements persistence.RescheduleRequestRepository using SQLite
type RescheduleRequestRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewRescheduleRequestRepository creates a new SQLite reschedule request repository
func NewRescheduleRequestRepository(pool *ConnectionPool) *RescheduleRequestRepository {
	return &RescheduleRequestRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateRequest appends a reschedule request.
func (r *RescheduleRequestRepository) CreateRequest(ctx context.Context, request persistence.RescheduleRequest) error {
	if request.ID == "" || request.LessonID == "" {
		return persistence.ErrConstraintViolation
	}
	status := request.Status
	if status == "" {
		status = "pending"
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO reschedule_requests (id, lesson_id, requested_by, requested_date, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.LessonID,
		request.RequestedBy,
		formatTime(request.RequestedDate),
		request.Reason,
		status,
		formatTime(request.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// ListRequestsForLesson returns the lesson's requests oldest first.
func (r *RescheduleRequestRepository) ListRequestsForLesson(ctx context.Context, lessonID string) ([]persistence.RescheduleRequest, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, lesson_id, requested_by, requested_date, reason, status, created_at
		FROM reschedule_requests
		WHERE lesson_id = ?
		ORDER BY created_at ASC, id ASC`, lessonID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	requests := make([]persistence.RescheduleRequest, 0)
	for rows.Next() {
		var (
			request                  persistence.RescheduleRequest
			requestedDate, createdAt string
		)
		if err := rows.Scan(&request.ID, &request.LessonID, &request.RequestedBy, &requestedDate, &request.Reason, &request.Status, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if request.RequestedDate, err = parseTime(requestedDate); err != nil {
			return nil, err
		}
		if request.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return requests, nil
}
