package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/groupcal/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using SQLite
type ReservationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewReservationRepository creates a new SQLite reservation repository
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateReservation inserts a room reservation.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.GroupID == "" || reservation.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO room_reservations (id, group_id, room_id, reserved_by, title, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.GroupID,
		reservation.RoomID,
		reservation.ReservedBy,
		reservation.Title,
		formatTime(reservation.StartAt),
		formatTime(reservation.EndAt),
		formatTime(reservation.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// ListReservations returns the group's reservations overlapping the window.
func (r *ReservationRepository) ListReservations(ctx context.Context, groupID string, window persistence.TimeRange) ([]persistence.Reservation, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, group_id, room_id, reserved_by, title, start_at, end_at, created_at
		FROM room_reservations
		WHERE group_id = ?
		  AND (start_at IS NULL OR start_at <= ?)
		  AND (end_at IS NULL OR end_at >= ?)
		ORDER BY start_at ASC, id ASC`,
		groupID,
		formatTime(window.To),
		formatTime(window.From),
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	reservations := make([]persistence.Reservation, 0)
	for rows.Next() {
		var (
			reservation               persistence.Reservation
			startAt, endAt, createdAt sql.NullString
		)
		if err := rows.Scan(&reservation.ID, &reservation.GroupID, &reservation.RoomID, &reservation.ReservedBy, &reservation.Title, &startAt, &endAt, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		reservation.StartAt = parseTimeLenient(startAt)
		reservation.EndAt = parseTimeLenient(endAt)
		reservation.CreatedAt = parseTimeLenient(createdAt)
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}
