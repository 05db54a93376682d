package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/groupcal/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite
type EventRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateEvent inserts a calendar event.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.CalendarEvent) error {
	if event.ID == "" || event.GroupID == "" {
		return persistence.ErrConstraintViolation
	}

	var endAt sql.NullString
	if !event.EndAt.IsZero() {
		endAt = sql.NullString{String: formatTime(event.EndAt), Valid: true}
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, group_id, title, start_at, end_at, all_day, color_key, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.GroupID,
		event.Title,
		formatTime(event.StartAt),
		endAt,
		event.AllDay,
		nullableString(event.ColorKey),
		event.CreatedBy,
		formatTime(event.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// ListEvents returns the group's events overlapping the window, ordered by
// start. Rows with unreadable timestamps are returned with zero times.
func (r *EventRepository) ListEvents(ctx context.Context, groupID string, window persistence.TimeRange) ([]persistence.CalendarEvent, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, group_id, title, start_at, end_at, all_day, color_key, created_by, created_at
		FROM calendar_events
		WHERE group_id = ?
		  AND (start_at IS NULL OR start_at <= ?)
		  AND (COALESCE(end_at, start_at) IS NULL OR COALESCE(end_at, start_at) >= ?)
		ORDER BY start_at ASC, id ASC`,
		groupID,
		formatTime(window.To),
		formatTime(window.From),
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	events := make([]persistence.CalendarEvent, 0)
	for rows.Next() {
		var (
			event          persistence.CalendarEvent
			startAt, endAt sql.NullString
			colorKey       sql.NullString
			createdAt      sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.GroupID, &event.Title, &startAt, &endAt, &event.AllDay, &colorKey, &event.CreatedBy, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		event.StartAt = parseTimeLenient(startAt)
		event.EndAt = parseTimeLenient(endAt)
		event.ColorKey = colorKey.String
		event.CreatedAt = parseTimeLenient(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return events, nil
}
