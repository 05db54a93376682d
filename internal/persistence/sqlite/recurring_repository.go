package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/groupcal/internal/persistence"
)

const exceptDateLayout = "2006-01-02"

// RecurringScheduleRepository implements persistence.RecurringScheduleRepository using SQLite
type RecurringScheduleRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewRecurringScheduleRepository creates a new SQLite recurring schedule repository
func NewRecurringScheduleRepository(pool *ConnectionPool) *RecurringScheduleRepository {
	return &RecurringScheduleRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateRecurringSchedule inserts a slot. Weekdays are stored as a bitmask
// with Sunday as bit 0; a blank frequency is stored as weekly.
func (r *RecurringScheduleRepository) CreateRecurringSchedule(ctx context.Context, schedule persistence.RecurringSchedule) error {
	if schedule.ID == "" || schedule.GroupID == "" {
		return persistence.ErrConstraintViolation
	}
	frequency := schedule.Frequency
	if frequency == "" {
		frequency = "weekly"
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO recurring_schedules (id, group_id, title, instructor_id, classroom_id, frequency, weekdays, start_clock, end_clock, valid_from, valid_until, except_dates, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schedule.ID,
		schedule.GroupID,
		schedule.Title,
		schedule.InstructorID,
		nullableString(schedule.ClassroomID),
		frequency,
		encodeWeekdays(schedule.Weekdays),
		schedule.StartClock,
		schedule.EndClock,
		formatTime(schedule.ValidFrom),
		formatNullableTime(schedule.ValidUntil),
		encodeExceptDates(schedule.ExceptDates),
		formatTime(schedule.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// ListRecurringSchedules returns the group's slots whose validity overlaps the window.
func (r *RecurringScheduleRepository) ListRecurringSchedules(ctx context.Context, groupID string, window persistence.TimeRange) ([]persistence.RecurringSchedule, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, group_id, title, instructor_id, classroom_id, frequency, weekdays, start_clock, end_clock, valid_from, valid_until, except_dates, created_at
		FROM recurring_schedules
		WHERE group_id = ?
		  AND (valid_from IS NULL OR valid_from <= ?)
		  AND (valid_until IS NULL OR valid_until >= ?)
		ORDER BY created_at ASC, id ASC`,
		groupID,
		formatTime(window.To),
		formatTime(window.From),
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	schedules := make([]persistence.RecurringSchedule, 0)
	for rows.Next() {
		var (
			schedule                         persistence.RecurringSchedule
			classroomID                      sql.NullString
			weekdays                         int64
			validFrom, validUntil, createdAt sql.NullString
			exceptDates                      string
		)
		if err := rows.Scan(&schedule.ID, &schedule.GroupID, &schedule.Title, &schedule.InstructorID, &classroomID, &schedule.Frequency,
			&weekdays, &schedule.StartClock, &schedule.EndClock, &validFrom, &validUntil, &exceptDates, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		schedule.ClassroomID = classroomID.String
		schedule.Weekdays = decodeWeekdays(weekdays)
		schedule.ValidFrom = parseTimeLenient(validFrom)
		if validUntil.Valid {
			until := parseTimeLenient(validUntil)
			schedule.ValidUntil = &until
		}
		schedule.ExceptDates = decodeExceptDates(exceptDates)
		schedule.CreatedAt = parseTimeLenient(createdAt)
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return schedules, nil
}

// encodeExceptDates stores the calendar date of each value as YYYY-MM-DD.
func encodeExceptDates(dates []time.Time) string {
	parts := make([]string, 0, len(dates))
	for _, date := range dates {
		parts = append(parts, date.Format(exceptDateLayout))
	}
	return strings.Join(parts, ",")
}

// decodeExceptDates returns the stored dates as UTC midnights, dropping
// unparsable entries.
func decodeExceptDates(value string) []time.Time {
	if value == "" {
		return nil
	}
	dates := make([]time.Time, 0)
	for _, part := range strings.Split(value, ",") {
		date, err := time.Parse(exceptDateLayout, strings.TrimSpace(part))
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}
