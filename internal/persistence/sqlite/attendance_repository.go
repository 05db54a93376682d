package sqlite

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/example/groupcal/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceCodeRepository and
// persistence.AttendanceRecordRepository using SQLite.
type AttendanceRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewAttendanceRepository creates a new SQLite attendance repository
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool, mapper: NewErrorMapper()}
}

// codeDigest keys stored codes so that a database dump does not expose
// codes that are still valid.
func codeDigest(code string) string {
	sum := blake2b.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CreateCode stores a check-in code.
func (r *AttendanceRepository) CreateCode(ctx context.Context, code persistence.AttendanceCode) error {
	if code.Code == "" || code.GroupID == "" || code.LessonID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendance_codes (code_digest, group_id, lesson_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		codeDigest(code.Code),
		code.GroupID,
		code.LessonID,
		formatTime(code.ExpiresAt),
		formatTime(code.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// GetCode looks up a code within a group. Codes of other groups are reported
// as not found.
func (r *AttendanceRepository) GetCode(ctx context.Context, groupID, code string) (persistence.AttendanceCode, error) {
	if code == "" {
		return persistence.AttendanceCode{}, persistence.ErrNotFound
	}
	var expiresAt, createdAt string
	result := persistence.AttendanceCode{Code: code}
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT group_id, lesson_id, expires_at, created_at
		FROM attendance_codes
		WHERE code_digest = ? AND group_id = ?`,
		codeDigest(code), groupID,
	).Scan(&result.GroupID, &result.LessonID, &expiresAt, &createdAt)
	if err != nil {
		return persistence.AttendanceCode{}, r.mapper.MapError(err)
	}
	if result.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.AttendanceCode{}, err
	}
	if result.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AttendanceCode{}, err
	}
	return result, nil
}

// DeleteExpiredCodes removes codes that expired before the reference time.
func (r *AttendanceRepository) DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM attendance_codes WHERE expires_at < ?`, formatTime(before))
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return result.RowsAffected()
}

// CreateRecord inserts a check-in. A second record for the same lesson and
// member fails with persistence.ErrDuplicate.
func (r *AttendanceRepository) CreateRecord(ctx context.Context, record persistence.AttendanceRecord) error {
	if record.ID == "" || record.LessonID == "" || record.MemberID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, lesson_id, member_id, status, check_in_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.LessonID,
		record.MemberID,
		record.Status,
		formatTime(record.CheckInAt),
	)
	return r.mapper.MapError(err)
}

// GetRecord retrieves the check-in of a member for a lesson.
func (r *AttendanceRepository) GetRecord(ctx context.Context, lessonID, memberID string) (persistence.AttendanceRecord, error) {
	var (
		record    persistence.AttendanceRecord
		checkInAt string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, lesson_id, member_id, status, check_in_at
		FROM attendance_records
		WHERE lesson_id = ? AND member_id = ?`, lessonID, memberID,
	).Scan(&record.ID, &record.LessonID, &record.MemberID, &record.Status, &checkInAt)
	if err != nil {
		return persistence.AttendanceRecord{}, r.mapper.MapError(err)
	}
	if record.CheckInAt, err = parseTime(checkInAt); err != nil {
		return persistence.AttendanceRecord{}, err
	}
	return record, nil
}

// ListRecordsForLesson returns the lesson's check-ins in arrival order.
func (r *AttendanceRepository) ListRecordsForLesson(ctx context.Context, lessonID string) ([]persistence.AttendanceRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, lesson_id, member_id, status, check_in_at
		FROM attendance_records
		WHERE lesson_id = ?
		ORDER BY check_in_at ASC, id ASC`, lessonID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	records := make([]persistence.AttendanceRecord, 0)
	for rows.Next() {
		var (
			record    persistence.AttendanceRecord
			checkInAt string
		)
		if err := rows.Scan(&record.ID, &record.LessonID, &record.MemberID, &record.Status, &checkInAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if record.CheckInAt, err = parseTime(checkInAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return records, nil
}
