package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/example/groupcal/internal/calendar"
	"github.com/example/groupcal/internal/persistence"
)

const (
	// DefaultLateGrace is how long after the scheduled start a scan still
	// counts as present.
	DefaultLateGrace = 5 * time.Minute
	// DefaultCodeTTL is how long an issued code accepts scans.
	DefaultCodeTTL = 10 * time.Minute

	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// AttendanceCodeRepository captures the code operations needed by the service.
type AttendanceCodeRepository interface {
	CreateCode(ctx context.Context, code AttendanceCode) error
	GetCode(ctx context.Context, groupID, code string) (AttendanceCode, error)
}

// AttendanceRecordRepository captures the record operations needed by the
// service. CreateRecord must reject a second record for the same lesson and
// member with persistence.ErrDuplicate.
type AttendanceRecordRepository interface {
	GetRecord(ctx context.Context, lessonID, memberID string) (AttendanceRecord, error)
	CreateRecord(ctx context.Context, record AttendanceRecord) error
}

// LessonRepository provides lesson lookups.
type LessonRepository interface {
	GetLesson(ctx context.Context, id string) (Lesson, error)
	ListLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error)
}

// MemberDirectory resolves group members.
type MemberDirectory interface {
	GetMember(ctx context.Context, groupID, id string) (Member, error)
	CountMembersByRole(ctx context.Context, groupID string, roles ...Role) (int, error)
}

// AttendanceSettings tunes check-in timing. Location is the zone check-in
// outcomes are presented in.
type AttendanceSettings struct {
	LateGrace time.Duration
	CodeTTL   time.Duration
	Location  *time.Location
}

func (s AttendanceSettings) withDefaults() AttendanceSettings {
	if s.LateGrace <= 0 {
		s.LateGrace = DefaultLateGrace
	}
	if s.CodeTTL <= 0 {
		s.CodeTTL = DefaultCodeTTL
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	return s
}

// AttendanceService runs the check-in protocol and issues check-in codes.
type AttendanceService struct {
	codes       AttendanceCodeRepository
	records     AttendanceRecordRepository
	lessons     LessonRepository
	members     MemberDirectory
	settings    AttendanceSettings
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService constructs an attendance service with the provided dependencies.
func NewAttendanceService(codes AttendanceCodeRepository, records AttendanceRecordRepository, lessons LessonRepository, members MemberDirectory, settings AttendanceSettings, idGenerator func() string, now func() time.Time) *AttendanceService {
	return NewAttendanceServiceWithLogger(codes, records, lessons, members, settings, idGenerator, now, nil)
}

// NewAttendanceServiceWithLogger constructs an attendance service with a specified logger.
func NewAttendanceServiceWithLogger(codes AttendanceCodeRepository, records AttendanceRecordRepository, lessons LessonRepository, members MemberDirectory, settings AttendanceSettings, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		codes:       codes,
		records:     records,
		lessons:     lessons,
		members:     members,
		settings:    settings.withDefaults(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Location reports the zone check-in outcomes are presented in.
func (s *AttendanceService) Location() *time.Location {
	if s == nil {
		return time.UTC
	}
	return s.settings.Location
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// CheckIn classifies a scan. Checks run in a fixed order and the first failure
// wins: unknown code, expired code, existing record, then the late threshold.
// A rejected scan returns both an outcome carrying the reason and the matching
// sentinel error.
func (s *AttendanceService) CheckIn(ctx context.Context, params CheckInParams) (outcome CheckInOutcome, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CheckIn",
		"group_id", params.Group.GroupID,
		"member_id", params.Group.ViewerID,
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "check-in rejected",
				"state", outcome.State,
				"reason", outcome.Reason,
				"error", err,
				"error_kind", ErrorKind(err),
			)
			return
		}
		logger.With(
			"lesson_id", outcome.LessonID,
			"record_id", outcome.Record.ID,
			"status", outcome.Status,
		).InfoContext(ctx, "check-in accepted")
	}()

	if !params.Group.valid() {
		err = ErrUnauthorized
		return
	}
	if s.codes == nil || s.records == nil || s.lessons == nil {
		err = fmt.Errorf("attendance repositories not configured")
		return
	}

	reject := func(reason RejectReason, cause error) {
		outcome.State = CheckInRejected
		outcome.Reason = reason
		err = cause
	}

	logger.DebugContext(ctx, "check-in validating")

	scanned := strings.TrimSpace(params.Code)
	if scanned == "" {
		reject(RejectInvalidCode, ErrNotFound)
		return
	}

	code, lookupErr := s.codes.GetCode(ctx, params.Group.GroupID, scanned)
	if lookupErr != nil {
		if isNotFound(lookupErr) {
			reject(RejectInvalidCode, ErrNotFound)
			return
		}
		reject(RejectStorageError, storageFailure(lookupErr))
		return
	}
	outcome.LessonID = code.LessonID

	now := s.now()
	if now.After(code.ExpiresAt) {
		reject(RejectExpired, ErrExpired)
		return
	}

	_, recordErr := s.records.GetRecord(ctx, code.LessonID, params.Group.ViewerID)
	switch {
	case recordErr == nil:
		reject(RejectDuplicate, ErrDuplicate)
		return
	case !isNotFound(recordErr):
		reject(RejectStorageError, storageFailure(recordErr))
		return
	}

	lesson, lessonErr := s.lessons.GetLesson(ctx, code.LessonID)
	if lessonErr != nil {
		if isNotFound(lessonErr) {
			reject(RejectInvalidCode, ErrNotFound)
			return
		}
		reject(RejectStorageError, storageFailure(lessonErr))
		return
	}
	outcome.ScheduledAt = lesson.ScheduledAt

	status := AttendancePresent
	if now.After(lesson.ScheduledAt.Add(s.settings.LateGrace)) {
		status = AttendanceLate
	}

	record := AttendanceRecord{
		ID:        s.idGenerator(),
		LessonID:  lesson.ID,
		MemberID:  params.Group.ViewerID,
		Status:    status,
		CheckInAt: now,
	}
	if createErr := s.records.CreateRecord(ctx, record); createErr != nil {
		if errors.Is(createErr, persistence.ErrDuplicate) || errors.Is(createErr, ErrDuplicate) {
			reject(RejectDuplicate, ErrDuplicate)
			return
		}
		reject(RejectStorageError, storageFailure(createErr))
		return
	}

	outcome.State = CheckInAccepted
	outcome.Status = status
	outcome.Record = record
	outcome.MemberName = s.memberName(ctx, logger, params.Group)
	return
}

func (s *AttendanceService) memberName(ctx context.Context, logger *slog.Logger, group GroupContext) string {
	if s.members == nil {
		return ""
	}
	member, err := s.members.GetMember(ctx, group.GroupID, group.ViewerID)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve member name", "error", err)
		return ""
	}
	return member.DisplayName
}

// IssueCode opens a check-in window for a lesson of the viewer's group. Only
// elevated viewers may issue codes.
func (s *AttendanceService) IssueCode(ctx context.Context, params IssueCodeParams) (code AttendanceCode, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "IssueCode",
		"group_id", params.Group.GroupID,
		"principal_id", params.Group.ViewerID,
		"lesson_id", params.LessonID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to issue attendance code", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("expires_at", code.ExpiresAt).InfoContext(ctx, "attendance code issued")
	}()

	if !params.Group.valid() || !params.Group.Elevated() {
		err = ErrUnauthorized
		return
	}

	lessonID := strings.TrimSpace(params.LessonID)
	if lessonID == "" {
		vErr := &ValidationError{}
		vErr.add("lesson_id", "lesson is required")
		err = vErr
		return
	}
	if s.codes == nil || s.lessons == nil {
		err = fmt.Errorf("attendance repositories not configured")
		return
	}

	var lesson Lesson
	lesson, err = s.lessons.GetLesson(ctx, lessonID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if lesson.GroupID != params.Group.GroupID {
		err = ErrNotFound
		return
	}
	if lesson.Status == calendar.LessonCancelled {
		vErr := &ValidationError{}
		vErr.add("lesson_id", "lesson is cancelled")
		err = vErr
		return
	}

	now := s.now()
	code = AttendanceCode{
		Code:      s.idGenerator(),
		GroupID:   params.Group.GroupID,
		LessonID:  lesson.ID,
		ExpiresAt: now.Add(s.settings.CodeTTL),
		CreatedAt: now,
	}
	if err = s.codes.CreateCode(ctx, code); err != nil {
		err = mapRepoError(err)
		code = AttendanceCode{}
		return
	}
	return
}

// RenderCodePNG encodes code as a QR image. size is the edge length in pixels
// and is clamped to a sensible range; zero picks the default.
func (s *AttendanceService) RenderCodePNG(code string, size int) ([]byte, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		vErr := &ValidationError{}
		vErr.add("code", "code is required")
		return nil, vErr
	}
	switch {
	case size == 0:
		size = defaultQRSize
	case size < minQRSize:
		size = minQRSize
	case size > maxQRSize:
		size = maxQRSize
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

func storageFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

// mapRepoError maps persistence sentinels onto application errors. Anything
// unrecognised is a storage failure.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isNotFound(err):
		return ErrNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, persistence.ErrDuplicate):
		return ErrDuplicate
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("request", "request violates a storage constraint")
		return vErr
	}
	return storageFailure(err)
}
