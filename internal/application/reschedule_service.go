package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/groupcal/internal/calendar"
)

// DefaultRescheduleHorizon bounds how far ahead a lesson may be moved.
const DefaultRescheduleHorizon = 21 * 24 * time.Hour

// RescheduleRequestRepository captures the request operations needed by the service.
type RescheduleRequestRepository interface {
	CreateRequest(ctx context.Context, request RescheduleRequest) error
	ListRequestsForLesson(ctx context.Context, lessonID string) ([]RescheduleRequest, error)
}

// RescheduleSettings tunes the reschedule window and duplicate handling.
type RescheduleSettings struct {
	Horizon       time.Duration
	PendingPolicy PendingPolicy
	Location      *time.Location
}

func (s RescheduleSettings) withDefaults() RescheduleSettings {
	if s.Horizon <= 0 {
		s.Horizon = DefaultRescheduleHorizon
	}
	if s.PendingPolicy == "" {
		s.PendingPolicy = PendingAllowMultiple
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	return s
}

// RescheduleService lists reschedulable lessons and records reschedule requests.
type RescheduleService struct {
	requests    RescheduleRequestRepository
	lessons     LessonRepository
	settings    RescheduleSettings
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRescheduleService constructs a reschedule service with the provided dependencies.
func NewRescheduleService(requests RescheduleRequestRepository, lessons LessonRepository, settings RescheduleSettings, idGenerator func() string, now func() time.Time) *RescheduleService {
	return NewRescheduleServiceWithLogger(requests, lessons, settings, idGenerator, now, nil)
}

// NewRescheduleServiceWithLogger constructs a reschedule service with a specified logger.
func NewRescheduleServiceWithLogger(requests RescheduleRequestRepository, lessons LessonRepository, settings RescheduleSettings, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RescheduleService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &RescheduleService{
		requests:    requests,
		lessons:     lessons,
		settings:    settings.withDefaults(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Location reports the zone requested dates are interpreted in.
func (s *RescheduleService) Location() *time.Location {
	if s == nil {
		return time.UTC
	}
	return s.settings.Location
}

func (s *RescheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RescheduleService", operation, attrs...)
}

// window returns the start of today and the end of the reschedule horizon in
// the service location. Whole days of the horizon are counted as calendar
// days so the bound stays on local midnight across DST changes.
func (s *RescheduleService) window() (time.Time, time.Time) {
	today := calendar.StartOfDay(s.now(), s.settings.Location)
	days := int(s.settings.Horizon / (24 * time.Hour))
	rest := s.settings.Horizon % (24 * time.Hour)
	return today, today.AddDate(0, 0, days).Add(rest)
}

func (s *RescheduleService) eligible(lesson Lesson, today, horizon time.Time) bool {
	return lesson.Status == calendar.LessonScheduled &&
		lesson.ScheduledAt.After(today) &&
		lesson.ScheduledAt.Before(horizon)
}

// EligibleLessons returns the viewer's scheduled lessons strictly between the
// start of today and the end of the reschedule horizon.
func (s *RescheduleService) EligibleLessons(ctx context.Context, params EligibleLessonsParams) (lessons []Lesson, err error) {
	if s == nil {
		err = fmt.Errorf("RescheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "EligibleLessons",
		"group_id", params.Group.GroupID,
		"principal_id", params.Group.ViewerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list eligible lessons", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(lessons)).InfoContext(ctx, "eligible lessons listed")
	}()

	if !params.Group.valid() {
		err = ErrUnauthorized
		return
	}
	if s.lessons == nil {
		return []Lesson{}, nil
	}

	today, horizon := s.window()
	var raw []Lesson
	raw, err = s.lessons.ListLessons(ctx, LessonFilter{
		GroupID:   params.Group.GroupID,
		StudentID: params.Group.ViewerID,
		Status:    calendar.LessonScheduled,
		From:      &today,
		To:        &horizon,
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	lessons = make([]Lesson, 0, len(raw))
	for _, lesson := range raw {
		if s.eligible(lesson, today, horizon) {
			lessons = append(lessons, lesson)
		}
	}
	return
}

// SubmitRequest validates and records a reschedule request. On success exactly
// one pending request is stored.
func (s *RescheduleService) SubmitRequest(ctx context.Context, params SubmitRescheduleParams) (request RescheduleRequest, err error) {
	if s == nil {
		err = fmt.Errorf("RescheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SubmitRequest",
		"group_id", params.Group.GroupID,
		"principal_id", params.Group.ViewerID,
		"lesson_id", params.LessonID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit reschedule request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID).InfoContext(ctx, "reschedule request submitted")
	}()

	if !params.Group.valid() {
		err = ErrUnauthorized
		return
	}

	today, horizon := s.window()
	if vErr := s.validateSubmission(params, today, horizon); vErr.HasErrors() {
		err = vErr
		return
	}
	if s.lessons == nil || s.requests == nil {
		err = fmt.Errorf("reschedule repositories not configured")
		return
	}

	var lesson Lesson
	lesson, err = s.lessons.GetLesson(ctx, strings.TrimSpace(params.LessonID))
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if lesson.GroupID != params.Group.GroupID {
		err = ErrNotFound
		return
	}
	if lesson.StudentID != params.Group.ViewerID {
		err = ErrUnauthorized
		return
	}
	if !s.eligible(lesson, today, horizon) {
		vErr := &ValidationError{}
		vErr.add("lesson_id", "lesson is not eligible for rescheduling")
		err = vErr
		return
	}

	if s.settings.PendingPolicy == PendingSingle {
		var existing []RescheduleRequest
		existing, err = s.requests.ListRequestsForLesson(ctx, lesson.ID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		for _, prior := range existing {
			if prior.Status == ReschedulePending {
				err = ErrDuplicate
				return
			}
		}
	}

	request = RescheduleRequest{
		ID:            s.idGenerator(),
		LessonID:      lesson.ID,
		RequestedBy:   params.Group.ViewerID,
		RequestedDate: params.RequestedAt,
		Reason:        strings.TrimSpace(params.Reason),
		Status:        ReschedulePending,
		CreatedAt:     s.now(),
	}
	if err = s.requests.CreateRequest(ctx, request); err != nil {
		err = mapSubmissionError(err)
		request = RescheduleRequest{}
		return
	}
	return
}

func (s *RescheduleService) validateSubmission(params SubmitRescheduleParams, today, horizon time.Time) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(params.LessonID) == "" {
		vErr.add("lesson_id", "lesson is required")
	}
	if strings.TrimSpace(params.Reason) == "" {
		vErr.add("reason", "reason is required")
	}

	if params.RequestedAt.IsZero() {
		vErr.add("requested_at", "requested date and time are required")
		return vErr
	}
	requestedDay := calendar.StartOfDay(params.RequestedAt, s.settings.Location)
	lastDay := calendar.StartOfDay(horizon, s.settings.Location)
	switch {
	case params.RequestedAt.Before(today):
		vErr.add("requested_at", "requested date cannot be in the past")
	case requestedDay.After(lastDay):
		vErr.add("requested_at", "requested date is too far in the future")
	}
	return vErr
}

func mapSubmissionError(err error) error {
	mapped := mapRepoError(err)
	var vErr *ValidationError
	if errors.As(mapped, &vErr) {
		return fmt.Errorf("%w: submission failed: %v", ErrStorageFailure, err)
	}
	return mapped
}

// ListRequests returns the requests filed for a lesson. Elevated viewers see
// every lesson of their group; other members only their own lessons.
func (s *RescheduleService) ListRequests(ctx context.Context, group GroupContext, lessonID string) (requests []RescheduleRequest, err error) {
	if s == nil {
		err = fmt.Errorf("RescheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListRequests",
		"group_id", group.GroupID,
		"principal_id", group.ViewerID,
		"lesson_id", lessonID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reschedule requests", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(requests)).InfoContext(ctx, "reschedule requests listed")
	}()

	if !group.valid() {
		err = ErrUnauthorized
		return
	}
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		vErr := &ValidationError{}
		vErr.add("lesson_id", "lesson is required")
		err = vErr
		return
	}
	if s.lessons == nil || s.requests == nil {
		return []RescheduleRequest{}, nil
	}

	var lesson Lesson
	lesson, err = s.lessons.GetLesson(ctx, lessonID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if lesson.GroupID != group.GroupID {
		err = ErrNotFound
		return
	}
	if !group.Elevated() && lesson.StudentID != group.ViewerID {
		err = ErrUnauthorized
		return
	}

	requests, err = s.requests.ListRequestsForLesson(ctx, lesson.ID)
	if err != nil {
		err = mapRepoError(err)
		requests = nil
		return
	}
	if requests == nil {
		requests = []RescheduleRequest{}
	}
	return
}
