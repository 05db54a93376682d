package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/groupcal/internal/application"
)

// requestedAtLayout is the form's datetime-local layout.
const requestedAtLayout = "2006-01-02T15:04"

type rescheduleService interface {
	EligibleLessons(ctx context.Context, params application.EligibleLessonsParams) ([]application.Lesson, error)
	SubmitRequest(ctx context.Context, params application.SubmitRescheduleParams) (application.RescheduleRequest, error)
	ListRequests(ctx context.Context, group application.GroupContext, lessonID string) ([]application.RescheduleRequest, error)
	Location() *time.Location
}

type RescheduleHandler struct {
	service   rescheduleService
	responder responder
	logger    *slog.Logger
}

func NewRescheduleHandler(service rescheduleService, logger *slog.Logger) *RescheduleHandler {
	base := defaultLogger(logger)
	return &RescheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RescheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RescheduleHandler", operation, attrs...)
}

type lessonDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	InstructorID    string `json:"instructor_id,omitempty"`
	ClassroomID     string `json:"classroom_id,omitempty"`
}

type eligibleLessonsResponse struct {
	Lessons []lessonDTO `json:"lessons"`
}

// EligibleLessons serves GET /reschedule/lessons.
func (h *RescheduleHandler) EligibleLessons(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	group, _ := GroupFromContext(r.Context())
	logger := h.log(r.Context(), "EligibleLessons", "principal_id", group.ViewerID)

	lessons, err := h.service.EligibleLessons(r.Context(), application.EligibleLessonsParams{Group: group})
	if err != nil {
		logger.ErrorContext(r.Context(), "eligible lesson listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := eligibleLessonsResponse{Lessons: make([]lessonDTO, 0, len(lessons))}
	for _, lesson := range lessons {
		resp.Lessons = append(resp.Lessons, lessonDTO{
			ID:              lesson.ID,
			Title:           lesson.Title,
			ScheduledAt:     lesson.ScheduledAt.Format(time.RFC3339),
			DurationMinutes: lesson.DurationMinutes,
			Status:          string(lesson.Status),
			InstructorID:    lesson.InstructorID,
			ClassroomID:     lesson.ClassroomID,
		})
	}

	logger.With("result_count", len(resp.Lessons)).InfoContext(r.Context(), "eligible lessons listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type submitRescheduleRequest struct {
	LessonID    string `json:"lesson_id" validate:"max=64"`
	RequestedAt string `json:"requested_at" validate:"max=40"`
	Reason      string `json:"reason" validate:"max=500"`
}

type rescheduleRequestDTO struct {
	ID            string `json:"id"`
	LessonID      string `json:"lesson_id"`
	RequestedBy   string `json:"requested_by"`
	RequestedDate string `json:"requested_date"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func toRescheduleRequestDTO(request application.RescheduleRequest) rescheduleRequestDTO {
	return rescheduleRequestDTO{
		ID:            request.ID,
		LessonID:      request.LessonID,
		RequestedBy:   request.RequestedBy,
		RequestedDate: request.RequestedDate.Format(time.RFC3339),
		Reason:        request.Reason,
		Status:        string(request.Status),
		CreatedAt:     request.CreatedAt.Format(time.RFC3339),
	}
}

// SubmitRequest serves POST /reschedule/requests. Missing fields are left to
// the service so that every field error is reported together.
func (h *RescheduleHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	group, _ := GroupFromContext(r.Context())

	var req submitRescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		if vErr, ok := err.(*application.ValidationError); ok {
			h.log(r.Context(), "SubmitRequest", "error_kind", "validation").WarnContext(r.Context(), "invalid request", "error", err)
			h.responder.handleServiceError(r.Context(), w, vErr)
			return
		}
		h.log(r.Context(), "SubmitRequest", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	requestedAt, ok := parseRequestedAt(req.RequestedAt, h.service.Location())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.NewFieldError("requested_at", "invalid format"))
		return
	}

	logger := h.log(r.Context(), "SubmitRequest", "principal_id", group.ViewerID, "lesson_id", req.LessonID)
	request, err := h.service.SubmitRequest(r.Context(), application.SubmitRescheduleParams{
		Group:       group,
		LessonID:    req.LessonID,
		RequestedAt: requestedAt,
		Reason:      req.Reason,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reschedule submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "reschedule request submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRescheduleRequestDTO(request))
}

// parseRequestedAt accepts RFC 3339 or the form's local layout. A blank value
// yields the zero time.
func parseRequestedAt(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, true
	}
	if loc == nil {
		loc = time.UTC
	}
	parsed, err := time.ParseInLocation(requestedAtLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

type listRescheduleRequestsResponse struct {
	Requests []rescheduleRequestDTO `json:"requests"`
}

// ListRequests serves GET /reschedule/requests?lesson_id=.
func (h *RescheduleHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	group, _ := GroupFromContext(r.Context())
	lessonID := strings.TrimSpace(r.URL.Query().Get("lesson_id"))
	logger := h.log(r.Context(), "ListRequests", "principal_id", group.ViewerID, "lesson_id", lessonID)

	requests, err := h.service.ListRequests(r.Context(), group, lessonID)
	if err != nil {
		logger.ErrorContext(r.Context(), "reschedule request listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := listRescheduleRequestsResponse{Requests: make([]rescheduleRequestDTO, 0, len(requests))}
	for _, request := range requests {
		resp.Requests = append(resp.Requests, toRescheduleRequestDTO(request))
	}
	logger.With("result_count", len(resp.Requests)).InfoContext(r.Context(), "reschedule requests listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}
