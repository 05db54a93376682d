package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/groupcal/internal/application"
)

type attendanceService interface {
	IssueCode(ctx context.Context, params application.IssueCodeParams) (application.AttendanceCode, error)
	CheckIn(ctx context.Context, params application.CheckInParams) (application.CheckInOutcome, error)
	RenderCodePNG(code string, size int) ([]byte, error)
	Location() *time.Location
}

type AttendanceHandler struct {
	service   attendanceService
	responder responder
	logger    *slog.Logger
}

func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

type issueCodeRequest struct {
	LessonID string `json:"lesson_id" validate:"required,max=64"`
}

type codeResponse struct {
	Code      string `json:"code"`
	LessonID  string `json:"lesson_id"`
	ExpiresAt string `json:"expires_at"`
	QRURL     string `json:"qr_url"`
}

// IssueCode serves POST /attendance/codes.
func (h *AttendanceHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	group, _ := GroupFromContext(r.Context())

	var req issueCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(r.Context(), w, "IssueCode", err)
		return
	}

	logger := h.log(r.Context(), "IssueCode", "principal_id", group.ViewerID, "lesson_id", req.LessonID)
	code, err := h.service.IssueCode(r.Context(), application.IssueCodeParams{
		Group:    group,
		LessonID: strings.TrimSpace(req.LessonID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "attendance code issue failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "attendance code issued")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, codeResponse{
		Code:      code.Code,
		LessonID:  code.LessonID,
		ExpiresAt: code.ExpiresAt.In(h.service.Location()).Format(time.RFC3339),
		QRURL:     "/attendance/codes/" + url.PathEscape(code.Code) + "/qr",
	})
}

// QRCode serves GET /attendance/codes/{code}/qr.
func (h *AttendanceHandler) QRCode(w http.ResponseWriter, r *http.Request, code string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	size := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, application.NewFieldError("size", "invalid format"))
			return
		}
		size = parsed
	}

	logger := h.log(r.Context(), "QRCode", "size", size)
	png, err := h.service.RenderCodePNG(code, size)
	if err != nil {
		logger.ErrorContext(r.Context(), "qr rendering failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.responder.writeBytes(r.Context(), w, "image/png", png)
}

type checkInRequest struct {
	Code string `json:"code" validate:"required,max=128"`
}

type checkInResponse struct {
	State       string `json:"state"`
	Status      string `json:"status,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Message     string `json:"message"`
	LessonID    string `json:"lesson_id,omitempty"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	MemberName  string `json:"member_name,omitempty"`
	RecordID    string `json:"record_id,omitempty"`
	CheckInAt   string `json:"check_in_at,omitempty"`
}

// CheckIn serves POST /attendance/check-ins.
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	group, _ := GroupFromContext(r.Context())

	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		if _, invalid := err.(*application.ValidationError); invalid {
			h.log(r.Context(), "CheckIn", "error_kind", "validation").WarnContext(r.Context(), "empty check-in code")
			h.responder.writeJSON(r.Context(), w, http.StatusNotFound, checkInResponse{
				State:   string(application.CheckInRejected),
				Reason:  string(application.RejectInvalidCode),
				Message: errInvalidCode.Error(),
			})
			return
		}
		h.writeDecodeError(r.Context(), w, "CheckIn", err)
		return
	}

	logger := h.log(r.Context(), "CheckIn", "member_id", group.ViewerID)
	outcome, err := h.service.CheckIn(r.Context(), application.CheckInParams{Group: group, Code: req.Code})
	if err != nil {
		logger.WarnContext(r.Context(), "check-in rejected", "reason", outcome.Reason, "error_kind", application.ErrorKind(err))
		if outcome.State != application.CheckInRejected {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, statusFor(err), checkInResponse{
			State:    string(outcome.State),
			Reason:   string(outcome.Reason),
			Message:  rejectMessage(outcome.Reason),
			LessonID: outcome.LessonID,
		})
		return
	}

	logger.With("status", outcome.Status).InfoContext(r.Context(), "check-in accepted")
	loc := h.service.Location()
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, checkInResponse{
		State:       string(outcome.State),
		Status:      string(outcome.Status),
		Message:     acceptMessage(outcome.Status),
		LessonID:    outcome.LessonID,
		ScheduledAt: outcome.ScheduledAt.In(loc).Format(time.RFC3339),
		MemberName:  outcome.MemberName,
		RecordID:    outcome.Record.ID,
		CheckInAt:   outcome.Record.CheckInAt.In(loc).Format(time.RFC3339),
	})
}

func (h *AttendanceHandler) writeDecodeError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	if vErr, ok := err.(*application.ValidationError); ok {
		h.log(ctx, operation, "error_kind", "validation").WarnContext(ctx, "invalid request", "error", err)
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}
	h.log(ctx, operation, "error_kind", "bad_request").ErrorContext(ctx, "failed to decode request", "error", err)
	h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
}

func rejectMessage(reason application.RejectReason) string {
	switch reason {
	case application.RejectInvalidCode:
		return errInvalidCode.Error()
	case application.RejectExpired:
		return "만료된 출석 코드입니다."
	case application.RejectDuplicate:
		return "이미 출석 처리되었습니다."
	default:
		return "출석 처리 중 오류가 발생했습니다. 다시 시도해 주세요."
	}
}

func acceptMessage(status application.AttendanceStatus) string {
	if status == application.AttendanceLate {
		return "지각으로 출석 처리되었습니다."
	}
	return "출석 처리되었습니다."
}
