package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/groupcal/internal/application"
)

var (
	errBadRequestBody  = errors.New("잘못된 요청 형식입니다.")
	errMissingIdentity = errors.New("그룹 또는 사용자 정보가 없습니다.")
	errInvalidCode     = errors.New("출석 코드가 올바르지 않습니다.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeBytes(ctx context.Context, w http.ResponseWriter, contentType string, body []byte) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var vErr *application.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrExpired):
		return http.StatusGone
	case errors.Is(err, application.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, application.ErrStorageFailure):
		return http.StatusServiceUnavailable
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	status := statusFor(err)
	switch status {
	case http.StatusForbidden:
		r.writeJSON(ctx, w, status, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   localizedStatusMessage(status),
		})
	case http.StatusUnprocessableEntity:
		var vErr *application.ValidationError
		errors.As(err, &vErr)
		r.writeJSON(ctx, w, status, errorResponse{
			Message: localizedStatusMessage(status),
			Errors:  localizeValidationErrors(vErr),
		})
	default:
		r.writeJSON(ctx, w, status, errorResponse{Message: localizedStatusMessage(status)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "요청 내용이 올바르지 않습니다."
	case http.StatusUnauthorized:
		return "인증이 필요합니다."
	case http.StatusForbidden:
		return "이 작업을 수행할 권한이 없습니다."
	case http.StatusNotFound:
		return "요청한 항목을 찾을 수 없습니다."
	case http.StatusGone:
		return "만료된 출석 코드입니다."
	case http.StatusConflict:
		return "이미 처리된 요청입니다."
	case http.StatusUnprocessableEntity:
		return "입력 내용을 확인해 주세요."
	case http.StatusServiceUnavailable:
		return "일시적인 오류로 처리하지 못했습니다. 잠시 후 다시 시도해 주세요."
	default:
		return "서버 내부 오류가 발생했습니다."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "is required":
		return "필수 항목입니다."
	case "invalid format":
		return "형식이 올바르지 않습니다."
	case "lesson is required":
		return "수업을 선택해 주세요."
	case "requested date and time are required":
		return "희망 날짜와 시간을 입력해 주세요."
	case "reason is required":
		return "사유를 입력해 주세요."
	case "requested date cannot be in the past":
		return "지난 날짜는 선택할 수 없습니다."
	case "requested date is too far in the future":
		return "3주 이내의 날짜만 선택할 수 있습니다."
	case "lesson is not eligible for rescheduling":
		return "일정을 변경할 수 없는 수업입니다."
	case "lesson is cancelled":
		return "취소된 수업입니다."
	case "code is required":
		return "출석 코드를 입력해 주세요."
	case "end date must not be before start date":
		return "종료일은 시작일보다 빠를 수 없습니다."
	case "month must be between 1 and 12":
		return "월은 1에서 12 사이여야 합니다."
	case "year is out of range":
		return "연도가 올바르지 않습니다."
	default:
		if strings.HasPrefix(message, "range must not exceed") {
			return "조회 기간이 너무 깁니다."
		}
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
