package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/example/groupcal/internal/application"
	"github.com/example/groupcal/internal/calendar"
	"github.com/example/groupcal/internal/holiday"
)

const icsProductID = "-//groupcal//calendar export//KO"

type calendarService interface {
	CalendarView(ctx context.Context, params application.CalendarViewParams) (application.View, error)
	Holidays(ctx context.Context, year int, month time.Month) ([]holiday.Holiday, error)
	Location() *time.Location
}

type CalendarHandler struct {
	service   calendarService
	responder responder
	logger    *slog.Logger
	now       func() time.Time
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	return &CalendarHandler{service: service, responder: newResponder(base), logger: base, now: time.Now}
}

func (h *CalendarHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CalendarHandler", operation, attrs...)
}

type calendarQuery struct {
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	From  string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Scope string `json:"scope" validate:"omitempty,oneof=all mine"`
}

func (h *CalendarHandler) parseView(r *http.Request) (application.CalendarViewParams, error) {
	group, _ := GroupFromContext(r.Context())
	values := r.URL.Query()
	query := calendarQuery{
		Date:  strings.TrimSpace(values.Get("date")),
		From:  strings.TrimSpace(values.Get("from")),
		To:    strings.TrimSpace(values.Get("to")),
		Scope: strings.TrimSpace(values.Get("scope")),
	}
	if err := validateStruct(query); err != nil {
		return application.CalendarViewParams{}, err
	}
	if (query.From == "") != (query.To == "") {
		field := "to"
		if query.From == "" {
			field = "from"
		}
		return application.CalendarViewParams{}, application.NewFieldError(field, "is required")
	}

	loc := h.service.Location()
	params := application.CalendarViewParams{Group: group, Scope: calendar.ParseScope(query.Scope)}
	switch {
	case query.From != "":
		params.From, _ = time.ParseInLocation(holiday.DateLayout, query.From, loc)
		params.To, _ = time.ParseInLocation(holiday.DateLayout, query.To, loc)
	case query.Date != "":
		params.From, _ = time.ParseInLocation(holiday.DateLayout, query.Date, loc)
	}
	return params, nil
}

// View serves GET /calendar.
func (h *CalendarHandler) View(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := h.parseView(r)
	if err != nil {
		h.log(r.Context(), "View", "error_kind", application.ErrorKind(err)).WarnContext(r.Context(), "invalid calendar query", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "View", "scope", params.Scope)
	view, err := h.service.CalendarView(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("days", len(view.Days)).InfoContext(r.Context(), "calendar view served")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, view)
}

// Export serves GET /calendar.ics.
func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := h.parseView(r)
	if err != nil {
		h.log(r.Context(), "Export", "error_kind", application.ErrorKind(err)).WarnContext(r.Context(), "invalid calendar query", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Export", "scope", params.Scope)
	view, err := h.service.CalendarView(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	body := exportICS(view, h.now())
	logger.With("items", len(view.Items)).InfoContext(r.Context(), "calendar exported")
	h.responder.writeBytes(r.Context(), w, "text/calendar; charset=utf-8", []byte(body))
}

// exportICS renders the view's items and holidays as an iCalendar document.
// All-day entries use exclusive DATE end bounds.
func exportICS(view application.View, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, item := range view.Items {
		event := cal.AddEvent(item.ID + "@groupcal")
		event.SetDtStampTime(stamp)
		event.SetSummary(item.Title)
		event.SetDescription(string(item.Kind))
		if item.AllDay {
			event.SetAllDayStartAt(item.StartAt)
			event.SetAllDayEndAt(item.EndAt.Add(time.Nanosecond))
			continue
		}
		event.SetStartAt(item.StartAt)
		event.SetEndAt(item.EndAt)
	}

	for _, day := range view.Days {
		if day.Holiday == nil {
			continue
		}
		date, err := time.Parse(holiday.DateLayout, day.Holiday.Date)
		if err != nil {
			continue
		}
		event := cal.AddEvent("holiday:" + day.Holiday.Date + "@groupcal")
		event.SetDtStampTime(stamp)
		event.SetSummary(day.Holiday.Name)
		event.SetAllDayStartAt(date)
		event.SetAllDayEndAt(date.AddDate(0, 0, 1))
	}

	return cal.Serialize()
}

type holidayQuery struct {
	Year  string `json:"year" validate:"required,numeric"`
	Month string `json:"month" validate:"required,numeric"`
}

// Holidays serves GET /holidays.
func (h *CalendarHandler) Holidays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := holidayQuery{
		Year:  strings.TrimSpace(r.URL.Query().Get("year")),
		Month: strings.TrimSpace(r.URL.Query().Get("month")),
	}
	if err := validateStruct(query); err != nil {
		h.log(r.Context(), "Holidays", "error_kind", "validation").WarnContext(r.Context(), "invalid holiday query", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	year, _ := strconv.Atoi(query.Year)
	month, _ := strconv.Atoi(query.Month)

	logger := h.log(r.Context(), "Holidays", "year", year, "month", month)
	holidays, err := h.service.Holidays(r.Context(), year, time.Month(month))
	if err != nil {
		logger.ErrorContext(r.Context(), "holiday listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(holidays)).InfoContext(r.Context(), "holidays listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listHolidaysResponse{Holidays: holidays})
}

type listHolidaysResponse struct {
	Holidays []holiday.Holiday `json:"holidays"`
}
