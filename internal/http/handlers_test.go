package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/groupcal/internal/application"
	"github.com/example/groupcal/internal/calendar"
	"github.com/example/groupcal/internal/holiday"
)

var kst = time.FixedZone("KST", 9*60*60)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var studentGroup = application.GroupContext{GroupID: "group-1", ViewerID: "student-1", Role: application.RoleMember}

func withGroup(req *http.Request, group application.GroupContext) *http.Request {
	return req.WithContext(ContextWithGroup(req.Context(), group))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}

type attendanceServiceStub struct {
	code       application.AttendanceCode
	issueErr   error
	outcome    application.CheckInOutcome
	checkInErr error
	png        []byte
	sizes      []int
	lastCode   string
}

func (s *attendanceServiceStub) IssueCode(ctx context.Context, params application.IssueCodeParams) (application.AttendanceCode, error) {
	return s.code, s.issueErr
}

func (s *attendanceServiceStub) CheckIn(ctx context.Context, params application.CheckInParams) (application.CheckInOutcome, error) {
	s.lastCode = params.Code
	return s.outcome, s.checkInErr
}

func (s *attendanceServiceStub) Location() *time.Location {
	return kst
}

func (s *attendanceServiceStub) RenderCodePNG(code string, size int) ([]byte, error) {
	s.lastCode = code
	s.sizes = append(s.sizes, size)
	return s.png, nil
}

func newAttendanceRouter(stub *attendanceServiceStub) http.Handler {
	return NewRouter(RouterConfig{Attendance: NewAttendanceHandler(stub, quietLogger())})
}

func TestAttendanceHandlers(t *testing.T) {
	t.Parallel()

	t.Run("issue code returns the code and its QR link", func(t *testing.T) {
		t.Parallel()
		stub := &attendanceServiceStub{code: application.AttendanceCode{
			Code:      "abc 123",
			LessonID:  "lesson-1",
			ExpiresAt: time.Date(2024, time.March, 1, 10, 10, 0, 0, kst),
		}}
		req := withGroup(httptest.NewRequest(http.MethodPost, "/attendance/codes", strings.NewReader(`{"lesson_id":"lesson-1"}`)), studentGroup)
		rec := httptest.NewRecorder()
		newAttendanceRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var body codeResponse
		decodeBody(t, rec, &body)
		if body.QRURL != "/attendance/codes/abc%20123/qr" || body.ExpiresAt != "2024-03-01T10:10:00+09:00" {
			t.Fatalf("unexpected body %#v", body)
		}
	})

	t.Run("issue code maps forbidden", func(t *testing.T) {
		t.Parallel()
		stub := &attendanceServiceStub{issueErr: application.ErrUnauthorized}
		req := withGroup(httptest.NewRequest(http.MethodPost, "/attendance/codes", strings.NewReader(`{"lesson_id":"lesson-1"}`)), studentGroup)
		rec := httptest.NewRecorder()
		newAttendanceRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.ErrorCode != "FORBIDDEN" {
			t.Fatalf("unexpected body %#v", body)
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		t.Parallel()
		req := withGroup(httptest.NewRequest(http.MethodPost, "/attendance/codes", strings.NewReader(`{`)), studentGroup)
		rec := httptest.NewRecorder()
		newAttendanceRouter(&attendanceServiceStub{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("accepted check-in", func(t *testing.T) {
		t.Parallel()
		checkInAt := time.Date(2024, time.March, 1, 10, 6, 0, 0, kst)
		stub := &attendanceServiceStub{outcome: application.CheckInOutcome{
			State:       application.CheckInAccepted,
			Status:      application.AttendanceLate,
			LessonID:    "lesson-1",
			ScheduledAt: time.Date(2024, time.March, 1, 1, 0, 0, 0, time.UTC),
			MemberName:  "Kim",
			Record:      application.AttendanceRecord{ID: "rec-1", CheckInAt: checkInAt},
		}}
		req := withGroup(httptest.NewRequest(http.MethodPost, "/attendance/check-ins", strings.NewReader(`{"code":"abc"}`)), studentGroup)
		rec := httptest.NewRecorder()
		newAttendanceRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var body checkInResponse
		decodeBody(t, rec, &body)
		if body.State != "accepted" || body.Status != "late" || body.RecordID != "rec-1" || body.MemberName != "Kim" {
			t.Fatalf("unexpected body %#v", body)
		}
		if body.ScheduledAt != "2024-03-01T10:00:00+09:00" || body.CheckInAt != "2024-03-01T10:06:00+09:00" {
			t.Fatalf("expected both times in the service zone, got %q / %q", body.ScheduledAt, body.CheckInAt)
		}
		if stub.lastCode != "abc" {
			t.Fatalf("expected the code to reach the service, got %q", stub.lastCode)
		}
	})

	rejections := []struct {
		name   string
		reason application.RejectReason
		err    error
		status int
	}{
		{name: "invalid code", reason: application.RejectInvalidCode, err: application.ErrNotFound, status: http.StatusNotFound},
		{name: "expired", reason: application.RejectExpired, err: application.ErrExpired, status: http.StatusGone},
		{name: "duplicate", reason: application.RejectDuplicate, err: application.ErrDuplicate, status: http.StatusConflict},
		{name: "storage error", reason: application.RejectStorageError, err: application.ErrStorageFailure, status: http.StatusServiceUnavailable},
	}
	for _, tc := range rejections {
		tc := tc
		t.Run("rejected "+tc.name, func(t *testing.T) {
			t.Parallel()
			stub := &attendanceServiceStub{
				outcome:    application.CheckInOutcome{State: application.CheckInRejected, Reason: tc.reason},
				checkInErr: tc.err,
			}
			req := withGroup(httptest.NewRequest(http.MethodPost, "/attendance/check-ins", strings.NewReader(`{"code":"abc"}`)), studentGroup)
			rec := httptest.NewRecorder()
			newAttendanceRouter(stub).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body checkInResponse
			decodeBody(t, rec, &body)
			if body.State != "rejected" || body.Reason != string(tc.reason) || body.Message == "" {
				t.Fatalf("unexpected body %#v", body)
			}
		})
	}

	t.Run("blank code is rejected without calling the service", func(t *testing.T) {
		t.Parallel()
		stub := &attendanceServiceStub{}
		req := withGroup(httptest.NewRequest(http.MethodPost, "/attendance/check-ins", strings.NewReader(`{"code":""}`)), studentGroup)
		rec := httptest.NewRecorder()
		newAttendanceRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		var body checkInResponse
		decodeBody(t, rec, &body)
		if body.Reason != string(application.RejectInvalidCode) || stub.lastCode != "" {
			t.Fatalf("unexpected body %#v", body)
		}
	})

	t.Run("qr endpoint serves png", func(t *testing.T) {
		t.Parallel()
		stub := &attendanceServiceStub{png: []byte("\x89PNG")}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/attendance/codes/abc/qr?size=128", nil), studentGroup)
		rec := httptest.NewRecorder()
		newAttendanceRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Type"))
		}
		if !bytes.Equal(rec.Body.Bytes(), stub.png) || stub.lastCode != "abc" || stub.sizes[0] != 128 {
			t.Fatalf("unexpected render call code=%q sizes=%v", stub.lastCode, stub.sizes)
		}
	})

	t.Run("qr endpoint validates size", func(t *testing.T) {
		t.Parallel()
		req := withGroup(httptest.NewRequest(http.MethodGet, "/attendance/codes/abc/qr?size=big", nil), studentGroup)
		rec := httptest.NewRecorder()
		newAttendanceRouter(&attendanceServiceStub{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})
}

type rescheduleServiceStub struct {
	lessons   []application.Lesson
	submitted []application.SubmitRescheduleParams
	submitErr error
	listErr   error
	requests  []application.RescheduleRequest
}

func (s *rescheduleServiceStub) EligibleLessons(ctx context.Context, params application.EligibleLessonsParams) ([]application.Lesson, error) {
	return s.lessons, nil
}

func (s *rescheduleServiceStub) SubmitRequest(ctx context.Context, params application.SubmitRescheduleParams) (application.RescheduleRequest, error) {
	s.submitted = append(s.submitted, params)
	if s.submitErr != nil {
		return application.RescheduleRequest{}, s.submitErr
	}
	return application.RescheduleRequest{
		ID:            "req-1",
		LessonID:      params.LessonID,
		RequestedBy:   params.Group.ViewerID,
		RequestedDate: params.RequestedAt,
		Reason:        params.Reason,
		Status:        application.ReschedulePending,
		CreatedAt:     time.Date(2024, time.March, 4, 15, 0, 0, 0, kst),
	}, nil
}

func (s *rescheduleServiceStub) ListRequests(ctx context.Context, group application.GroupContext, lessonID string) ([]application.RescheduleRequest, error) {
	return s.requests, s.listErr
}

func (s *rescheduleServiceStub) Location() *time.Location {
	return kst
}

func newRescheduleRouter(stub *rescheduleServiceStub) http.Handler {
	return NewRouter(RouterConfig{Reschedule: NewRescheduleHandler(stub, quietLogger())})
}

func TestRescheduleHandlers(t *testing.T) {
	t.Parallel()

	t.Run("lists eligible lessons", func(t *testing.T) {
		t.Parallel()
		stub := &rescheduleServiceStub{lessons: []application.Lesson{{
			ID:          "soon",
			Title:       "Piano",
			ScheduledAt: time.Date(2024, time.March, 6, 10, 0, 0, 0, kst),
			Status:      calendar.LessonScheduled,
		}}}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/reschedule/lessons", nil), studentGroup)
		rec := httptest.NewRecorder()
		newRescheduleRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body eligibleLessonsResponse
		decodeBody(t, rec, &body)
		if len(body.Lessons) != 1 || body.Lessons[0].ScheduledAt != "2024-03-06T10:00:00+09:00" {
			t.Fatalf("unexpected body %#v", body)
		}
	})

	t.Run("form datetime is read in the group zone", func(t *testing.T) {
		t.Parallel()
		stub := &rescheduleServiceStub{}
		payload := `{"lesson_id":"soon","requested_at":"2024-03-10T14:30","reason":"trip"}`
		req := withGroup(httptest.NewRequest(http.MethodPost, "/reschedule/requests", strings.NewReader(payload)), studentGroup)
		rec := httptest.NewRecorder()
		newRescheduleRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		want := time.Date(2024, time.March, 10, 14, 30, 0, 0, kst)
		if len(stub.submitted) != 1 || !stub.submitted[0].RequestedAt.Equal(want) {
			t.Fatalf("unexpected submission %#v", stub.submitted)
		}
		var body rescheduleRequestDTO
		decodeBody(t, rec, &body)
		if body.Status != "pending" || body.RequestedDate != "2024-03-10T14:30:00+09:00" {
			t.Fatalf("unexpected body %#v", body)
		}
	})

	t.Run("unparseable datetime is a field error", func(t *testing.T) {
		t.Parallel()
		stub := &rescheduleServiceStub{}
		payload := `{"lesson_id":"soon","requested_at":"next tuesday","reason":"trip"}`
		req := withGroup(httptest.NewRequest(http.MethodPost, "/reschedule/requests", strings.NewReader(payload)), studentGroup)
		rec := httptest.NewRecorder()
		newRescheduleRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity || len(stub.submitted) != 0 {
			t.Fatalf("expected 422 without submission, got %d", rec.Code)
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.Errors["requested_at"] != "형식이 올바르지 않습니다." {
			t.Fatalf("unexpected errors %#v", body.Errors)
		}
	})

	t.Run("service validation errors are localized", func(t *testing.T) {
		t.Parallel()
		vErr := &application.ValidationError{FieldErrors: map[string]string{
			"reason":       "reason is required",
			"requested_at": "requested date is too far in the future",
		}}
		stub := &rescheduleServiceStub{submitErr: vErr}
		req := withGroup(httptest.NewRequest(http.MethodPost, "/reschedule/requests", strings.NewReader(`{"lesson_id":"soon"}`)), studentGroup)
		rec := httptest.NewRecorder()
		newRescheduleRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var body errorResponse
		decodeBody(t, rec, &body)
		if body.Errors["reason"] != "사유를 입력해 주세요." || body.Errors["requested_at"] != "3주 이내의 날짜만 선택할 수 있습니다." {
			t.Fatalf("unexpected errors %#v", body.Errors)
		}
	})

	t.Run("duplicate pending request conflicts", func(t *testing.T) {
		t.Parallel()
		stub := &rescheduleServiceStub{submitErr: application.ErrDuplicate}
		payload := `{"lesson_id":"soon","requested_at":"2024-03-10T14:30:00+09:00","reason":"trip"}`
		req := withGroup(httptest.NewRequest(http.MethodPost, "/reschedule/requests", strings.NewReader(payload)), studentGroup)
		rec := httptest.NewRecorder()
		newRescheduleRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("listing maps forbidden", func(t *testing.T) {
		t.Parallel()
		stub := &rescheduleServiceStub{listErr: application.ErrUnauthorized}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/reschedule/requests?lesson_id=soon", nil), studentGroup)
		rec := httptest.NewRecorder()
		newRescheduleRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

type calendarServiceStub struct {
	view     application.View
	params   []application.CalendarViewParams
	holidays []holiday.Holiday
	err      error
}

func (s *calendarServiceStub) CalendarView(ctx context.Context, params application.CalendarViewParams) (application.View, error) {
	s.params = append(s.params, params)
	return s.view, s.err
}

func (s *calendarServiceStub) Holidays(ctx context.Context, year int, month time.Month) ([]holiday.Holiday, error) {
	return s.holidays, s.err
}

func (s *calendarServiceStub) Location() *time.Location {
	return kst
}

func newCalendarRouter(stub *calendarServiceStub) http.Handler {
	return NewRouter(RouterConfig{Calendar: NewCalendarHandler(stub, quietLogger())})
}

func sampleView() application.View {
	recital := calendar.Item{
		ID:      "event:e1",
		Kind:    calendar.KindEvent,
		Title:   "Recital",
		StartAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, kst),
		EndAt:   calendar.EndOfDay(time.Date(2024, time.March, 1, 0, 0, 0, 0, kst), kst),
		AllDay:  true,
		Date:    "2024-03-01",
	}
	lesson := calendar.Item{
		ID:      "lesson:l1",
		Kind:    calendar.KindLesson,
		Title:   "Piano",
		StartAt: time.Date(2024, time.March, 1, 10, 0, 0, 0, kst),
		EndAt:   time.Date(2024, time.March, 1, 10, 50, 0, 0, kst),
	}
	return application.View{
		Days: []calendar.Day{{
			Date:      "2024-03-01",
			Holiday:   &holiday.Holiday{Date: "2024-03-01", Name: "삼일절", IsHoliday: true},
			MultiDay:  []calendar.Item{},
			SingleDay: []calendar.Item{recital, lesson},
		}},
		Scope: calendar.ScopeAll,
		Items: []calendar.Item{recital, lesson},
	}
}

func TestCalendarHandlers(t *testing.T) {
	t.Parallel()

	t.Run("view parses the range in the group zone", func(t *testing.T) {
		t.Parallel()
		stub := &calendarServiceStub{view: sampleView()}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/calendar?from=2024-03-01&to=2024-03-07&scope=mine", nil), studentGroup)
		rec := httptest.NewRecorder()
		newCalendarRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		params := stub.params[0]
		if !params.From.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, kst)) || !params.To.Equal(time.Date(2024, time.March, 7, 0, 0, 0, 0, kst)) {
			t.Fatalf("unexpected window %v to %v", params.From, params.To)
		}
		if params.Scope != calendar.ScopeMine || params.Group != studentGroup {
			t.Fatalf("unexpected params %#v", params)
		}
		var body application.View
		decodeBody(t, rec, &body)
		if len(body.Days) != 1 || body.Days[0].Holiday == nil {
			t.Fatalf("unexpected body %#v", body)
		}
	})

	t.Run("from without to is rejected", func(t *testing.T) {
		t.Parallel()
		stub := &calendarServiceStub{}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/calendar?from=2024-03-01", nil), studentGroup)
		rec := httptest.NewRecorder()
		newCalendarRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity || len(stub.params) != 0 {
			t.Fatalf("expected 422 without service call, got %d", rec.Code)
		}
	})

	t.Run("bad date format is rejected", func(t *testing.T) {
		t.Parallel()
		req := withGroup(httptest.NewRequest(http.MethodGet, "/calendar?date=03/01/2024", nil), studentGroup)
		rec := httptest.NewRecorder()
		newCalendarRouter(&calendarServiceStub{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("storage failure is unavailable", func(t *testing.T) {
		t.Parallel()
		stub := &calendarServiceStub{err: errors.Join(application.ErrStorageFailure, errors.New("locked"))}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/calendar", nil), studentGroup)
		rec := httptest.NewRecorder()
		newCalendarRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("export renders icalendar", func(t *testing.T) {
		t.Parallel()
		stub := &calendarServiceStub{view: sampleView()}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/calendar.ics?date=2024-03-01", nil), studentGroup)
		rec := httptest.NewRecorder()
		newCalendarRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar") {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Type"))
		}
		body := rec.Body.String()
		for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:Recital", "SUMMARY:Piano", "SUMMARY:삼일절", "20240301", "20240302"} {
			if !strings.Contains(body, want) {
				t.Fatalf("expected %q in export:\n%s", want, body)
			}
		}
		if strings.Count(body, "BEGIN:VEVENT") != 3 {
			t.Fatalf("expected two items and one holiday, got:\n%s", body)
		}
	})

	t.Run("holidays require year and month", func(t *testing.T) {
		t.Parallel()
		req := withGroup(httptest.NewRequest(http.MethodGet, "/holidays?year=2024", nil), studentGroup)
		rec := httptest.NewRecorder()
		newCalendarRouter(&calendarServiceStub{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("holidays listing", func(t *testing.T) {
		t.Parallel()
		stub := &calendarServiceStub{holidays: []holiday.Holiday{{Date: "2024-03-01", Name: "삼일절", IsHoliday: true}}}
		req := withGroup(httptest.NewRequest(http.MethodGet, "/holidays?year=2024&month=3", nil), studentGroup)
		rec := httptest.NewRecorder()
		newCalendarRouter(stub).ServeHTTP(rec, req)

		var body listHolidaysResponse
		decodeBody(t, rec, &body)
		if rec.Code != http.StatusOK || len(body.Holidays) != 1 {
			t.Fatalf("unexpected response %d %#v", rec.Code, body)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{
		Calendar:   NewCalendarHandler(&calendarServiceStub{}, quietLogger()),
		Attendance: NewAttendanceHandler(&attendanceServiceStub{}, quietLogger()),
		Reschedule: NewRescheduleHandler(&rescheduleServiceStub{}, quietLogger()),
	})

	tests := []struct {
		method string
		path   string
		status int
		allow  string
	}{
		{method: http.MethodPost, path: "/calendar", status: http.StatusMethodNotAllowed, allow: "GET"},
		{method: http.MethodGet, path: "/attendance/check-ins", status: http.StatusMethodNotAllowed, allow: "POST"},
		{method: http.MethodDelete, path: "/reschedule/requests", status: http.StatusMethodNotAllowed, allow: "GET, POST"},
		{method: http.MethodGet, path: "/attendance/codes/abc", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/attendance/codes/abc/png", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		req := withGroup(httptest.NewRequest(tc.method, tc.path, nil), studentGroup)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
		if tc.allow != "" && rec.Header().Get("Allow") != tc.allow {
			t.Fatalf("%s %s: unexpected Allow %q", tc.method, tc.path, rec.Header().Get("Allow"))
		}
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: application.ErrUnauthorized, want: http.StatusForbidden},
		{err: application.ErrNotFound, want: http.StatusNotFound},
		{err: application.ErrExpired, want: http.StatusGone},
		{err: application.ErrDuplicate, want: http.StatusConflict},
		{err: application.ErrStorageFailure, want: http.StatusServiceUnavailable},
		{err: &application.ValidationError{}, want: http.StatusUnprocessableEntity},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
