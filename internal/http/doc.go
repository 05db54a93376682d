// Package http provides the JSON data loaders and middleware for the group
// calendar and attendance screens.
//
// Every route expects an upstream gateway to have authenticated the caller and
// forwarded the X-Group-ID, X-Viewer-ID and X-Viewer-Role headers; they are
// turned into an application.GroupContext by RequireGroupContext.
//
// The router exposes the following endpoints:
//   - GET /calendar?date=YYYY-MM-DD or ?from=YYYY-MM-DD&to=YYYY-MM-DD, optional
//     scope=mine: the merged per-day view with holiday overlay.
//   - GET /calendar.ics?from=&to=: the same window exported as iCalendar.
//   - GET /holidays?year=&month=: the month's public holidays.
//   - POST /attendance/codes {"lesson_id"}: opens a check-in window (elevated
//     viewers only). GET /attendance/codes/{code}/qr renders the code as PNG.
//   - POST /attendance/check-ins {"code"}: runs a scan and returns the outcome.
//   - GET /reschedule/lessons: the viewer's reschedulable lessons.
//   - POST /reschedule/requests {"lesson_id","requested_at","reason"}.
//   - GET /reschedule/requests?lesson_id=: requests filed for a lesson.
//
// Request/response DTOs live alongside their respective handlers.
package http
