package main

import (
	"context"
	"time"

	"github.com/example/groupcal/internal/application"
	"github.com/example/groupcal/internal/calendar"
	"github.com/example/groupcal/internal/persistence"
)

type lessonRepositoryAdapter struct {
	repo persistence.LessonRepository
}

func newLessonRepositoryAdapter(repo persistence.LessonRepository) *lessonRepositoryAdapter {
	return &lessonRepositoryAdapter{repo: repo}
}

func (a *lessonRepositoryAdapter) GetLesson(ctx context.Context, id string) (application.Lesson, error) {
	stored, err := a.repo.GetLesson(ctx, id)
	if err != nil {
		return application.Lesson{}, err
	}
	return toApplicationLesson(stored), nil
}

func (a *lessonRepositoryAdapter) ListLessons(ctx context.Context, filter application.LessonFilter) ([]application.Lesson, error) {
	models, err := a.repo.ListLessons(ctx, persistence.LessonFilter{
		GroupID:   filter.GroupID,
		StudentID: filter.StudentID,
		Status:    string(filter.Status),
		From:      cloneTime(filter.From),
		To:        cloneTime(filter.To),
	})
	if err != nil {
		return nil, err
	}
	lessons := make([]application.Lesson, 0, len(models))
	for _, model := range models {
		lessons = append(lessons, toApplicationLesson(model))
	}
	return lessons, nil
}

type memberDirectoryAdapter struct {
	repo persistence.MemberRepository
}

func newMemberDirectoryAdapter(repo persistence.MemberRepository) *memberDirectoryAdapter {
	return &memberDirectoryAdapter{repo: repo}
}

func (a *memberDirectoryAdapter) GetMember(ctx context.Context, groupID, id string) (application.Member, error) {
	stored, err := a.repo.GetMember(ctx, groupID, id)
	if err != nil {
		return application.Member{}, err
	}
	return application.Member{
		ID:          stored.ID,
		GroupID:     stored.GroupID,
		DisplayName: stored.DisplayName,
		Role:        application.ParseRole(stored.Role),
	}, nil
}

func (a *memberDirectoryAdapter) CountMembersByRole(ctx context.Context, groupID string, roles ...application.Role) (int, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return a.repo.CountMembersByRole(ctx, groupID, names...)
}

type attendanceCodeAdapter struct {
	repo persistence.AttendanceCodeRepository
}

func newAttendanceCodeAdapter(repo persistence.AttendanceCodeRepository) *attendanceCodeAdapter {
	return &attendanceCodeAdapter{repo: repo}
}

func (a *attendanceCodeAdapter) CreateCode(ctx context.Context, code application.AttendanceCode) error {
	return a.repo.CreateCode(ctx, persistence.AttendanceCode{
		Code:      code.Code,
		GroupID:   code.GroupID,
		LessonID:  code.LessonID,
		ExpiresAt: code.ExpiresAt,
		CreatedAt: code.CreatedAt,
	})
}

func (a *attendanceCodeAdapter) GetCode(ctx context.Context, groupID, code string) (application.AttendanceCode, error) {
	stored, err := a.repo.GetCode(ctx, groupID, code)
	if err != nil {
		return application.AttendanceCode{}, err
	}
	return application.AttendanceCode{
		Code:      stored.Code,
		GroupID:   stored.GroupID,
		LessonID:  stored.LessonID,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
	}, nil
}

type attendanceRecordAdapter struct {
	repo persistence.AttendanceRecordRepository
}

func newAttendanceRecordAdapter(repo persistence.AttendanceRecordRepository) *attendanceRecordAdapter {
	return &attendanceRecordAdapter{repo: repo}
}

func (a *attendanceRecordAdapter) GetRecord(ctx context.Context, lessonID, memberID string) (application.AttendanceRecord, error) {
	stored, err := a.repo.GetRecord(ctx, lessonID, memberID)
	if err != nil {
		return application.AttendanceRecord{}, err
	}
	return application.AttendanceRecord{
		ID:        stored.ID,
		LessonID:  stored.LessonID,
		MemberID:  stored.MemberID,
		Status:    application.AttendanceStatus(stored.Status),
		CheckInAt: stored.CheckInAt,
	}, nil
}

func (a *attendanceRecordAdapter) CreateRecord(ctx context.Context, record application.AttendanceRecord) error {
	return a.repo.CreateRecord(ctx, persistence.AttendanceRecord{
		ID:        record.ID,
		LessonID:  record.LessonID,
		MemberID:  record.MemberID,
		Status:    string(record.Status),
		CheckInAt: record.CheckInAt,
	})
}

type rescheduleRequestAdapter struct {
	repo persistence.RescheduleRequestRepository
}

func newRescheduleRequestAdapter(repo persistence.RescheduleRequestRepository) *rescheduleRequestAdapter {
	return &rescheduleRequestAdapter{repo: repo}
}

func (a *rescheduleRequestAdapter) CreateRequest(ctx context.Context, request application.RescheduleRequest) error {
	return a.repo.CreateRequest(ctx, persistence.RescheduleRequest{
		ID:            request.ID,
		LessonID:      request.LessonID,
		RequestedBy:   request.RequestedBy,
		RequestedDate: request.RequestedDate,
		Reason:        request.Reason,
		Status:        string(request.Status),
		CreatedAt:     request.CreatedAt,
	})
}

func (a *rescheduleRequestAdapter) ListRequestsForLesson(ctx context.Context, lessonID string) ([]application.RescheduleRequest, error) {
	models, err := a.repo.ListRequestsForLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	requests := make([]application.RescheduleRequest, 0, len(models))
	for _, model := range models {
		requests = append(requests, application.RescheduleRequest{
			ID:            model.ID,
			LessonID:      model.LessonID,
			RequestedBy:   model.RequestedBy,
			RequestedDate: model.RequestedDate,
			Reason:        model.Reason,
			Status:        application.RescheduleStatus(model.Status),
			CreatedAt:     model.CreatedAt,
		})
	}
	return requests, nil
}

// calendarStore is the subset of the storage the calendar view reads.
type calendarStore interface {
	persistence.EventRepository
	persistence.ReservationRepository
	persistence.RecurringScheduleRepository
	persistence.ClassroomRepository
}

type calendarSourceAdapter struct {
	store calendarStore
}

func newCalendarSourceAdapter(store calendarStore) *calendarSourceAdapter {
	return &calendarSourceAdapter{store: store}
}

func (a *calendarSourceAdapter) ListEvents(ctx context.Context, groupID string, from, to time.Time) ([]calendar.Event, error) {
	models, err := a.store.ListEvents(ctx, groupID, persistence.TimeRange{From: from, To: to})
	if err != nil {
		return nil, err
	}
	events := make([]calendar.Event, 0, len(models))
	for _, model := range models {
		events = append(events, calendar.Event{
			ID:        model.ID,
			Title:     model.Title,
			StartAt:   model.StartAt,
			EndAt:     model.EndAt,
			AllDay:    model.AllDay,
			ColorKey:  model.ColorKey,
			CreatedBy: model.CreatedBy,
		})
	}
	return events, nil
}

func (a *calendarSourceAdapter) ListReservations(ctx context.Context, groupID string, from, to time.Time) ([]calendar.Reservation, error) {
	models, err := a.store.ListReservations(ctx, groupID, persistence.TimeRange{From: from, To: to})
	if err != nil {
		return nil, err
	}
	reservations := make([]calendar.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, calendar.Reservation{
			ID:         model.ID,
			RoomID:     model.RoomID,
			ReservedBy: model.ReservedBy,
			Title:      model.Title,
			StartAt:    model.StartAt,
			EndAt:      model.EndAt,
		})
	}
	return reservations, nil
}

func (a *calendarSourceAdapter) ListRecurringSchedules(ctx context.Context, groupID string, from, to time.Time) ([]calendar.RecurringSchedule, error) {
	models, err := a.store.ListRecurringSchedules(ctx, groupID, persistence.TimeRange{From: from, To: to})
	if err != nil {
		return nil, err
	}
	schedules := make([]calendar.RecurringSchedule, 0, len(models))
	for _, model := range models {
		schedules = append(schedules, calendar.RecurringSchedule{
			ID:           model.ID,
			Title:        model.Title,
			InstructorID: model.InstructorID,
			ClassroomID:  model.ClassroomID,
			Frequency:    model.Frequency,
			Weekdays:     append([]time.Weekday(nil), model.Weekdays...),
			StartClock:   model.StartClock,
			EndClock:     model.EndClock,
			ValidFrom:    model.ValidFrom,
			ValidUntil:   cloneTime(model.ValidUntil),
			ExceptDates:  append([]time.Time(nil), model.ExceptDates...),
		})
	}
	return schedules, nil
}

func (a *calendarSourceAdapter) ListClassrooms(ctx context.Context, groupID string) ([]application.Classroom, error) {
	models, err := a.store.ListClassrooms(ctx, groupID)
	if err != nil {
		return nil, err
	}
	classrooms := make([]application.Classroom, 0, len(models))
	for _, model := range models {
		classrooms = append(classrooms, application.Classroom{ID: model.ID, Name: model.Name})
	}
	return classrooms, nil
}

func toApplicationLesson(model persistence.Lesson) application.Lesson {
	return application.Lesson{
		ID:              model.ID,
		GroupID:         model.GroupID,
		Title:           model.Title,
		ScheduledAt:     model.ScheduledAt,
		DurationMinutes: model.DurationMinutes,
		Status:          calendar.LessonStatus(model.Status),
		StudentID:       model.StudentID,
		InstructorID:    model.InstructorID,
		ClassroomID:     model.ClassroomID,
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
