package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/groupcal/internal/application"
	"github.com/example/groupcal/internal/config"
	"github.com/example/groupcal/internal/holiday"
	httptransport "github.com/example/groupcal/internal/http"
	"github.com/example/groupcal/internal/logging"
	"github.com/example/groupcal/internal/persistence"
	"github.com/example/groupcal/internal/persistence/sqlite"
)

func main() {
	logger := logging.New(os.Stdout, "info")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stdout, cfg.LogLevel)

	storage, err := sqlite.OpenWithLogger(cfg.SQLiteDSN, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	holidays, err := newHolidayLookup(cfg, logger)
	if err != nil {
		logger.Error("failed to load holidays", "error", err)
		os.Exit(1)
	}

	handler := newHandler(cfg, storage, holidays, time.Now, logger)

	housekeeping, err := startHousekeeping(cfg, storage, time.Now, logger)
	if err != nil {
		logger.Error("failed to schedule housekeeping", "error", err)
		os.Exit(1)
	}
	defer func() {
		<-housekeeping.Stop().Done()
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("groupcal API listening", "addr", server.Addr, "timezone", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newHolidayLookup builds the static holiday table, optionally replaced by a
// file, and wraps it with the remote provider when one is configured.
func newHolidayLookup(cfg config.Config, logger *slog.Logger) (*holiday.Lookup, error) {
	static, err := holiday.DefaultCalendar()
	if err != nil {
		return nil, err
	}
	if cfg.HolidayTablePath != "" {
		file, err := os.Open(cfg.HolidayTablePath)
		if err != nil {
			return nil, fmt.Errorf("open holiday table: %w", err)
		}
		defer file.Close()
		table, err := holiday.LoadTable(file)
		if err != nil {
			return nil, err
		}
		static = holiday.NewCalendar(table)
	}

	var provider holiday.Provider
	if cfg.HolidayProviderURL != "" {
		icsProvider, err := holiday.NewICSProvider(cfg.HolidayProviderURL, cfg.HolidayProviderKey, nil)
		if err != nil {
			return nil, err
		}
		provider = icsProvider
	}
	return holiday.NewLookup(static, provider, cfg.HolidayCacheSize, logger)
}

// appStorage is everything the services read and write.
type appStorage interface {
	calendarStore
	persistence.LessonRepository
	persistence.MemberRepository
	persistence.AttendanceCodeRepository
	persistence.AttendanceRecordRepository
	persistence.RescheduleRequestRepository
}

func newHandler(cfg config.Config, storage appStorage, holidays application.HolidaySource, now func() time.Time, logger *slog.Logger) http.Handler {
	idGenerator := uuid.NewString

	lessons := newLessonRepositoryAdapter(storage)
	members := newMemberDirectoryAdapter(storage)

	attendanceService := application.NewAttendanceServiceWithLogger(
		newAttendanceCodeAdapter(storage),
		newAttendanceRecordAdapter(storage),
		lessons,
		members,
		application.AttendanceSettings{LateGrace: cfg.LateGrace, CodeTTL: cfg.CodeTTL, Location: cfg.Location},
		idGenerator,
		now,
		logger,
	)
	rescheduleService := application.NewRescheduleServiceWithLogger(
		newRescheduleRequestAdapter(storage),
		lessons,
		application.RescheduleSettings{
			Horizon:       cfg.RescheduleHorizon,
			PendingPolicy: cfg.ReschedulePendingPolicy,
			Location:      cfg.Location,
		},
		idGenerator,
		now,
		logger,
	)
	calendarService := application.NewCalendarServiceWithLogger(
		newCalendarSourceAdapter(storage),
		lessons,
		members,
		holidays,
		cfg.Location,
		now,
		logger,
	)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Calendar:   httptransport.NewCalendarHandler(calendarService, logger),
		Attendance: httptransport.NewAttendanceHandler(attendanceService, logger),
		Reschedule: httptransport.NewRescheduleHandler(rescheduleService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireGroupContext(logger),
		},
	})
}

// startHousekeeping schedules the purge of attendance codes that expired more
// than cfg.CodeRetention ago.
func startHousekeeping(cfg config.Config, codes persistence.AttendanceCodeRepository, now func() time.Time, logger *slog.Logger) (*cron.Cron, error) {
	scheduler := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cronLogger{logger: logger}),
		cron.WithChain(cron.Recover(cronLogger{logger: logger}), cron.SkipIfStillRunning(cronLogger{logger: logger})),
	)
	_, err := scheduler.AddFunc(cfg.HousekeepingSchedule, func() {
		purgeExpiredCodes(context.Background(), codes, now().Add(-cfg.CodeRetention), logger)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule code purge: %w", err)
	}
	scheduler.Start()
	logger.Info("housekeeping scheduled", "schedule", cfg.HousekeepingSchedule, "retention", cfg.CodeRetention)
	return scheduler, nil
}

func purgeExpiredCodes(ctx context.Context, codes persistence.AttendanceCodeRepository, before time.Time, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	removed, err := codes.DeleteExpiredCodes(ctx, before)
	if err != nil {
		logger.ErrorContext(ctx, "failed to purge expired attendance codes", "error", err, "before", before)
		return
	}
	logger.InfoContext(ctx, "purged expired attendance codes", "removed", removed, "before", before)
}

// cronLogger routes cron's logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
