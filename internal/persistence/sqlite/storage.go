package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/example/groupcal/internal/persistence"
	"github.com/example/groupcal/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var memoryCounter atomic.Int64

var (
	_ persistence.EventRepository             = (*Storage)(nil)
	_ persistence.LessonRepository            = (*Storage)(nil)
	_ persistence.ReservationRepository       = (*Storage)(nil)
	_ persistence.RecurringScheduleRepository = (*Storage)(nil)
	_ persistence.ClassroomRepository         = (*Storage)(nil)
	_ persistence.MemberRepository            = (*Storage)(nil)
	_ persistence.AttendanceCodeRepository    = (*Storage)(nil)
	_ persistence.AttendanceRecordRepository  = (*Storage)(nil)
	_ persistence.RescheduleRequestRepository = (*Storage)(nil)
)

// Storage bundles every SQLite repository over one connection pool.
type Storage struct {
	pool   *ConnectionPool
	logger *slog.Logger

	*EventRepository
	*LessonRepository
	*ReservationRepository
	*RecurringScheduleRepository
	*ClassroomRepository
	*MemberRepository
	*AttendanceRepository
	*RescheduleRequestRepository
}

// Open opens the database at dsn. ":memory:" yields a private in-memory
// database, which is what tests use.
func Open(dsn string) (*Storage, error) {
	return OpenWithLogger(dsn, nil)
}

// OpenWithLogger opens the database at dsn and logs migrations to logger.
func OpenWithLogger(dsn string, logger *slog.Logger) (*Storage, error) {
	config := migration.DefaultSQLiteConfig(dsn)
	if strings.TrimSpace(dsn) == ":memory:" {
		config = migration.InMemoryTestSQLiteConfig(fmt.Sprintf("groupcal_%d", memoryCounter.Add(1)))
	}
	return OpenConfig(config, logger)
}

// OpenConfig opens a Storage with an explicit SQLite configuration.
func OpenConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		pool:                        pool,
		logger:                      logger,
		EventRepository:             NewEventRepository(pool),
		LessonRepository:            NewLessonRepository(pool),
		ReservationRepository:       NewReservationRepository(pool),
		RecurringScheduleRepository: NewRecurringScheduleRepository(pool),
		ClassroomRepository:         NewClassroomRepository(pool),
		MemberRepository:            NewMemberRepository(pool),
		AttendanceRepository:        NewAttendanceRepository(pool),
		RescheduleRequestRepository: NewRescheduleRequestRepository(pool),
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}
