package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/groupcal/internal/application"
)

const envPrefix = "GROUPCAL_"

// Config captures environment driven configuration values for the group calendar service.
type Config struct {
	HTTPPort                int
	SQLiteDSN               string
	Location                *time.Location
	LateGrace               time.Duration
	CodeTTL                 time.Duration
	RescheduleHorizon       time.Duration
	ReschedulePendingPolicy application.PendingPolicy
	HolidayProviderURL      string
	HolidayProviderKey      string
	HolidayTablePath        string
	HolidayCacheSize        int
	CodeRetention           time.Duration
	HousekeepingSchedule    string
	LogLevel                string
}

// Load parses configuration values from the current process environment.
//
// A dotenv file named by GROUPCAL_ENV_FILE (default .env) is read first when
// present; variables already set in the environment win. Missing and invalid
// entries are collected and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:                8080,
		SQLiteDSN:               "file:groupcal.db",
		LateGrace:               application.DefaultLateGrace,
		CodeTTL:                 application.DefaultCodeTTL,
		RescheduleHorizon:       application.DefaultRescheduleHorizon,
		ReschedulePendingPolicy: application.PendingAllowMultiple,
		HolidayCacheSize:        64,
		CodeRetention:           7 * 24 * time.Hour,
		HousekeepingSchedule:    "@hourly",
		LogLevel:                "info",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if err := loadEnvFile(); err != nil {
		invalid = append(invalid, envPrefix+"ENV_FILE")
	}

	if portValue := lookup("HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, envPrefix+"HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := lookup("SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	zone := lookup("TIMEZONE")
	if zone == "" {
		zone = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		invalid = append(invalid, envPrefix+"TIMEZONE")
	} else {
		cfg.Location = loc
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{key: "LATE_GRACE", dst: &cfg.LateGrace},
		{key: "CODE_TTL", dst: &cfg.CodeTTL},
		{key: "RESCHEDULE_HORIZON", dst: &cfg.RescheduleHorizon},
		{key: "CODE_RETENTION", dst: &cfg.CodeRetention},
	}
	for _, d := range durations {
		value := lookup(d.key)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			invalid = append(invalid, envPrefix+d.key)
			continue
		}
		*d.dst = parsed
	}

	if policyValue := lookup("RESCHEDULE_PENDING_POLICY"); policyValue != "" {
		policy, ok := application.ParsePendingPolicy(policyValue)
		if !ok {
			invalid = append(invalid, envPrefix+"RESCHEDULE_PENDING_POLICY")
		} else {
			cfg.ReschedulePendingPolicy = policy
		}
	}

	cfg.HolidayProviderURL = lookup("HOLIDAY_PROVIDER_URL")
	cfg.HolidayProviderKey = lookup("HOLIDAY_PROVIDER_KEY")
	if cfg.HolidayProviderURL != "" && cfg.HolidayProviderKey == "" {
		missing = append(missing, envPrefix+"HOLIDAY_PROVIDER_KEY")
	}

	if path := lookup("HOLIDAY_TABLE"); path != "" {
		if _, err := os.Stat(path); err != nil {
			invalid = append(invalid, envPrefix+"HOLIDAY_TABLE")
		} else {
			cfg.HolidayTablePath = path
		}
	}

	if sizeValue := lookup("HOLIDAY_CACHE_SIZE"); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size < 0 {
			invalid = append(invalid, envPrefix+"HOLIDAY_CACHE_SIZE")
		} else {
			cfg.HolidayCacheSize = size
		}
	}

	if spec := lookup("HOUSEKEEPING_CRON"); spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			invalid = append(invalid, envPrefix+"HOUSEKEEPING_CRON")
		} else {
			cfg.HousekeepingSchedule = spec
		}
	}

	if level := strings.ToLower(lookup("LOG_LEVEL")); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, envPrefix+"LOG_LEVEL")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("필수 환경 변수가 설정되지 않았습니다: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("환경 변수 값이 올바르지 않습니다: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr is the listen address derived from HTTPPort.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

// loadEnvFile reads the dotenv file if one exists. Only an explicitly named
// file is required to be present.
func loadEnvFile() error {
	path := lookup("ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
