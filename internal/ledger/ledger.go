// Package ledger implements domain.UsageLedger over several backends.
//
// Every backend shares one contract: counters are keyed by account and the
// start of a UTC day or month, rows are created on first increment, and an
// increment is a single atomic operation at the storage layer.
package ledger

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by New.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config selects and configures a ledger backend.
type Config struct {
	Backend    string
	DB         *sql.DB       // postgres
	Redis      *redis.Client // redis
	SQLitePath string        // sqlite
}

// New creates the configured ledger.
func New(cfg Config, logger *slog.Logger) (domain.UsageLedger, error) {
	switch cfg.Backend {
	case BackendPostgres, "":
		if cfg.DB == nil {
			return nil, fmt.Errorf("postgres ledger requires a database handle")
		}
		return NewPostgres(cfg.DB), nil
	case BackendRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis ledger requires a client")
		}
		return NewRedis(cfg.Redis), nil
	case BackendSQLite:
		return NewSQLite(cfg.SQLitePath)
	case BackendMemory:
		logger.Warn("Using in-memory usage ledger; counters are lost on restart and not shared across instances")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported ledger backend: %q", cfg.Backend)
	}
}

// fillHistory maps sparse per-month counts onto the last months windows,
// newest first, reporting 0 for months with no row.
func fillHistory(now time.Time, months int, counts map[time.Time]int64) []domain.MonthlyUsage {
	if months <= 0 {
		return nil
	}
	windows := domain.MonthWindows(now, months)
	out := make([]domain.MonthlyUsage, 0, len(windows))
	for _, w := range windows {
		out = append(out, domain.MonthlyUsage{PeriodStart: w, Count: counts[w]})
	}
	return out
}
