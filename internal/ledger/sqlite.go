package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteDate = "2006-01-02"

// SQLite stores counters in a local database file for single-node
// deployments that run without Postgres.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the ledger database at dsn.
func NewSQLite(dsn string) (*SQLite, error) {
	// Shared cache so every pooled connection sees the same in-memory database.
	if dsn == ":memory:" || dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One writer at a time; increments queue in the pool instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	l := &SQLite{db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

func (l *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS daily_usage (
			account_id TEXT NOT NULL,
			usage_date TEXT NOT NULL,
			prompt_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (account_id, usage_date)
		)`,
		`CREATE TABLE IF NOT EXISTS monthly_usage (
			account_id TEXT NOT NULL,
			period_start TEXT NOT NULL,
			prompt_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (account_id, period_start)
		)`,
	}
	for _, m := range migrations {
		if _, err := l.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (l *SQLite) Close() error {
	return l.db.Close()
}

// GetUsage reads the current day and month counters.
func (l *SQLite) GetUsage(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	const op = "ledger.get_usage"

	var snap domain.UsageSnapshot
	err := l.db.QueryRowContext(ctx,
		`SELECT prompt_count FROM daily_usage WHERE account_id = ? AND usage_date = ?`,
		accountID.String(), domain.DayWindow(now).Format(sqliteDate),
	).Scan(&snap.Daily)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to read daily usage")
	}

	err = l.db.QueryRowContext(ctx,
		`SELECT prompt_count FROM monthly_usage WHERE account_id = ? AND period_start = ?`,
		accountID.String(), domain.MonthWindow(now).Format(sqliteDate),
	).Scan(&snap.Monthly)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to read monthly usage")
	}

	return snap, nil
}

// Increment upserts both counters inside one transaction.
func (l *SQLite) Increment(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	const op = "ledger.increment"

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var snap domain.UsageSnapshot
	err = tx.QueryRowContext(ctx,
		`INSERT INTO daily_usage (account_id, usage_date, prompt_count) VALUES (?, ?, 1)
		 ON CONFLICT(account_id, usage_date) DO UPDATE SET prompt_count = prompt_count + 1
		 RETURNING prompt_count`,
		accountID.String(), domain.DayWindow(now).Format(sqliteDate),
	).Scan(&snap.Daily)
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to increment daily usage")
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO monthly_usage (account_id, period_start, prompt_count) VALUES (?, ?, 1)
		 ON CONFLICT(account_id, period_start) DO UPDATE SET prompt_count = prompt_count + 1
		 RETURNING prompt_count`,
		accountID.String(), domain.MonthWindow(now).Format(sqliteDate),
	).Scan(&snap.Monthly)
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to increment monthly usage")
	}

	if err := tx.Commit(); err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to commit usage increment")
	}
	return snap, nil
}

// History returns the last months monthly counters, newest first.
func (l *SQLite) History(ctx context.Context, accountID uuid.UUID, now time.Time, months int) ([]domain.MonthlyUsage, error) {
	const op = "ledger.history"

	if months <= 0 {
		return nil, nil
	}
	since := domain.MonthWindow(now).AddDate(0, -(months - 1), 0)

	rows, err := l.db.QueryContext(ctx,
		`SELECT period_start, prompt_count FROM monthly_usage
		 WHERE account_id = ? AND period_start >= ?
		 ORDER BY period_start DESC`,
		accountID.String(), since.Format(sqliteDate),
	)
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to read usage history")
	}
	defer rows.Close()

	counts := make(map[time.Time]int64)
	for rows.Next() {
		var period string
		var n int64
		if err := rows.Scan(&period, &n); err != nil {
			return nil, domain.Unavailable(err, op, "failed to scan usage history")
		}
		t, err := time.Parse(sqliteDate, period)
		if err != nil {
			return nil, domain.Unavailable(err, op, "corrupt period in usage history")
		}
		counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable(err, op, "failed to read usage history")
	}
	return fillHistory(now, months, counts), nil
}
