package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "usage"

	// Daily keys outlive their window by a day so late reads near midnight still see them.
	dailyRetention = 24 * time.Hour
	// Monthly keys back the usage history view.
	monthlyRetention = 13 * 31 * 24 * time.Hour
)

// Redis stores counters as plain integer keys shared by every instance.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed ledger.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func dailyKey(accountID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s:%s:d:%s", redisKeyPrefix, accountID, domain.DayWindow(now).Format("2006-01-02"))
}

func monthlyKey(accountID uuid.UUID, window time.Time) string {
	return fmt.Sprintf("%s:%s:m:%s", redisKeyPrefix, accountID, window.Format("2006-01"))
}

// GetUsage reads both counters in one round trip.
func (l *Redis) GetUsage(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	const op = "ledger.get_usage"

	vals, err := l.client.MGet(ctx, dailyKey(accountID, now), monthlyKey(accountID, domain.MonthWindow(now))).Result()
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to read usage counters")
	}

	daily, err := parseCount(vals[0])
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "corrupt daily counter")
	}
	monthly, err := parseCount(vals[1])
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "corrupt monthly counter")
	}
	return domain.UsageSnapshot{Daily: daily, Monthly: monthly}, nil
}

// Increment bumps both counters in a MULTI/EXEC block.
func (l *Redis) Increment(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	const op = "ledger.increment"

	dk := dailyKey(accountID, now)
	mk := monthlyKey(accountID, domain.MonthWindow(now))

	var dailyCmd, monthlyCmd *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		dailyCmd = pipe.Incr(ctx, dk)
		pipe.ExpireAt(ctx, dk, domain.NextDayWindow(now).Add(dailyRetention))
		monthlyCmd = pipe.Incr(ctx, mk)
		pipe.ExpireAt(ctx, mk, domain.NextMonthWindow(now).Add(monthlyRetention))
		return nil
	})
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to increment usage counters")
	}

	return domain.UsageSnapshot{Daily: dailyCmd.Val(), Monthly: monthlyCmd.Val()}, nil
}

// History reads the last months monthly counters, newest first.
func (l *Redis) History(ctx context.Context, accountID uuid.UUID, now time.Time, months int) ([]domain.MonthlyUsage, error) {
	const op = "ledger.history"

	if months <= 0 {
		return nil, nil
	}
	windows := domain.MonthWindows(now, months)
	keys := make([]string, len(windows))
	for i, w := range windows {
		keys[i] = monthlyKey(accountID, w)
	}

	vals, err := l.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to read usage history")
	}

	counts := make(map[time.Time]int64, len(windows))
	for i, v := range vals {
		n, err := parseCount(v)
		if err != nil {
			return nil, domain.Unavailable(err, op, "corrupt monthly counter")
		}
		counts[windows[i]] = n
	}
	return fillHistory(now, months, counts), nil
}

func parseCount(v interface{}) (int64, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(s, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}
}
