package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/google/uuid"
)

type windowKey struct {
	account uuid.UUID
	start   time.Time
}

// Memory keeps counters in process memory. It is meant for tests and local
// runs; counters vanish on restart and are not shared between instances.
type Memory struct {
	mu      sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
	daily   map[windowKey]int64
	monthly map[windowKey]int64
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		locks:   make(map[uuid.UUID]*sync.Mutex),
		daily:   make(map[windowKey]int64),
		monthly: make(map[windowKey]int64),
	}
}

// accountLock returns the per-account lock, creating it on first use.
func (l *Memory) accountLock(accountID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	return m
}

// GetUsage reads the current day and month counters.
func (l *Memory) GetUsage(_ context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	lock := l.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.UsageSnapshot{
		Daily:   l.daily[windowKey{accountID, domain.DayWindow(now)}],
		Monthly: l.monthly[windowKey{accountID, domain.MonthWindow(now)}],
	}, nil
}

// Increment bumps both counters under the account's lock.
func (l *Memory) Increment(_ context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	lock := l.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	dk := windowKey{accountID, domain.DayWindow(now)}
	mk := windowKey{accountID, domain.MonthWindow(now)}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.daily[dk]++
	l.monthly[mk]++
	return domain.UsageSnapshot{Daily: l.daily[dk], Monthly: l.monthly[mk]}, nil
}

// History returns the last months monthly counters, newest first.
func (l *Memory) History(_ context.Context, accountID uuid.UUID, now time.Time, months int) ([]domain.MonthlyUsage, error) {
	if months <= 0 {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	counts := make(map[time.Time]int64, months)
	for _, w := range domain.MonthWindows(now, months) {
		counts[w] = l.monthly[windowKey{accountID, w}]
	}
	return fillHistory(now, months, counts), nil
}
