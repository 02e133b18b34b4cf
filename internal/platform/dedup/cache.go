package dedup

import (
	"context"
	"sync"
	"time"
)

// Cache is the duplicate-suppression guard consulted before a dispatch.
// It is advisory best-effort only: a read-then-write race between two
// near-simultaneous dispatches for the same key is acceptable because
// dispatches are human-paced.
type Cache interface {
	// LastSent reports when the key was last marked, if within the
	// suppression window.
	LastSent(ctx context.Context, key string) (time.Time, bool, error)
	// MarkSent records a dispatch attempt for the key.
	MarkSent(ctx context.Context, key string, at time.Time) error
}

// Memory holds sent markers in process memory. Entries survive until
// process restart; the suppression window is applied on read.
type Memory struct {
	mu   sync.Mutex
	sent map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		sent: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// NewMemoryWithClock allows tests to control the suppression window.
func NewMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	m := NewMemory(ttl)
	m.now = now
	return m
}

func (m *Memory) LastSent(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at, ok := m.sent[key]
	if !ok {
		return time.Time{}, false, nil
	}
	if m.now().Sub(at) >= m.ttl {
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func (m *Memory) MarkSent(_ context.Context, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent[key] = at
	return nil
}
