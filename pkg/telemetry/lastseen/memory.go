package lastseen

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Store, used when no Redis is configured.
// It does not survive restarts; liveness then falls back to the readings table.
type Memory struct {
	mu   sync.RWMutex
	seen map[string]time.Time
}

func NewMemory() *Memory { return &Memory{seen: map[string]time.Time{}} }

func (m *Memory) Touch(_ context.Context, mac string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.seen[mac]; !ok || at.After(prev) {
		m.seen[mac] = at.UTC()
	}
	return nil
}

func (m *Memory) Get(_ context.Context, mac string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.seen[mac]
	return at, ok, nil
}

func (m *Memory) Forget(_ context.Context, mac string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, mac)
	return nil
}
