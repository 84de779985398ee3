package booking

import "sync"

// carLocks serializes conflict-check-plus-insert per car so two concurrent
// creations for the same car cannot both pass the overlap check.
type carLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCarLocks() *carLocks {
	return &carLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for a car and returns its release func. Locks are
// kept for the process lifetime; the map is bounded by the catalog size.
func (l *carLocks) lock(carID string) func() {
	l.mu.Lock()
	m, ok := l.locks[carID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[carID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
