package service

import (
	"sync"
)

// stationLocks serializes ingestions per station. The database transaction
// alone cannot prevent the tier-3 read-then-write race between two
// concurrent snapshots from the same station, so the orchestrator holds
// this lock for the whole unit of work.
type stationLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newStationLocks() *stationLocks {
	return &stationLocks{locks: make(map[uint]*sync.Mutex)}
}

// Acquire blocks until the caller is the only ingestion running for the
// station. Lock entries are never removed; the station population is small
// and long-lived.
func (l *stationLocks) Acquire(stationID uint) {
	l.mu.Lock()
	m, ok := l.locks[stationID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[stationID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

func (l *stationLocks) Release(stationID uint) {
	l.mu.Lock()
	m := l.locks[stationID]
	l.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
