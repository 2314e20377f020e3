package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStationLocksSerializePerStation(t *testing.T) {
	locks := newStationLocks()

	var mu sync.Mutex
	inSection := map[uint]int{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		stationID := uint(i % 5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Acquire(stationID)
			defer locks.Release(stationID)

			mu.Lock()
			inSection[stationID]++
			over := inSection[stationID] > 1
			mu.Unlock()
			assert.False(t, over, "two ingestions inside the critical section for station %d", stationID)

			mu.Lock()
			inSection[stationID]--
			mu.Unlock()
		}()
	}
	wg.Wait()
}

func TestStationLocksIndependentAcrossStations(t *testing.T) {
	locks := newStationLocks()
	locks.Acquire(1)

	done := make(chan struct{})
	go func() {
		locks.Acquire(2)
		locks.Release(2)
		close(done)
	}()
	<-done // a held lock on station 1 must not block station 2

	locks.Release(1)
}
