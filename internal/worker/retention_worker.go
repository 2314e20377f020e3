package worker

import (
	"context"
	"log"
	"time"

	"netops/internal/repository"
)

// RetentionWorker periodically prunes expired audit rows and snapshots.
// Flights and inventory are station-wide state and are never pruned.
type RetentionWorker struct {
	logs           repository.IngestLogRepository
	snapshots      repository.SnapshotRepository
	interval       time.Duration
	logMaxAge      time.Duration
	snapshotMaxAge time.Duration
	stopChan       chan struct{}
	running        bool
}

func NewRetentionWorker(
	logs repository.IngestLogRepository,
	snapshots repository.SnapshotRepository,
	interval, logMaxAge, snapshotMaxAge time.Duration,
) *RetentionWorker {
	return &RetentionWorker{
		logs:           logs,
		snapshots:      snapshots,
		interval:       interval,
		logMaxAge:      logMaxAge,
		snapshotMaxAge: snapshotMaxAge,
		stopChan:       make(chan struct{}),
	}
}

func (w *RetentionWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Retention Worker started with interval %v", w.interval)

	w.prune()
	go w.run()
}

func (w *RetentionWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("Retention Worker stopped")
}

func (w *RetentionWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.prune()
		case <-w.stopChan:
			return
		}
	}
}

func (w *RetentionWorker) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()

	if n, err := w.logs.DeleteOlderThan(ctx, now.Add(-w.logMaxAge)); err != nil {
		log.Printf("Retention Worker: failed to prune ingest log: %v", err)
	} else if n > 0 {
		log.Printf("Retention Worker: pruned %d ingest log rows", n)
	}

	if n, err := w.snapshots.DeleteOlderThan(ctx, now.Add(-w.snapshotMaxAge)); err != nil {
		log.Printf("Retention Worker: failed to prune snapshots: %v", err)
	} else if n > 0 {
		log.Printf("Retention Worker: pruned %d snapshots", n)
	}
}
