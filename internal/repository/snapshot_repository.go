package repository

import (
	"context"
	"time"

	"netops/internal/models"

	"gorm.io/gorm"
)

type SnapshotRepository interface {
	GetLatestForStation(ctx context.Context, stationID uint) (*models.Snapshot, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) GetLatestForStation(ctx context.Context, stationID uint) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("generated_at DESC").
		First(&snap).
		Error
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// DeleteOlderThan prunes snapshots (with their flows) that fell out of the
// retention horizon. Flights and inventory are station-wide state and are
// never pruned here.
func (r *snapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Snapshot{}).
			Where("generated_at < ?", cutoff).
			Pluck("id", &ids).
			Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("snapshot_id IN ?", ids).Delete(&models.Flow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Snapshot{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
