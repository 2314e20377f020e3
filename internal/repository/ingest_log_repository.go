package repository

import (
	"context"
	"time"

	"netops/internal/models"

	"gorm.io/gorm"
)

type IngestLogRepository interface {
	ListForStation(ctx context.Context, stationID uint, limit int) ([]models.IngestLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type ingestLogRepository struct {
	db *gorm.DB
}

func NewIngestLogRepository(db *gorm.DB) IngestLogRepository {
	return &ingestLogRepository{db: db}
}

func (r *ingestLogRepository) ListForStation(ctx context.Context, stationID uint, limit int) ([]models.IngestLog, error) {
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	var entries []models.IngestLog
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("received_at DESC").
		Limit(limit).
		Find(&entries).
		Error
	return entries, err
}

func (r *ingestLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("received_at < ?", cutoff).
		Delete(&models.IngestLog{})
	return res.RowsAffected, res.Error
}
