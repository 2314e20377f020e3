package repository

import (
	"context"
	"time"

	"netops/internal/models"

	"gorm.io/gorm"
)

// CompleteFilter selects flights by completion state on the read side.
type CompleteFilter int

const (
	CompleteAny CompleteFilter = iota
	CompleteOpen
	CompleteClosed
)

type FlightRepository interface {
	ListForStation(ctx context.Context, stationID uint, complete CompleteFilter, since *time.Time) ([]models.Flight, error)
	CountForStation(ctx context.Context, stationID uint) (int64, error)
}

type flightRepository struct {
	db *gorm.DB
}

func NewFlightRepository(db *gorm.DB) FlightRepository {
	return &flightRepository{db: db}
}

func (r *flightRepository) ListForStation(ctx context.Context, stationID uint, complete CompleteFilter, since *time.Time) ([]models.Flight, error) {
	q := r.db.WithContext(ctx).
		Where("station_id = ?", stationID)

	switch complete {
	case CompleteOpen:
		q = q.Where("complete = 0")
	case CompleteClosed:
		q = q.Where("complete = 1")
	}
	if since != nil {
		q = q.Where("last_seen_at >= ?", since.UTC())
	}

	var flights []models.Flight
	err := q.Order("last_seen_at DESC").
		Find(&flights).
		Error
	return flights, err
}

func (r *flightRepository) CountForStation(ctx context.Context, stationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Flight{}).
		Where("station_id = ?", stationID).
		Count(&count).
		Error
	return count, err
}
