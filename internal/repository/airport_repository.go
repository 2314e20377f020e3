package repository

import (
	"context"

	"netops/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AirportRepository interface {
	List(ctx context.Context) ([]models.Airport, error)
	Upsert(ctx context.Context, airport *models.Airport) error
}

type airportRepository struct {
	db *gorm.DB
}

func NewAirportRepository(db *gorm.DB) AirportRepository {
	return &airportRepository{db: db}
}

func (r *airportRepository) List(ctx context.Context) ([]models.Airport, error) {
	var airports []models.Airport
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&airports).
		Error
	return airports, err
}

func (r *airportRepository) Upsert(ctx context.Context, airport *models.Airport) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"lat", "lon"}),
		}).
		Create(airport).
		Error
}
