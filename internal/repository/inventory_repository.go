package repository

import (
	"context"

	"netops/internal/models"

	"gorm.io/gorm"
)

type InventoryRepository interface {
	ListForStation(ctx context.Context, stationID uint) ([]models.InventoryItem, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListForStation(ctx context.Context, stationID uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("category ASC NULLS FIRST").
		Order("item ASC").
		Find(&items).
		Error
	return items, err
}
