package repository

import (
	"context"
	"strings"
	"time"

	"netops/internal/models"

	"gorm.io/gorm"
)

type StationRepository interface {
	Create(ctx context.Context, station *models.Station) error
	GetByID(ctx context.Context, id uint) (*models.Station, error)
	GetByName(ctx context.Context, name string) (*models.Station, error)
	List(ctx context.Context) ([]models.Station, error)
	Save(ctx context.Context, station *models.Station) error
	TouchLastSeen(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

type stationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) StationRepository {
	return &stationRepository{db: db}
}

// NormalizeStationName canonicalizes a station name the way it is stored.
func NormalizeStationName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func (r *stationRepository) Create(ctx context.Context, station *models.Station) error {
	station.Name = NormalizeStationName(station.Name)
	return r.db.WithContext(ctx).Create(station).Error
}

func (r *stationRepository) GetByID(ctx context.Context, id uint) (*models.Station, error) {
	var station models.Station
	err := r.db.WithContext(ctx).First(&station, id).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepository) GetByName(ctx context.Context, name string) (*models.Station, error) {
	var station models.Station
	err := r.db.WithContext(ctx).
		Where("name = ?", NormalizeStationName(name)).
		First(&station).
		Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepository) List(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&stations).
		Error
	return stations, err
}

func (r *stationRepository) Save(ctx context.Context, station *models.Station) error {
	return r.db.WithContext(ctx).Save(station).Error
}

func (r *stationRepository) TouchLastSeen(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Station{}).
		Where("id = ?", id).
		Update("last_seen_at", at).
		Error
}

// Delete removes the station together with everything it owns. Child rows
// have ON DELETE CASCADE constraints, but the explicit deletes keep the
// behavior identical on stores that lack them (the sqlite test store).
func (r *stationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snapshotIDs []uint
		if err := tx.Model(&models.Snapshot{}).
			Where("station_id = ?", id).
			Pluck("id", &snapshotIDs).
			Error; err != nil {
			return err
		}
		if len(snapshotIDs) > 0 {
			if err := tx.Where("snapshot_id IN ?", snapshotIDs).Delete(&models.Flow{}).Error; err != nil {
				return err
			}
		}
		for _, m := range []interface{}{
			&models.Snapshot{}, &models.Flight{}, &models.InventoryItem{}, &models.IngestLog{},
		} {
			if err := tx.Where("station_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Station{}, id).Error
	})
}
