package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"netops/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Station{},
		&models.Snapshot{},
		&models.Flow{},
		&models.Flight{},
		&models.InventoryItem{},
		&models.Airport{},
		&models.IngestLog{},
	))
	return db
}

func seedStation(t *testing.T, db *gorm.DB, name string) *models.Station {
	t.Helper()
	st := &models.Station{Name: name, PasswordHash: "x", TokenSalt: "s"}
	require.NoError(t, db.Create(st).Error)
	return st
}

func seedSnapshot(t *testing.T, db *gorm.DB, stationID uint, at time.Time, flows ...models.Flow) *models.Snapshot {
	t.Helper()
	snap := &models.Snapshot{StationID: stationID, GeneratedAt: at, WindowHours: 24}
	require.NoError(t, db.Create(snap).Error)
	for i := range flows {
		flows[i].SnapshotID = snap.ID
		require.NoError(t, db.Create(&flows[i]).Error)
	}
	return snap
}
