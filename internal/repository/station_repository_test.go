package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"netops/internal/models"
)

func TestStationNameNormalization(t *testing.T) {
	db := newTestDB(t)
	repo := NewStationRepository(db)
	ctx := context.Background()

	st := &models.Station{Name: "  abc ", PasswordHash: "x", TokenSalt: "s"}
	require.NoError(t, repo.Create(ctx, st))
	assert.Equal(t, "ABC", st.Name)

	found, err := repo.GetByName(ctx, "aBc")
	require.NoError(t, err)
	assert.Equal(t, st.ID, found.ID)
}

func TestStationNameUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewStationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Station{Name: "ABC", PasswordHash: "x", TokenSalt: "s"}))
	err := repo.Create(ctx, &models.Station{Name: "abc", PasswordHash: "x", TokenSalt: "s"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestTouchLastSeen(t *testing.T) {
	db := newTestDB(t)
	repo := NewStationRepository(db)
	ctx := context.Background()
	st := seedStation(t, db, "ABC")

	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastSeen(ctx, st.ID, at))

	fresh, err := repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.LastSeenAt)
	assert.True(t, fresh.LastSeenAt.Equal(at))
}

func TestDeleteStationRemovesEverythingItOwns(t *testing.T) {
	db := newTestDB(t)
	repo := NewStationRepository(db)
	ctx := context.Background()

	doomed := seedStation(t, db, "ABC")
	kept := seedStation(t, db, "XYZ")

	seedSnapshot(t, db, doomed.ID, time.Now().UTC(),
		models.Flow{Origin: "KJFK", Dest: "KBOS", Direction: "outbound"})
	seedSnapshot(t, db, kept.ID, time.Now().UTC(),
		models.Flow{Origin: "KLGA", Dest: "KORD", Direction: "inbound"})

	for _, stationID := range []uint{doomed.ID, kept.ID} {
		require.NoError(t, db.Create(&models.Flight{
			StationID: stationID, FirstSeenAt: time.Now().UTC(), LastSeenAt: time.Now().UTC(),
		}).Error)
		require.NoError(t, db.Create(&models.InventoryItem{
			StationID: stationID, Item: "Fuel", UpdatedAt: time.Now().UTC(),
		}).Error)
		require.NoError(t, db.Create(&models.IngestLog{
			StationID: stationID, ReceivedAt: time.Now().UTC(), Status: models.IngestAccepted,
		}).Error)
	}

	require.NoError(t, repo.Delete(ctx, doomed.ID))

	_, err := repo.GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	for _, m := range []interface{}{
		&models.Snapshot{}, &models.Flight{}, &models.InventoryItem{}, &models.IngestLog{},
	} {
		var count int64
		require.NoError(t, db.Model(m).Where("station_id = ?", doomed.ID).Count(&count).Error)
		assert.Zero(t, count)
		require.NoError(t, db.Model(m).Where("station_id = ?", kept.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count, "the surviving station keeps its rows")
	}

	var flowCount int64
	require.NoError(t, db.Model(&models.Flow{}).Count(&flowCount).Error)
	assert.EqualValues(t, 1, flowCount, "only the surviving station's flows remain")
}
