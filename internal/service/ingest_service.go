package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"netops/internal/models"
	"netops/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngestService is the ingestion orchestrator: one call runs snapshot
// dedup, flow replacement, flight resolution/merge and inventory
// replacement as a single transaction, serialized per station.
type IngestService interface {
	Ingest(ctx context.Context, stationID uint, req IngestionRequest) (*IngestionResult, error)
}

type ingestService struct {
	db    *gorm.DB
	cache repository.CacheRepository // optional
	locks *stationLocks
	now   func() time.Time
}

func NewIngestService(db *gorm.DB, cache repository.CacheRepository) IngestService {
	return &ingestService{
		db:    db,
		cache: cache,
		locks: newStationLocks(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *ingestService) Ingest(ctx context.Context, stationID uint, req IngestionRequest) (*IngestionResult, error) {
	s.locks.Acquire(stationID)
	defer s.locks.Release(stationID)

	result := &IngestionResult{}
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := req.Normalize(); err != nil {
			return err
		}

		var station models.Station
		if err := tx.First(&station, stationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: station %d", ErrNotFound, stationID)
			}
			return err
		}
		if station.Name != repository.NormalizeStationName(req.Station) {
			return fmt.Errorf("%w: token is for %s, payload declares %s",
				ErrIdentityMismatch, station.Name, req.Station)
		}

		if err := s.touchStation(tx, &station, &req, now); err != nil {
			return err
		}

		snap, created, err := s.resolveSnapshot(tx, stationID, &req)
		if err != nil {
			return err
		}
		result.SnapshotID = snap.ID
		result.SnapshotCreated = created

		if err := s.replaceFlows(tx, snap.ID, req.Flows); err != nil {
			return err
		}
		result.Flows = len(req.Flows)

		for i := range req.Manifests {
			created, err := s.mergeManifest(tx, stationID, &req.Manifests[i], now)
			if err != nil {
				return err
			}
			if created {
				result.FlightsCreated++
			} else {
				result.FlightsMerged++
			}
		}

		if req.Inventory != nil {
			n, err := s.replaceInventory(tx, stationID, *req.Inventory, now)
			if err != nil {
				return err
			}
			result.InventoryItems = n
		}

		return tx.Create(&models.IngestLog{
			StationID:  stationID,
			ReceivedAt: now,
			Status:     models.IngestAccepted,
		}).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = fmt.Errorf("%w: %v", ErrConflict, err)
		}
		s.logRejected(ctx, stationID, now, err)
		return nil, err
	}

	s.invalidateReadViews(ctx)
	return result, nil
}

// resolveSnapshot finds the snapshot for this exact (station, generated_at)
// pair, or creates it. Re-submitting the same generation timestamp reuses
// the existing row; the composite unique constraint is the backstop under
// race.
func (s *ingestService) resolveSnapshot(tx *gorm.DB, stationID uint, req *IngestionRequest) (*models.Snapshot, bool, error) {
	var snap models.Snapshot
	err := tx.Where("station_id = ? AND generated_at = ?", stationID, req.GeneratedAt).
		First(&snap).
		Error
	if err == nil {
		return &snap, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	snap = models.Snapshot{
		StationID:   stationID,
		GeneratedAt: req.GeneratedAt,
		WindowHours: req.WindowHours,
	}
	if req.InventoryLastUpdate != "" {
		v := req.InventoryLastUpdate
		snap.InventoryLastUpdate = &v
	}
	if err := tx.Create(&snap).Error; err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

// replaceFlows makes the incoming list the complete flow set of the
// snapshot. Delete-then-insert, no merging, so re-ingesting a timestamp
// never accumulates stale rows.
func (s *ingestService) replaceFlows(tx *gorm.DB, snapshotID uint, rows []FlowRow) error {
	if err := tx.Where("snapshot_id = ?", snapshotID).Delete(&models.Flow{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	flows := make([]models.Flow, 0, len(rows))
	for _, fr := range rows {
		flows = append(flows, models.Flow{
			SnapshotID: snapshotID,
			Origin:     upperCode(fr.Origin),
			Dest:       upperCode(fr.Dest),
			Direction:  fr.Direction,
			Legs:       fr.Legs,
			WeightLbs:  fr.WeightLbs,
		})
	}
	return tx.Create(&flows).Error
}

// mergeManifest resolves the row to a flight (or creates one) and applies
// last-known-value-wins merge: present fields overwrite, absent fields
// preserve stored state.
func (s *ingestService) mergeManifest(tx *gorm.DB, stationID uint, row *ManifestRow, now time.Time) (bool, error) {
	rec, err := resolveFlight(tx, stationID, row)
	if err != nil {
		return false, err
	}
	created := rec == nil
	if created {
		rec = &models.Flight{
			StationID:   stationID,
			FirstSeenAt: now,
			LastSeenAt:  now,
		}
	}

	if row.FlightCode != "" {
		if rec.FlightCode == nil || *rec.FlightCode != row.FlightCode {
			if err := s.checkFlightCodeFree(tx, row.FlightCode, rec.ID); err != nil {
				return false, err
			}
			code := row.FlightCode
			rec.FlightCode = &code
		}
	}
	if row.FlightID != nil {
		id := *row.FlightID
		rec.ExternalFlightID = &id
	}
	setCode(&rec.Tail, row.Tail)
	setText(&rec.Direction, row.Direction)
	setCode(&rec.Origin, row.Origin)
	setCode(&rec.Dest, row.Dest)
	setText(&rec.CargoType, row.CargoType)
	if row.CargoWeightLbs != nil {
		w := *row.CargoWeightLbs
		rec.CargoWeightLbs = &w
	}
	setText(&rec.TakeoffHHMM, row.TakeoffHHMM)
	setText(&rec.EtaHHMM, row.EtaHHMM)
	if row.IsRampEntry != nil {
		rec.IsRampEntry = *row.IsRampEntry
	}
	if row.Complete != nil {
		rec.Complete = *row.Complete
	}
	setText(&rec.Remarks, row.Remarks)

	// Clamp to max(stored, reported): a stale retry must not rewind the
	// visibility window used by since-filtered reads.
	seen := now
	if row.UpdatedAt != nil {
		seen = row.UpdatedAt.UTC()
	}
	if created || seen.After(rec.LastSeenAt) {
		rec.LastSeenAt = seen
	}

	return created, tx.Save(rec).Error
}

// checkFlightCodeFree rejects assigning a code that a different flight
// already owns. The unique column constraint remains the backstop for the
// concurrent case.
func (s *ingestService) checkFlightCodeFree(tx *gorm.DB, code string, selfID uint) error {
	var count int64
	err := tx.Model(&models.Flight{}).
		Where("flight_code = ? AND id <> ?", code, selfID).
		Count(&count).
		Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: flight code %s already belongs to another flight", ErrConflict, code)
	}
	return nil
}

// replaceInventory is a full-state replace: the incoming list is the
// station's entire inventory. Rows with a blank item name are skipped;
// missing qty/weight stay null rather than zero.
func (s *ingestService) replaceInventory(tx *gorm.DB, stationID uint, rows []InventoryRow, now time.Time) (int, error) {
	if err := tx.Where("station_id = ?", stationID).Delete(&models.InventoryItem{}).Error; err != nil {
		return 0, err
	}
	items := make([]models.InventoryItem, 0, len(rows))
	for _, iv := range rows {
		name := strings.TrimSpace(iv.Item)
		if name == "" {
			continue
		}
		item := models.InventoryItem{
			StationID: stationID,
			Item:      name,
			Qty:       iv.Qty,
			WeightLbs: iv.WeightLbs,
			UpdatedAt: now,
		}
		if cat := strings.TrimSpace(truncate(iv.Category, 128)); cat != "" {
			item.Category = &cat
		}
		if iv.CategoryID != nil {
			id := *iv.CategoryID
			item.CategoryID = &id
		}
		if iv.UpdatedAt != nil {
			item.UpdatedAt = iv.UpdatedAt.UTC()
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return 0, nil
	}
	return len(items), tx.Create(&items).Error
}

// touchStation records the contact: last-seen, last known default origin
// and coordinates, plus the opportunistic airport upsert when both the
// origin code and its coordinates are reported.
func (s *ingestService) touchStation(tx *gorm.DB, station *models.Station, req *IngestionRequest, now time.Time) error {
	station.LastSeenAt = &now
	origin := upperCode(req.DefaultOrigin)
	if origin != "" {
		station.LastDefaultOrigin = &origin
	}
	if req.OriginCoords != nil {
		lat, lon := req.OriginCoords.Lat, req.OriginCoords.Lon
		station.LastOriginLat = &lat
		station.LastOriginLon = &lon
		if origin != "" {
			airport := models.Airport{Code: origin, Lat: lat, Lon: lon}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"lat", "lon"}),
			}).Create(&airport).Error; err != nil {
				return err
			}
		}
	}
	return tx.Save(station).Error
}

// logRejected writes the audit row for a failed ingestion outside the
// rolled-back transaction so the trail survives.
func (s *ingestService) logRejected(ctx context.Context, stationID uint, now time.Time, cause error) {
	msg := cause.Error()
	entry := &models.IngestLog{
		StationID:  stationID,
		ReceivedAt: now,
		Status:     models.IngestRejected,
		Error:      &msg,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("Failed to record rejected ingestion for station %d: %v", stationID, err)
	}
}

func (s *ingestService) invalidateReadViews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, cacheKeyFlowsPrefix+"*"); err != nil {
		log.Printf("Failed to invalidate flow cache: %v", err)
	}
	if err := s.cache.Delete(ctx, cacheKeyStations); err != nil {
		log.Printf("Failed to invalidate station cache: %v", err)
	}
}

func upperCode(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// setCode overwrites dst when v is present, upper-casing it.
func setCode(dst **string, v string) {
	if code := upperCode(v); code != "" {
		*dst = &code
	}
}

// setText overwrites dst when v is present, preserving it verbatim.
func setText(dst **string, v string) {
	if v != "" {
		s := v
		*dst = &s
	}
}

func truncate(v string, n int) string {
	if len(v) > n {
		return v[:n]
	}
	return v
}
