package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"netops/internal/models"
	"netops/internal/repository"
	"netops/internal/utils"

	"gorm.io/gorm"
)

const (
	cacheKeyStations    = "netops:stations"
	cacheKeyFlowsPrefix = "netops:flows:"

	readViewCacheTTL = 30 * time.Second
)

// ReportService serves the read side: derived views over the entities the
// ingestion core maintains.
type ReportService interface {
	FlowsInWindow(ctx context.Context, start, end time.Time, filter repository.FlowFilter) ([]repository.FlowAggregate, error)
	ExportFlows(ctx context.Context, format string, start, end time.Time, filter repository.FlowFilter) (string, error)
	ListStations(ctx context.Context) ([]models.Station, error)
	StationFlights(ctx context.Context, name string, complete repository.CompleteFilter, since *time.Time) ([]models.Flight, error)
	StationInventory(ctx context.Context, name string) ([]models.InventoryItem, error)
	ListAirports(ctx context.Context) ([]models.Airport, error)
	UpsertAirport(ctx context.Context, code string, lat, lon float64) error
	StationIngestLog(ctx context.Context, name string, limit int) ([]models.IngestLog, error)
}

type reportService struct {
	stations  repository.StationRepository
	flows     repository.FlowRepository
	flights   repository.FlightRepository
	inventory repository.InventoryRepository
	airports  repository.AirportRepository
	ingestLog repository.IngestLogRepository
	cache     repository.CacheRepository // optional
	outputDir string
}

func NewReportService(
	stations repository.StationRepository,
	flows repository.FlowRepository,
	flights repository.FlightRepository,
	inventory repository.InventoryRepository,
	airports repository.AirportRepository,
	ingestLog repository.IngestLogRepository,
	cache repository.CacheRepository,
	outputDir string,
) ReportService {
	if outputDir == "" {
		outputDir = "./data/reports"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Printf("Failed to create report directory: %v", err)
	}
	return &reportService{
		stations:  stations,
		flows:     flows,
		flights:   flights,
		inventory: inventory,
		airports:  airports,
		ingestLog: ingestLog,
		cache:     cache,
		outputDir: outputDir,
	}
}

func (s *reportService) FlowsInWindow(ctx context.Context, start, end time.Time, filter repository.FlowFilter) ([]repository.FlowAggregate, error) {
	key := flowsCacheKey(start, end, filter)
	if s.cache != nil {
		var cached []repository.FlowAggregate
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.flows.Aggregate(ctx, start, end, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, rows, readViewCacheTTL); err != nil {
			log.Printf("Failed to cache flow report: %v", err)
		}
	}
	return rows, nil
}

// ExportFlows writes the windowed flow report to a CSV or Excel file and
// returns its path.
func (s *reportService) ExportFlows(ctx context.Context, format string, start, end time.Time, filter repository.FlowFilter) (string, error) {
	rows, err := s.FlowsInWindow(ctx, start, end, filter)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	switch format {
	case "csv":
		path := filepath.Join(s.outputDir, fmt.Sprintf("flows_%s.csv", timestamp))
		return path, s.saveFlowsCSV(path, rows)
	case "excel", "xlsx":
		path := filepath.Join(s.outputDir, fmt.Sprintf("flows_%s.xlsx", timestamp))
		return path, utils.CreateFlowReportExcel(path, rows)
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", ErrValidation, format)
	}
}

func (s *reportService) saveFlowsCSV(path string, rows []repository.FlowAggregate) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"origin", "dest", "direction", "legs", "weight_lbs"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Origin,
			r.Dest,
			r.Direction,
			strconv.FormatInt(r.Legs, 10),
			strconv.FormatFloat(r.WeightLbs, 'f', 1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *reportService) ListStations(ctx context.Context) ([]models.Station, error) {
	if s.cache != nil {
		var cached []models.Station
		if hit, err := s.cache.GetJSON(ctx, cacheKeyStations, &cached); err == nil && hit {
			return cached, nil
		}
	}
	stations, err := s.stations.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKeyStations, stations, readViewCacheTTL); err != nil {
			log.Printf("Failed to cache station list: %v", err)
		}
	}
	return stations, nil
}

func (s *reportService) StationFlights(ctx context.Context, name string, complete repository.CompleteFilter, since *time.Time) ([]models.Flight, error) {
	station, err := s.lookupStation(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.flights.ListForStation(ctx, station.ID, complete, since)
}

func (s *reportService) StationInventory(ctx context.Context, name string) ([]models.InventoryItem, error) {
	station, err := s.lookupStation(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.inventory.ListForStation(ctx, station.ID)
}

// StationIngestLog lists the station's most recent ingestion attempts,
// accepted and rejected alike, newest first.
func (s *reportService) StationIngestLog(ctx context.Context, name string, limit int) ([]models.IngestLog, error) {
	station, err := s.lookupStation(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.ingestLog.ListForStation(ctx, station.ID, limit)
}

func (s *reportService) ListAirports(ctx context.Context) ([]models.Airport, error) {
	return s.airports.List(ctx)
}

func (s *reportService) UpsertAirport(ctx context.Context, code string, lat, lon float64) error {
	code = repository.NormalizeStationName(code)
	if code == "" {
		return fmt.Errorf("%w: airport code required", ErrValidation)
	}
	return s.airports.Upsert(ctx, &models.Airport{Code: code, Lat: lat, Lon: lon})
}

func (s *reportService) lookupStation(ctx context.Context, name string) (*models.Station, error) {
	station, err := s.stations.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: station %s", ErrNotFound, repository.NormalizeStationName(name))
		}
		return nil, err
	}
	return station, nil
}

func flowsCacheKey(start, end time.Time, filter repository.FlowFilter) string {
	return fmt.Sprintf("%s%d:%d:%s:%s:%s",
		cacheKeyFlowsPrefix, start.Unix(), end.Unix(),
		filter.Direction, filter.Origin, filter.Dest)
}
