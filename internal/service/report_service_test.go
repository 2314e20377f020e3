package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netops/internal/repository"
)

func newTestReports(t *testing.T) (ReportService, *ingestService, uint) {
	t.Helper()
	svc, db := newTestIngest(t)
	st := createTestStation(t, db, "ABC")
	reports := NewReportService(
		repository.NewStationRepository(db),
		repository.NewFlowRepository(db),
		repository.NewFlightRepository(db),
		repository.NewInventoryRepository(db),
		repository.NewAirportRepository(db),
		repository.NewIngestLogRepository(db),
		nil,
		t.TempDir(),
	)
	return reports, svc, st.ID
}

func TestExportFlowsCSV(t *testing.T) {
	reports, svc, stationID := newTestReports(t)
	ctx := context.Background()

	req := baseRequest("ABC", time.Now().UTC().Add(-time.Hour))
	req.Flows = []FlowRow{{Origin: "KJFK", Dest: "KBOS", Direction: "outbound", Legs: 2, WeightLbs: 500}}
	_, err := svc.Ingest(ctx, stationID, req)
	require.NoError(t, err)

	now := time.Now().UTC()
	path, err := reports.ExportFlows(ctx, "csv", now.Add(-24*time.Hour), now, repository.FlowFilter{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "origin,dest,direction,legs,weight_lbs")
	assert.Contains(t, string(data), "KJFK,KBOS,outbound,2,500.0")
}

func TestExportFlowsRejectsUnknownFormat(t *testing.T) {
	reports, _, _ := newTestReports(t)
	now := time.Now().UTC()

	_, err := reports.ExportFlows(context.Background(), "pdf", now.Add(-time.Hour), now, repository.FlowFilter{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStationViewsRequireKnownStation(t *testing.T) {
	reports, _, _ := newTestReports(t)
	ctx := context.Background()

	_, err := reports.StationFlights(ctx, "NOPE", repository.CompleteAny, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reports.StationInventory(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertAirportNormalizesCode(t *testing.T) {
	reports, _, _ := newTestReports(t)
	ctx := context.Background()

	require.NoError(t, reports.UpsertAirport(ctx, " kjfk ", 40.64, -73.78))

	airports, err := reports.ListAirports(ctx)
	require.NoError(t, err)
	require.Len(t, airports, 1)
	assert.Equal(t, "KJFK", airports[0].Code)

	err = reports.UpsertAirport(ctx, "  ", 0, 0)
	assert.ErrorIs(t, err, ErrValidation)
}
