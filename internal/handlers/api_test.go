package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"netops/internal/middleware"
	"netops/internal/models"
	"netops/internal/repository"
	"netops/internal/service"
)

type testAPI struct {
	router   *gin.Engine
	db       *gorm.DB
	auth     service.AuthService
	stations repository.StationRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Station{}, &models.Snapshot{}, &models.Flow{}, &models.Flight{},
		&models.InventoryItem{}, &models.Airport{}, &models.IngestLog{},
	))

	stationRepo := repository.NewStationRepository(db)
	flowRepo := repository.NewFlowRepository(db)
	flightRepo := repository.NewFlightRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	airportRepo := repository.NewAirportRepository(db)
	ingestLogRepo := repository.NewIngestLogRepository(db)

	auth := service.NewAuthService(stationRepo, "test-secret", time.Hour)
	ingest := service.NewIngestService(db, nil)
	reports := service.NewReportService(
		stationRepo, flowRepo, flightRepo, inventoryRepo, airportRepo, ingestLogRepo,
		nil, t.TempDir())

	r := gin.New()
	api := r.Group("/api")
	api.POST("/login", NewAuthHandler(auth).Login)
	api.POST("/ingest", middleware.RequireStation(auth, stationRepo), NewIngestHandler(ingest).Ingest)

	reportHandler := NewReportHandler(reports, "admin-pw")
	api.GET("/flows", reportHandler.GetFlows)
	api.GET("/stations", reportHandler.GetStations)
	api.GET("/stations/:name/flights", reportHandler.GetStationFlights)
	api.GET("/stations/:name/inventory", reportHandler.GetStationInventory)
	api.GET("/stations/:name/ingest-log", reportHandler.GetStationIngestLog)
	api.GET("/airports", reportHandler.GetAirports)
	api.POST("/airports", reportHandler.UpsertAirport)
	api.GET("/health", reportHandler.Health)

	return &testAPI{router: r, db: db, auth: auth, stations: stationRepo}
}

func (a *testAPI) addStation(t *testing.T, name, password string) *models.Station {
	t.Helper()
	hash, err := a.auth.HashPassword(password)
	require.NoError(t, err)
	st := &models.Station{Name: name, PasswordHash: hash, TokenSalt: a.auth.NewTokenSalt()}
	require.NoError(t, a.db.Create(st).Error)
	return st
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, station, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/login", "", gin.H{"station": station, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func ingestPayload(station string) gin.H {
	return gin.H{
		"station":      station,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"flows": []gin.H{
			{"origin": "KJFK", "dest": "KBOS", "direction": "outbound", "legs": 2, "weight_lbs": 500},
		},
	}
}

func TestLoginEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.addStation(t, "ABC", "pw")

	w := api.do(t, http.MethodPost, "/api/login", "", gin.H{"station": "ABC", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/login", "", gin.H{"station": "ABC"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := api.login(t, "ABC", "pw")
	assert.NotEmpty(t, token)
}

func TestIngestRequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)
	api.addStation(t, "ABC", "pw")

	w := api.do(t, http.MethodPost, "/api/ingest", "", ingestPayload("ABC"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/ingest", "garbage", ingestPayload("ABC"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngestRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	api.addStation(t, "ABC", "pw")
	token := api.login(t, "ABC", "pw")

	w := api.do(t, http.MethodPost, "/api/ingest", token, ingestPayload("ABC"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OK     bool                    `json:"ok"`
		Result service.IngestionResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Result.SnapshotCreated)
	assert.Equal(t, 1, resp.Result.Flows)

	w = api.do(t, http.MethodGet, "/api/flows?hours=24", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []repository.FlowAggregate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "KJFK", rows[0].Origin)
	assert.EqualValues(t, 2, rows[0].Legs)
}

func TestIngestRejectsForeignStationPayload(t *testing.T) {
	api := newTestAPI(t)
	api.addStation(t, "ABC", "pw")
	api.addStation(t, "XYZ", "pw")
	token := api.login(t, "ABC", "pw")

	w := api.do(t, http.MethodPost, "/api/ingest", token, ingestPayload("XYZ"))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "the token identity wins over the payload")
}

func TestSaltRotationRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	st := api.addStation(t, "ABC", "pw")
	token := api.login(t, "ABC", "pw")

	require.NoError(t, api.db.Model(st).Update("token_salt", api.auth.NewTokenSalt()).Error)

	w := api.do(t, http.MethodPost, "/api/ingest", token, ingestPayload("ABC"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFlowWindowValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/flows?hours=24&since=2025-01-01T00:00:00Z", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/flows?hours=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/flows?since=2025-01-01T00:00:00Z&until=2025-01-02T00:00:00Z", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStationFlightsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.addStation(t, "ABC", "pw")
	token := api.login(t, "ABC", "pw")

	payload := ingestPayload("ABC")
	payload["manifests"] = []gin.H{
		{"flight_code": "AB123", "tail": "n1", "takeoff_hhmm": "930"},
	}
	w := api.do(t, http.MethodPost, "/api/ingest", token, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/stations/abc/flights", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flights []models.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flights))
	require.Len(t, flights, 1)
	require.NotNil(t, flights[0].FlightCode)
	assert.Equal(t, "AB123", *flights[0].FlightCode)
	assert.Equal(t, "0930", *flights[0].TakeoffHHMM)

	w = api.do(t, http.MethodGet, "/api/stations/NOPE/flights", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStationIngestLogEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.addStation(t, "ABC", "pw")
	token := api.login(t, "ABC", "pw")

	w := api.do(t, http.MethodPost, "/api/ingest", token, ingestPayload("ABC"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/ingest", token, ingestPayload("XYZ"))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodGet, "/api/stations/ABC/ingest-log", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.IngestLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	statuses := []string{entries[0].Status, entries[1].Status}
	assert.Contains(t, statuses, models.IngestAccepted)
	assert.Contains(t, statuses, models.IngestRejected)
}

func TestAirportUpsertIsAdminGated(t *testing.T) {
	api := newTestAPI(t)
	body := gin.H{"code": "kjfk", "lat": 40.64, "lon": -73.78}

	w := api.do(t, http.MethodPost, "/api/airports", "", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/airports", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Password", "admin-pw")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	w = api.do(t, http.MethodGet, "/api/airports", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var airports []models.Airport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &airports))
	require.Len(t, airports, 1)
	assert.Equal(t, "KJFK", airports[0].Code)
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}
