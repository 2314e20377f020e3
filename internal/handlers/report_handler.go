package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"netops/internal/repository"
	"netops/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports       service.ReportService
	adminPassword string
}

func NewReportHandler(reports service.ReportService, adminPassword string) *ReportHandler {
	return &ReportHandler{reports: reports, adminPassword: adminPassword}
}

// flowWindow resolves the report window from either ?hours= or
// ?since=/?until=. Mixing the two styles is rejected; the default is the
// last 24 hours.
func flowWindow(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	hours := c.Query("hours")
	since := c.Query("since")
	until := c.Query("until")

	if hours != "" && (since != "" || until != "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "use either hours or since/until"})
		return time.Time{}, time.Time{}, false
	}

	if hours != "" {
		span, err := strconv.ParseFloat(hours, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
			return time.Time{}, time.Time{}, false
		}
		return now.Add(-time.Duration(span * float64(time.Hour))), now, true
	}

	start := now.Add(-24 * time.Hour)
	end := now
	if since != "" {
		t, err := parseISO(since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
			return time.Time{}, time.Time{}, false
		}
		start = t
	}
	if until != "" {
		t, err := parseISO(until)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid until"})
			return time.Time{}, time.Time{}, false
		}
		end = t
	}
	return start, end, true
}

func flowFilter(c *gin.Context) repository.FlowFilter {
	return repository.FlowFilter{
		Direction: strings.ToLower(c.DefaultQuery("direction", "all")),
		Origin:    strings.ToUpper(strings.TrimSpace(c.Query("origin"))),
		Dest:      strings.ToUpper(strings.TrimSpace(c.Query("dest"))),
	}
}

func (h *ReportHandler) GetFlows(c *gin.Context) {
	start, end, ok := flowWindow(c)
	if !ok {
		return
	}

	rows, err := h.reports.FlowsInWindow(c.Request.Context(), start, end, flowFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate flows"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ReportHandler) ExportFlows(c *gin.Context) {
	start, end, ok := flowWindow(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")

	path, err := h.reports.ExportFlows(c.Request.Context(), format, start, end, flowFilter(c))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format, use 'csv' or 'excel'"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export flows"})
		return
	}

	var contentType, filename string
	switch format {
	case "excel", "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "flows_export.xlsx"
	default:
		contentType = "text/csv"
		filename = "flows_export.csv"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.File(path)
}

func (h *ReportHandler) GetStations(c *gin.Context) {
	stations, err := h.reports.ListStations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stations"})
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (h *ReportHandler) GetStationFlights(c *gin.Context) {
	complete := repository.CompleteAny
	switch strings.ToLower(c.DefaultQuery("complete", "open")) {
	case "open", "0", "false":
		complete = repository.CompleteOpen
	case "1", "true", "closed":
		complete = repository.CompleteClosed
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := parseISO(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
			return
		}
		since = &t
	}

	flights, err := h.reports.StationFlights(c.Request.Context(), c.Param("name"), complete, since)
	if err != nil {
		h.renderStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *ReportHandler) GetStationInventory(c *gin.Context) {
	items, err := h.reports.StationInventory(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.renderStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ReportHandler) GetStationIngestLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.reports.StationIngestLog(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		h.renderStationError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *ReportHandler) GetAirports(c *gin.Context) {
	airports, err := h.reports.ListAirports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list airports"})
		return
	}
	c.JSON(http.StatusOK, airports)
}

type airportUpsertRequest struct {
	Code string   `json:"code" binding:"required"`
	Lat  *float64 `json:"lat" binding:"required"`
	Lon  *float64 `json:"lon" binding:"required"`
}

// UpsertAirport is admin-gated by a shared secret header; stations feed
// the airport table implicitly through ingestion instead.
func (h *ReportHandler) UpsertAirport(c *gin.Context) {
	if h.adminPassword != "" && c.GetHeader("X-Admin-Password") != h.adminPassword {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req airportUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code, lat and lon are required"})
		return
	}

	if err := h.reports.UpsertAirport(c.Request.Context(), req.Code, *req.Lat, *req.Lon); err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upsert airport"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ReportHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *ReportHandler) renderStationError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
}

func parseISO(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.Replace(raw, " ", "T", 1))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
