package handlers

import (
	"errors"
	"net/http"

	"netops/internal/middleware"
	"netops/internal/service"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	ingest service.IngestService
}

func NewIngestHandler(ingest service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// Ingest accepts one full-state snapshot from the authenticated station.
// The whole payload is applied atomically; any error means nothing was
// written.
func (h *IngestHandler) Ingest(c *gin.Context) {
	stationID, ok := middleware.StationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing station identity"})
		return
	}

	var req service.IngestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "message": err.Error()})
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), stationID, req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrIdentityMismatch):
			status = http.StatusUnauthorized
		case errors.Is(err, service.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, service.ErrNotFound):
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}
