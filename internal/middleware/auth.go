package middleware

import (
	"net/http"
	"strings"

	"netops/internal/repository"
	"netops/internal/service"

	"github.com/gin-gonic/gin"
)

const stationIDKey = "station_id"

// RequireStation authenticates the bearer token and binds the request to a
// station identity. A token issued under a rotated salt is rejected even
// if its signature and expiry are still valid.
func RequireStation(auth service.AuthService, stations repository.StationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		station, err := stations.GetByID(c.Request.Context(), claims.StationID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown station"})
			return
		}
		if station.TokenSalt != claims.Salt {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		c.Set(stationIDKey, station.ID)
		c.Next()
	}
}

// StationID returns the authenticated station id set by RequireStation.
func StationID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(stationIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
