package service

import (
	"errors"
	"strings"

	"netops/internal/models"

	"gorm.io/gorm"
)

// Flight resolution is an ordered list of matcher strategies, evaluated
// first-match-wins:
//
//  1. flight_code — global, since flight codes are unique across stations
//  2. (station, external flight id)
//  3. heuristic composite key (station, tail, origin, dest, takeoff) over
//     open flights only, latest last_seen_at wins
//
// A matcher returns (nil, nil) when it does not apply or finds nothing;
// the caller creates a new flight after all tiers miss.
type flightMatcher struct {
	name  string
	match func(tx *gorm.DB, stationID uint, row *ManifestRow) (*models.Flight, error)
}

var flightMatchers = []flightMatcher{
	{name: "flight_code", match: matchByFlightCode},
	{name: "external_id", match: matchByExternalID},
	{name: "open_route", match: matchByOpenRoute},
}

func resolveFlight(tx *gorm.DB, stationID uint, row *ManifestRow) (*models.Flight, error) {
	for _, m := range flightMatchers {
		flight, err := m.match(tx, stationID, row)
		if err != nil {
			return nil, err
		}
		if flight != nil {
			return flight, nil
		}
	}
	return nil, nil
}

func matchByFlightCode(tx *gorm.DB, _ uint, row *ManifestRow) (*models.Flight, error) {
	if row.FlightCode == "" {
		return nil, nil
	}
	return firstFlight(tx.Where("flight_code = ?", row.FlightCode))
}

func matchByExternalID(tx *gorm.DB, stationID uint, row *ManifestRow) (*models.Flight, error) {
	if row.FlightID == nil {
		return nil, nil
	}
	return firstFlight(tx.Where("station_id = ? AND external_flight_id = ?", stationID, *row.FlightID))
}

// matchByOpenRoute only applies when tail, origin, dest and takeoff time
// are all reported. It never matches completed flights; if several open
// flights share the key, the most recently seen one wins.
func matchByOpenRoute(tx *gorm.DB, stationID uint, row *ManifestRow) (*models.Flight, error) {
	if row.Tail == "" || row.Origin == "" || row.Dest == "" || row.TakeoffHHMM == "" {
		return nil, nil
	}
	return firstFlight(tx.
		Where("station_id = ? AND tail = ? AND origin = ? AND dest = ?",
			stationID,
			strings.ToUpper(strings.TrimSpace(row.Tail)),
			strings.ToUpper(strings.TrimSpace(row.Origin)),
			strings.ToUpper(strings.TrimSpace(row.Dest))).
		Where("takeoff_hhmm = ? AND complete = 0", row.TakeoffHHMM).
		Order("last_seen_at DESC"))
}

func firstFlight(q *gorm.DB) (*models.Flight, error) {
	var flight models.Flight
	err := q.First(&flight).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &flight, nil
}
