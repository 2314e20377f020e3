package models

import (
	"time"
)

// Flight is a long-lived manifest record. It is resolved globally by
// flight code, then by (station, external id), then heuristically; it is
// never snapshot-scoped. FlightCode, when set, is unique across all
// stations.
type Flight struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	StationID        uint       `gorm:"not null;index:ix_flights_station_external,priority:1" json:"-"`
	ExternalFlightID *int64     `gorm:"index:ix_flights_station_external,priority:2" json:"external_flight_id"`
	FlightCode       *string    `gorm:"size:32;uniqueIndex" json:"flight_code"`
	Tail             *string    `gorm:"size:16" json:"tail"`
	Direction        *string    `gorm:"size:10" json:"direction"`
	Origin           *string    `gorm:"size:8" json:"origin"`
	Dest             *string    `gorm:"size:8" json:"dest"`
	CargoType        *string    `gorm:"size:128" json:"cargo_type"`
	CargoWeightLbs   *float64   `json:"cargo_weight_lbs"`
	TakeoffHHMM      *string    `gorm:"column:takeoff_hhmm;size:4" json:"takeoff_hhmm"`
	EtaHHMM          *string    `gorm:"column:eta_hhmm;size:4" json:"eta_hhmm"`
	IsRampEntry      int        `gorm:"not null;default:0" json:"is_ramp_entry"`
	Complete         int        `gorm:"not null;default:0" json:"complete"`
	Remarks          *string    `gorm:"type:text" json:"remarks"`
	FirstSeenAt      time.Time  `gorm:"not null" json:"first_seen_at"`
	LastSeenAt       time.Time  `gorm:"not null" json:"last_seen_at"`
}

func (Flight) TableName() string {
	return "flights"
}
