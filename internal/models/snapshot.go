package models

import (
	"time"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Snapshot is one station's declared state at one generation timestamp.
// (station_id, generated_at) is unique: re-ingesting the same timestamp
// reuses the row instead of creating a duplicate.
type Snapshot struct {
	ID                  uint      `gorm:"primaryKey"`
	StationID           uint      `gorm:"not null;uniqueIndex:uq_snap_station_gen,priority:1"`
	GeneratedAt         time.Time `gorm:"not null;uniqueIndex:uq_snap_station_gen,priority:2;index"`
	WindowHours         int       `gorm:"not null;default:24"`
	InventoryLastUpdate *string   `gorm:"size:64"`

	Flows []Flow `gorm:"constraint:OnDelete:CASCADE"`
}

// Flow is an aggregated cargo movement edge scoped to exactly one snapshot.
// The flow set of a snapshot is always exactly the set supplied by the most
// recent ingestion for that snapshot's timestamp.
type Flow struct {
	ID         uint    `gorm:"primaryKey"`
	SnapshotID uint    `gorm:"not null;index:ix_flows_snapshot"`
	Origin     string  `gorm:"size:8;not null"`
	Dest       string  `gorm:"size:8;not null"`
	Direction  string  `gorm:"size:10;not null"`
	Legs       int     `gorm:"not null;default:0"`
	WeightLbs  float64 `gorm:"not null;default:0"`
}
